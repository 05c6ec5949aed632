package api

import (
	"net/http"

	"github-trending-tracker/internal/common"
)

// getSummary 单仓库分析查询："没有分析" (404) 和 "存储故障" (500) 是
// 两种可区分的结果
func (h *Handler) getSummary(w http.ResponseWriter, r *http.Request) {
	repoName := r.URL.Query().Get("repo")
	if repoName == "" {
		writeError(w, common.NewError(common.ErrCodeInvalidInput, "缺少 repo 参数"))
		return
	}

	analysis, err := h.store.GetAnalysis(r.Context(), repoName)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"summary": analysis})
}
