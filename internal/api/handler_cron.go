package api

import (
	"log"
	"net/http"

	"github-trending-tracker/internal/common"
)

// checkSecret 校验触发接口的共享密钥（Bearer token）
// 没配置密钥时不拦截——本地/内网部署允许裸跑
func (h *Handler) checkSecret(r *http.Request) error {
	if h.cronSecret == "" {
		return nil
	}
	if r.Header.Get("Authorization") != "Bearer "+h.cronSecret {
		return common.NewError(common.ErrCodeAuth, "Unauthorized")
	}
	return nil
}

// cronFetch 抓取触发入口：抓榜单并写入当日快照
// 200 带 {date, count, repos 样本}；零结果或存储失败都是 500
func (h *Handler) cronFetch(w http.ResponseWriter, r *http.Request) {
	if err := h.checkSecret(r); err != nil {
		writeError(w, err)
		return
	}

	language := r.URL.Query().Get("language")
	result, err := h.runner.RunScrape(r.Context(), language)
	if err != nil {
		log.Printf("❌ 抓取周期失败: %v", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"date":    result.Date,
		"count":   result.Count,
		"repos":   result.Sample,
	})
}

// cronAnalyze 分析触发入口：对当日快照里未分析的仓库跑 AI 分析
// 全部分析完之后重复触发是空转，返回 analyzed=0
func (h *Handler) cronAnalyze(w http.ResponseWriter, r *http.Request) {
	if err := h.checkSecret(r); err != nil {
		writeError(w, err)
		return
	}

	date := r.URL.Query().Get("date")
	if date != "" && !dateRe.MatchString(date) {
		writeError(w, common.NewError(common.ErrCodeInvalidInput, "date 参数必须是 YYYY-MM-DD 格式"))
		return
	}

	result, err := h.runner.RunAnalysis(r.Context(), date)
	if err != nil {
		log.Printf("❌ 分析周期失败: %v", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"date":     result.Date,
		"analyzed": result.Analyzed,
		"failed":   result.Failed,
		"skipped":  result.Skipped,
	})
}

// cronNotify 推送触发入口，必须配置共享密钥才允许使用
func (h *Handler) cronNotify(w http.ResponseWriter, r *http.Request) {
	if h.cronSecret == "" {
		writeError(w, common.NewError(common.ErrCodeConfig, "CRON_SECRET 未配置"))
		return
	}
	if err := h.checkSecret(r); err != nil {
		writeError(w, err)
		return
	}

	date := r.URL.Query().Get("date")
	if date != "" && !dateRe.MatchString(date) {
		writeError(w, common.NewError(common.ErrCodeInvalidInput, "date 参数必须是 YYYY-MM-DD 格式"))
		return
	}

	tally, err := h.runner.RunNotify(r.Context(), date)
	if err != nil {
		log.Printf("❌ 推送周期失败: %v", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"sent":    tally.Sent,
		"failed":  tally.Failed,
		"skipped": tally.Skipped,
		"results": tally.Results,
	})
}
