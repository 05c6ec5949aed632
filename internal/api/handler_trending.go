package api

import (
	"net/http"
	"regexp"

	"github-trending-tracker/internal/common"
	"github-trending-tracker/internal/domain"
)

// 日期参数用严格正则校验，不做宽松解析
var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

const maxLanguageLen = 64

// getTrending 公开查询接口：某天的榜单，最多 20 条，按 rank 升序
// date 缺省为今天 (UTC)；language 大小写不敏感
func (h *Handler) getTrending(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date != "" && !dateRe.MatchString(date) {
		writeError(w, common.NewError(common.ErrCodeInvalidInput, "date 参数必须是 YYYY-MM-DD 格式"))
		return
	}

	language := r.URL.Query().Get("language")
	if len(language) > maxLanguageLen {
		writeError(w, common.NewError(common.ErrCodeInvalidInput, "language 参数过长"))
		return
	}

	repos, err := h.store.QueryDay(r.Context(), date, language)
	if err != nil {
		writeError(w, err)
		return
	}
	if repos == nil {
		repos = []*domain.TrendingRepo{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"repos": repos})
}
