package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github-trending-tracker/internal/common"
	"github-trending-tracker/internal/domain"
	"github-trending-tracker/internal/port"
	"github-trending-tracker/internal/service"
)

// Runner 是 Handler 依赖的业务入口，便于在测试里替换
type Runner interface {
	RunScrape(ctx context.Context, language string) (*service.ScrapeResult, error)
	RunAnalysis(ctx context.Context, date string) (*service.AnalysisResult, error)
	RunNotify(ctx context.Context, date string) (*domain.NotifyTally, error)
}

// Handler 承载所有 HTTP 路由
type Handler struct {
	runner     Runner
	store      port.Store
	cronSecret string
}

func NewHandler(runner Runner, store port.Store, cronSecret string) *Handler {
	return &Handler{
		runner:     runner,
		store:      store,
		cronSecret: cronSecret,
	}
}

// RegisterRoutes 注册所有路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/cron/fetch", h.cronFetch)
	mux.HandleFunc("/api/cron/analyze", h.cronAnalyze)
	mux.HandleFunc("/api/cron/notify", h.cronNotify)
	mux.HandleFunc("/api/trending", h.getTrending)
	mux.HandleFunc("/api/summary", h.getSummary)
	mux.HandleFunc("/api/health", h.health)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON 统一的 JSON 应答
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError 按错误码映射 HTTP 状态；错误详情只带状态和消息，不带凭据
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch common.Code(err) {
	case common.ErrCodeNotFound:
		status = http.StatusNotFound
	case common.ErrCodeAuth:
		status = http.StatusUnauthorized
	case common.ErrCodeInvalidInput:
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
