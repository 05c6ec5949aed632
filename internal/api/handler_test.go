package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github-trending-tracker/internal/common"
	"github-trending-tracker/internal/domain"
	"github-trending-tracker/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockRunner 模拟业务入口
type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) RunScrape(ctx context.Context, language string) (*service.ScrapeResult, error) {
	args := m.Called(ctx, language)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ScrapeResult), args.Error(1)
}

func (m *MockRunner) RunAnalysis(ctx context.Context, date string) (*service.AnalysisResult, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AnalysisResult), args.Error(1)
}

func (m *MockRunner) RunNotify(ctx context.Context, date string) (*domain.NotifyTally, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.NotifyTally), args.Error(1)
}

// MockStore 模拟 port.Store 接口（只有查询方法会被路由用到）
type MockStore struct {
	mock.Mock
}

func (m *MockStore) UpsertDay(ctx context.Context, date string, repos []*domain.TrendingRepo) (int, error) {
	args := m.Called(ctx, date, repos)
	return args.Int(0), args.Error(1)
}

func (m *MockStore) QueryDay(ctx context.Context, date, language string) ([]*domain.TrendingRepo, error) {
	args := m.Called(ctx, date, language)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.TrendingRepo), args.Error(1)
}

func (m *MockStore) SaveAnalyses(ctx context.Context, analyses []*domain.RepoAnalysis) error {
	args := m.Called(ctx, analyses)
	return args.Error(0)
}

func (m *MockStore) AnalyzedNames(ctx context.Context, names []string) (map[string]bool, error) {
	args := m.Called(ctx, names)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]bool), args.Error(1)
}

func (m *MockStore) ListAnalyses(ctx context.Context, names []string) ([]*domain.RepoAnalysis, error) {
	args := m.Called(ctx, names)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RepoAnalysis), args.Error(1)
}

func (m *MockStore) GetAnalysis(ctx context.Context, repoName string) (*domain.RepoAnalysis, error) {
	args := m.Called(ctx, repoName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RepoAnalysis), args.Error(1)
}

// newTestMux 组装一个可直接打请求的路由
func newTestMux(runner *MockRunner, store *MockStore, cronSecret string) *http.ServeMux {
	mux := http.NewServeMux()
	NewHandler(runner, store, cronSecret).RegisterRoutes(mux)
	return mux
}

func doRequest(mux *http.ServeMux, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("应答不是合法 JSON: %v", err)
	}
	return body
}

func TestCronFetch_成功(t *testing.T) {
	runner := new(MockRunner)
	runner.On("RunScrape", mock.Anything, "go").Return(&service.ScrapeResult{
		Date:   "2025-01-15",
		Count:  20,
		Sample: []string{"a/one", "a/two"},
	}, nil)

	mux := newTestMux(runner, new(MockStore), "")
	rec := doRequest(mux, http.MethodGet, "/api/cron/fetch?language=go", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "2025-01-15", body["date"])
	assert.Equal(t, float64(20), body["count"])
	runner.AssertExpectations(t)
}

func TestCronFetch_密钥不对返回401(t *testing.T) {
	runner := new(MockRunner)
	mux := newTestMux(runner, new(MockStore), "top-secret")

	rec := doRequest(mux, http.MethodGet, "/api/cron/fetch", "wrong-token")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	runner.AssertNotCalled(t, "RunScrape", mock.Anything, mock.Anything)
}

func TestCronFetch_密钥正确放行(t *testing.T) {
	runner := new(MockRunner)
	runner.On("RunScrape", mock.Anything, "").Return(&service.ScrapeResult{Date: "2025-01-15"}, nil)

	mux := newTestMux(runner, new(MockStore), "top-secret")
	rec := doRequest(mux, http.MethodGet, "/api/cron/fetch", "top-secret")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCronFetch_未配置密钥不拦截(t *testing.T) {
	runner := new(MockRunner)
	runner.On("RunScrape", mock.Anything, "").Return(&service.ScrapeResult{Date: "2025-01-15"}, nil)

	mux := newTestMux(runner, new(MockStore), "")
	rec := doRequest(mux, http.MethodGet, "/api/cron/fetch", "")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCronFetch_抓取失败返回500(t *testing.T) {
	runner := new(MockRunner)
	runner.On("RunScrape", mock.Anything, "").
		Return(nil, common.NewError(common.ErrCodeFetch, "网络错误"))

	mux := newTestMux(runner, new(MockStore), "")
	rec := doRequest(mux, http.MethodGet, "/api/cron/fetch", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCronAnalyze_日期格式校验(t *testing.T) {
	runner := new(MockRunner)
	mux := newTestMux(runner, new(MockStore), "")

	for _, bad := range []string{"2025/01/15", "15-01-2025", "abc", "2025-1-5"} {
		rec := doRequest(mux, http.MethodGet, "/api/cron/analyze?date="+bad, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, "date=%s", bad)
	}
	runner.AssertNotCalled(t, "RunAnalysis", mock.Anything, mock.Anything)
}

func TestCronAnalyze_成功(t *testing.T) {
	runner := new(MockRunner)
	runner.On("RunAnalysis", mock.Anything, "2025-01-15").Return(&service.AnalysisResult{
		Date: "2025-01-15", Analyzed: 3, Failed: 1, Skipped: 2,
	}, nil)

	mux := newTestMux(runner, new(MockStore), "")
	rec := doRequest(mux, http.MethodGet, "/api/cron/analyze?date=2025-01-15", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(3), body["analyzed"])
	assert.Equal(t, float64(1), body["failed"])
	assert.Equal(t, float64(2), body["skipped"])
}

func TestCronNotify_未配置密钥直接拒绝(t *testing.T) {
	runner := new(MockRunner)
	mux := newTestMux(runner, new(MockStore), "")

	rec := doRequest(mux, http.MethodGet, "/api/cron/notify", "")

	// 推送接口不允许裸跑，密钥没配置就是配置错误
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	runner.AssertNotCalled(t, "RunNotify", mock.Anything, mock.Anything)
}

func TestCronNotify_成功(t *testing.T) {
	runner := new(MockRunner)
	runner.On("RunNotify", mock.Anything, "").Return(&domain.NotifyTally{
		Sent: 1, Failed: 1,
		Results: []domain.DestinationResult{
			{Destination: "serverchan", Status: domain.NotifyStatusSent},
			{Destination: "wechat", Status: domain.NotifyStatusFailed, Error: "超时"},
		},
	}, nil)

	mux := newTestMux(runner, new(MockStore), "top-secret")
	rec := doRequest(mux, http.MethodGet, "/api/cron/notify", "top-secret")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["sent"])
	assert.Equal(t, float64(1), body["failed"])
	results := body["results"].([]interface{})
	assert.Len(t, results, 2)
}

func TestGetTrending_成功(t *testing.T) {
	store := new(MockStore)
	store.On("QueryDay", mock.Anything, "2025-01-15", "go").
		Return([]*domain.TrendingRepo{{RepoName: "a/one", Rank: 1}}, nil)

	mux := newTestMux(new(MockRunner), store, "")
	rec := doRequest(mux, http.MethodGet, "/api/trending?date=2025-01-15&language=go", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	repos := body["repos"].([]interface{})
	assert.Len(t, repos, 1)
}

func TestGetTrending_无数据返回空数组而不是null(t *testing.T) {
	store := new(MockStore)
	store.On("QueryDay", mock.Anything, "2025-01-15", "").Return(nil, nil)

	mux := newTestMux(new(MockRunner), store, "")
	rec := doRequest(mux, http.MethodGet, "/api/trending?date=2025-01-15", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"repos":[]`)
}

func TestGetTrending_参数校验(t *testing.T) {
	store := new(MockStore)
	mux := newTestMux(new(MockRunner), store, "")

	rec := doRequest(mux, http.MethodGet, "/api/trending?date=not-a-date", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	longLang := strings.Repeat("x", 65)
	rec = doRequest(mux, http.MethodGet, "/api/trending?language="+longLang, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	store.AssertNotCalled(t, "QueryDay", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetSummary_成功(t *testing.T) {
	store := new(MockStore)
	store.On("GetAnalysis", mock.Anything, "a/one").
		Return(&domain.RepoAnalysis{RepoName: "a/one", Summary: "总结"}, nil)

	mux := newTestMux(new(MockRunner), store, "")
	rec := doRequest(mux, http.MethodGet, "/api/summary?repo=a/one", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "a/one")
}

func TestGetSummary_缺少repo参数返回400(t *testing.T) {
	mux := newTestMux(new(MockRunner), new(MockStore), "")
	rec := doRequest(mux, http.MethodGet, "/api/summary", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSummary_没有分析返回404(t *testing.T) {
	store := new(MockStore)
	store.On("GetAnalysis", mock.Anything, "a/missing").
		Return(nil, common.NewError(common.ErrCodeNotFound, "该仓库还没有分析结果"))

	mux := newTestMux(new(MockRunner), store, "")
	rec := doRequest(mux, http.MethodGet, "/api/summary?repo=a/missing", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetSummary_存储故障返回500(t *testing.T) {
	store := new(MockStore)
	store.On("GetAnalysis", mock.Anything, "a/bad").
		Return(nil, common.NewError(common.ErrCodeStore, "数据库挂了"))

	mux := newTestMux(new(MockRunner), store, "")
	rec := doRequest(mux, http.MethodGet, "/api/summary?repo=a/bad", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealth(t *testing.T) {
	mux := newTestMux(new(MockRunner), new(MockStore), "")
	rec := doRequest(mux, http.MethodGet, "/api/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}
