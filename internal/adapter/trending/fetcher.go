package trending

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github-trending-tracker/internal/common"
	"github-trending-tracker/internal/domain"
)

const defaultBaseURL = "https://github.com/trending"

// Scraper 实现了 port.Scouter 接口：抓取 Trending 页面并交给解析器
type Scraper struct {
	baseURL string
	client  *http.Client
}

// NewScraper 创建抓取器，抓取超时 20 秒
// GitHub 对不带浏览器特征的客户端会直接拒绝，所以请求头要装得像一点
func NewScraper() *Scraper {
	return &Scraper{
		baseURL: defaultBaseURL,
		client: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// NewScraperWithBaseURL 指定榜单地址，测试用
func NewScraperWithBaseURL(baseURL string) *Scraper {
	s := NewScraper()
	s.baseURL = baseURL
	return s
}

// Scrape 抓取一次榜单，language 非空时抓语言子榜
//
// 只发一次 GET，失败不在内部重试——重试策略属于调度方，下一次定时任务
// 就是天然的重试。返回两类可区分的错误：
//   - FETCH_ERROR: 网络失败或非 2xx 状态码（带上状态码便于排查）
//   - EMPTY_RESULT: 页面抓到了但一条都没解析出来，说明源页面结构可能变了
func (s *Scraper) Scrape(ctx context.Context, language string) ([]*domain.TrendingRepo, error) {
	target := s.baseURL
	if language != "" {
		target += "/" + url.PathEscape(language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, common.WrapError(common.ErrCodeFetch, "构造请求失败", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	// Trending 数据是时效性的，中间层缓存一份旧页面会破坏当日快照
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, common.WrapError(common.ErrCodeFetch, "抓取 Trending 页面失败", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, common.NewError(common.ErrCodeFetch, fmt.Sprintf("Trending 页面返回状态码 %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, common.WrapError(common.ErrCodeFetch, "读取响应失败", err)
	}

	repos := Parse(string(body))
	if len(repos) == 0 {
		return nil, common.NewError(common.ErrCodeEmptyResult, "没有解析出任何仓库，源页面结构可能已变化")
	}

	return repos, nil
}
