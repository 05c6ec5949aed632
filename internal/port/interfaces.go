package port

import (
	"context"

	"github-trending-tracker/internal/domain"
)

// Scouter (侦察兵): 负责抓取 Trending 榜单页面并解析成结构化记录
// language 为空表示全语言榜单
type Scouter interface {
	Scrape(ctx context.Context, language string) ([]*domain.TrendingRepo, error)
}

// Analyzer (分析师): 负责调用 LLM 对单个仓库做结构化分析
// readme 是可选的上下文（README 摘录），为空时只用描述信息分析
type Analyzer interface {
	Analyze(ctx context.Context, repo *domain.TrendingRepo, readme string) (*domain.RepoAnalysis, error)
}

// Engine (批处理引擎): 串行限速地分析一批仓库
// done 里已有的 repo_name 不会再发起分析调用（避免重复付费）
type Engine interface {
	AnalyzeBatch(ctx context.Context, repos []*domain.TrendingRepo, done map[string]bool) *domain.BatchOutcome
}

// ReadmeFetcher: 获取仓库 README 摘录，给 AI 分析补充上下文
// 拿不到就算了，不影响分析主流程
type ReadmeFetcher interface {
	Readme(ctx context.Context, owner, name string) (string, error)
}

// Channel (信使): 单个通知通道，把渲染好的摘要推送出去
type Channel interface {
	Name() string
	Send(ctx context.Context, title, body string) error
}

// Dispatcher: 向所有配置的目的地分发每日摘要，逐个目的地统计结果
type Dispatcher interface {
	Dispatch(ctx context.Context, repos []*domain.TrendingRepo, analyses []*domain.RepoAnalysis) *domain.NotifyTally
}

// Store (仓库管理员): 每日快照和分析结果的存储
// 写操作都是按唯一键的 upsert，重复执行是安全的
type Store interface {
	// UpsertDay 把一天的记录整体写入，冲突键 (repo_name, trending_date) 存在则覆盖
	// 整个批次是一个事务：要么全部生效，要么一条不写
	UpsertDay(ctx context.Context, date string, repos []*domain.TrendingRepo) (int, error)

	// QueryDay 查询某天的榜单，date 为空默认今天 (UTC)，language 大小写不敏感匹配
	// 按 rank 升序，最多返回 20 条
	QueryDay(ctx context.Context, date, language string) ([]*domain.TrendingRepo, error)

	// SaveAnalyses 按 repo_name upsert 分析结果
	SaveAnalyses(ctx context.Context, analyses []*domain.RepoAnalysis) error

	// AnalyzedNames 返回给定名字里已经有分析结果的子集
	AnalyzedNames(ctx context.Context, names []string) (map[string]bool, error)

	// ListAnalyses 按名字批量取分析结果
	ListAnalyses(ctx context.Context, names []string) ([]*domain.RepoAnalysis, error)

	// GetAnalysis 取单个仓库的分析结果，不存在时返回 NOT_FOUND 错误
	GetAnalysis(ctx context.Context, repoName string) (*domain.RepoAnalysis, error)
}
