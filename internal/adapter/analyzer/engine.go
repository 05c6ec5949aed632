package analyzer

import (
	"context"
	"fmt"
	"log"
	"time"

	"github-trending-tracker/internal/domain"
	"github-trending-tracker/internal/port"
)

// MinIntervalFloor 是相邻两次 AI 调用之间允许的最小间隔
// 分析服务有硬性限流配额，间隔再小就会被限流甚至封禁
const MinIntervalFloor = 800 * time.Millisecond

// ProgressFunc 在每个条目尝试结束后被调用（成功或失败都会调）
// 只用于操作员观察进度，不影响控制流和结果
type ProgressFunc func(index, total int, repoName string)

// Engine 实现了 port.Engine 接口：串行限速的批量分析引擎
//
// 刻意不做并发——联机分析服务的配额是硬限制，这里用延迟换可靠性，
// 而不是并行去赌限流
type Engine struct {
	analyzer    port.Analyzer
	readmes     port.ReadmeFetcher // 可选，nil 时只用描述信息分析
	minInterval time.Duration
	onProgress  ProgressFunc
	sleepFunc   func(ctx context.Context, d time.Duration) bool // 测试注入
}

// NewEngine 创建批量分析引擎，默认调用间隔 1 秒
func NewEngine(a port.Analyzer) *Engine {
	return &Engine{
		analyzer:    a,
		minInterval: time.Second,
		sleepFunc:   sleepCtx,
	}
}

// SetReadmeFetcher 配置 README 上下文来源（可选）
func (e *Engine) SetReadmeFetcher(f port.ReadmeFetcher) {
	e.readmes = f
}

// SetMinInterval 调整调用间隔，低于下限的值会被提到下限
func (e *Engine) SetMinInterval(d time.Duration) {
	if d < MinIntervalFloor {
		d = MinIntervalFloor
	}
	e.minInterval = d
}

// MinInterval 返回当前生效的调用间隔
func (e *Engine) MinInterval() time.Duration {
	return e.minInterval
}

// SetProgressFunc 配置进度回调
func (e *Engine) SetProgressFunc(fn ProgressFunc) {
	e.onProgress = fn
}

// AnalyzeBatch 串行分析一批仓库
//
// done 里已有的名字在发起任何调用之前就被过滤掉——重复分析纯属浪费钱，
// 这一点靠构造保证而不是靠约定。单条失败（网络/状态码/坏 JSON/schema
// 不符）只记日志和计数，循环继续，一条坏数据永远不会中断整个批次
func (e *Engine) AnalyzeBatch(ctx context.Context, repos []*domain.TrendingRepo, done map[string]bool) *domain.BatchOutcome {
	var pending []*domain.TrendingRepo
	for _, repo := range repos {
		if done != nil && done[repo.RepoName] {
			continue
		}
		pending = append(pending, repo)
	}

	outcome := &domain.BatchOutcome{}
	total := len(pending)
	if total == 0 {
		return outcome
	}

	fmt.Printf("🤖 开始 AI 分析，共 %d 个项目，调用间隔 %v\n", total, e.minInterval)

	for i, repo := range pending {
		if i > 0 {
			if !e.sleepFunc(ctx, e.minInterval) {
				// 上下文被取消，放弃剩余条目
				fmt.Println("⏰ AI 分析因取消而中断")
				break
			}
		}

		analysis, err := e.analyzeOne(ctx, repo)
		if err != nil {
			log.Printf("   ❌ %s 分析失败: %v", repo.RepoName, err)
			outcome.Failed++
		} else {
			fmt.Printf("   ✅ %s 分析完成 (推荐度: %s)\n", repo.RepoName, analysis.Recommendation)
			outcome.Analyses = append(outcome.Analyses, analysis)
		}

		if e.onProgress != nil {
			e.onProgress(i+1, total, repo.RepoName)
		}
	}

	fmt.Printf("✅ AI 分析完成: %d 成功, %d 失败\n", len(outcome.Analyses), outcome.Failed)
	return outcome
}

// analyzeOne 分析单个仓库，每条限时 30 秒
func (e *Engine) analyzeOne(ctx context.Context, repo *domain.TrendingRepo) (*domain.RepoAnalysis, error) {
	itemCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// README 拿不到就算了，降级成只用描述分析
	var readme string
	if e.readmes != nil {
		var err error
		readme, err = e.readmes.Readme(itemCtx, repo.Owner, repo.Name)
		if err != nil {
			log.Printf("   ⚠️ 获取 %s 的 README 失败: %v，仅用描述分析", repo.RepoName, err)
			readme = ""
		}
	}

	return e.analyzer.Analyze(itemCtx, repo, readme)
}

// sleepCtx 可被取消的休眠，正常睡满返回 true
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
