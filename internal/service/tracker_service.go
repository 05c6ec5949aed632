package service

import (
	"context"
	"fmt"
	"time"

	"github-trending-tracker/internal/common"
	"github-trending-tracker/internal/domain"
	"github-trending-tracker/internal/port"
)

// sampleSize 抓取结果里返回的仓库名样本数量（给触发方一个眼见为实的确认）
const sampleSize = 5

// TrackerService 串起抓取、分析、推送三个周期
type TrackerService struct {
	scouter    port.Scouter
	store      port.Store
	engine     port.Engine
	dispatcher port.Dispatcher
	nowFunc    func() time.Time
}

// NewTrackerService 创建服务，engine 和 dispatcher 允许为 nil
// （没配置对应的密钥时对应周期会报 CONFIG_ERROR，而不是启动失败）
func NewTrackerService(scouter port.Scouter, store port.Store, engine port.Engine, dispatcher port.Dispatcher) *TrackerService {
	return &TrackerService{
		scouter:    scouter,
		store:      store,
		engine:     engine,
		dispatcher: dispatcher,
		nowFunc:    time.Now,
	}
}

// ScrapeResult 是一次抓取周期的结果
type ScrapeResult struct {
	Date   string   `json:"date"`
	Count  int      `json:"count"`
	Sample []string `json:"repos"`
}

// AnalysisResult 是一次分析周期的结果
type AnalysisResult struct {
	Date     string `json:"date"`
	Analyzed int    `json:"analyzed"`
	Failed   int    `json:"failed"`
	Skipped  int    `json:"skipped"` // 已有分析、本轮没发起调用的数量
}

// RunScrape 执行一次抓取周期：抓榜单 → 整体 upsert 进当日快照
//
// 幂等：cron 同一天触发两次，第二次按冲突键覆盖第一次的数据，
// 不会产生重复行也不会弄脏快照
func (s *TrackerService) RunScrape(ctx context.Context, language string) (*ScrapeResult, error) {
	fmt.Println("📥 正在抓取 GitHub Trending 榜单...")

	repos, err := s.scouter.Scrape(ctx, language)
	if err != nil {
		return nil, err
	}

	date := domain.FormatDate(s.nowFunc())
	count, err := s.store.UpsertDay(ctx, date, repos)
	if err != nil {
		return nil, err
	}

	sample := make([]string, 0, sampleSize)
	for _, repo := range repos {
		if len(sample) >= sampleSize {
			break
		}
		sample = append(sample, repo.RepoName)
	}

	fmt.Printf("✅ %s 快照写入 %d 条记录\n", date, count)
	return &ScrapeResult{Date: date, Count: count, Sample: sample}, nil
}

// RunAnalysis 执行一次分析周期：读出当日快照里还没分析过的仓库，
// 交给批处理引擎，再把成功的结果存回去
//
// 幂等：全部分析成功之后再触发一次是空转（引擎在发起调用前
// 就会按已有结果过滤）
func (s *TrackerService) RunAnalysis(ctx context.Context, date string) (*AnalysisResult, error) {
	if s.engine == nil {
		return nil, common.NewError(common.ErrCodeConfig, "AI 分析未配置 (缺少 GEMINI_API_KEY)")
	}

	if date == "" {
		date = domain.FormatDate(s.nowFunc())
	}

	repos, err := s.store.QueryDay(ctx, date, "")
	if err != nil {
		return nil, err
	}
	if len(repos) == 0 {
		fmt.Printf("📭 %s 没有 Trending 数据，请先运行抓取\n", date)
		return &AnalysisResult{Date: date}, nil
	}

	names := make([]string, len(repos))
	for i, repo := range repos {
		names[i] = repo.RepoName
	}
	done, err := s.store.AnalyzedNames(ctx, names)
	if err != nil {
		return nil, err
	}

	outcome := s.engine.AnalyzeBatch(ctx, repos, done)
	if len(outcome.Analyses) > 0 {
		if err := s.store.SaveAnalyses(ctx, outcome.Analyses); err != nil {
			return nil, err
		}
	}

	return &AnalysisResult{
		Date:     date,
		Analyzed: len(outcome.Analyses),
		Failed:   outcome.Failed,
		Skipped:  len(done),
	}, nil
}

// RunNotify 执行一次推送周期：读出当日快照和已有分析，分发给所有目的地
func (s *TrackerService) RunNotify(ctx context.Context, date string) (*domain.NotifyTally, error) {
	if s.dispatcher == nil {
		return nil, common.NewError(common.ErrCodeConfig, "通知通道未配置 (缺少 SERVERCHAN_KEY / WECHAT_WEBHOOK)")
	}

	if date == "" {
		date = domain.FormatDate(s.nowFunc())
	}

	repos, err := s.store.QueryDay(ctx, date, "")
	if err != nil {
		return nil, err
	}
	if len(repos) == 0 {
		fmt.Printf("📭 %s 没有可推送的数据\n", date)
		return &domain.NotifyTally{}, nil
	}

	names := make([]string, len(repos))
	for i, repo := range repos {
		names[i] = repo.RepoName
	}
	analyses, err := s.store.ListAnalyses(ctx, names)
	if err != nil {
		return nil, err
	}

	return s.dispatcher.Dispatch(ctx, repos, analyses), nil
}
