package domain

import (
	"time"

	"gorm.io/datatypes"
)

// TrendingRepo 代表某个仓库在某一天 Trending 榜单上的一条记录
// 唯一键是 (repo_name, trending_date)：同一天重复抓取只会覆盖，不会产生重复行
type TrendingRepo struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	RepoName      string `json:"repo_name" gorm:"size:255;uniqueIndex:idx_repo_date"`
	Owner         string `json:"owner"`
	Name          string `json:"name"`
	Description   string `json:"description"` // 可能为空（榜单上有些项目没有描述）
	URL           string `json:"url"`
	Language      string `json:"language"`       // 源页面展示的自由文本标签，不做枚举
	LanguageColor string `json:"language_color"` // 展示用颜色，可能为空
	Stars         int    `json:"stars"`
	StarsToday    int    `json:"stars_today"` // 源页面未提供时为 0
	Forks         int    `json:"forks"`
	Rank          int    `json:"rank"` // 1-based，榜单自身的顺序，不按 star 数重排
	TrendingDate  string `json:"trending_date" gorm:"size:10;uniqueIndex:idx_repo_date"` // YYYY-MM-DD (UTC)

	CreatedAt time.Time `json:"created_at"`
}

// 上手难度枚举
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// 推荐程度枚举
const (
	RecommendationHigh   = "high"
	RecommendationMedium = "medium"
	RecommendationLow    = "low"
)

// RepoAnalysis 是 AI 对单个仓库的结构化分析，按 repo_name 去重
// 一旦生成就跨天复用，后续成功的分析会整体替换旧结果
type RepoAnalysis struct {
	ID                   uint                        `json:"id" gorm:"primaryKey"`
	RepoName             string                      `json:"repo_name" gorm:"size:255;uniqueIndex"`
	Summary              string                      `json:"summary"`                       // 一句话总结
	WhatItDoes           string                      `json:"what_it_does" gorm:"type:text"` // 这个项目是做什么的
	CoreFeatures         datatypes.JSONSlice[string] `json:"core_features"`                 // 核心功能
	WhyUseful            string                      `json:"why_useful"`                    // 为什么对你有用
	UseCases             datatypes.JSONSlice[string] `json:"use_cases"`                     // 使用场景
	TechStack            datatypes.JSONSlice[string] `json:"tech_stack"`                    // 相关技术栈
	Difficulty           string                      `json:"difficulty"`                    // beginner/intermediate/advanced
	Recommendation       string                      `json:"recommendation"`                // high/medium/low
	RecommendationReason string                      `json:"recommendation_reason"`         // 推荐理由
	GeneratedAt          time.Time                   `json:"generated_at"`
}

// ValidDifficulty 判断难度枚举是否合法
func ValidDifficulty(s string) bool {
	return s == DifficultyBeginner || s == DifficultyIntermediate || s == DifficultyAdvanced
}

// ValidRecommendation 判断推荐程度枚举是否合法
func ValidRecommendation(s string) bool {
	return s == RecommendationHigh || s == RecommendationMedium || s == RecommendationLow
}

// BatchOutcome 是一轮批量分析的结果：按顺序的成功结果 + 失败计数
// 失败的条目在本轮内不重试
type BatchOutcome struct {
	Analyses []*RepoAnalysis
	Failed   int
}

// 通知分发结果状态
const (
	NotifyStatusSent    = "sent"
	NotifyStatusFailed  = "failed"
	NotifyStatusSkipped = "skipped" // 过滤后没有可推送的内容，不算失败
)

// DestinationResult 是单个通知目的地的分发结果
type DestinationResult struct {
	Destination string `json:"destination"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
}

// NotifyTally 汇总一轮通知分发：每个目的地独立成功或失败，互不影响
type NotifyTally struct {
	Sent    int                 `json:"sent"`
	Failed  int                 `json:"failed"`
	Skipped int                 `json:"skipped"`
	Results []DestinationResult `json:"results"`
}

// Add 记录一个目的地的结果并更新计数
func (t *NotifyTally) Add(destination, status, errMsg string) {
	t.Results = append(t.Results, DestinationResult{
		Destination: destination,
		Status:      status,
		Error:       errMsg,
	})
	switch status {
	case NotifyStatusSent:
		t.Sent++
	case NotifyStatusFailed:
		t.Failed++
	case NotifyStatusSkipped:
		t.Skipped++
	}
}

// FormatDate 把时间格式化为榜单日期 (UTC, YYYY-MM-DD)
func FormatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
