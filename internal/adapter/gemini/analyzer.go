package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github-trending-tracker/internal/common"
	"github-trending-tracker/internal/domain"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
	"gorm.io/datatypes"
)

// Analyzer 实现了 port.Analyzer 接口，调用 Gemini 生成结构化分析
type Analyzer struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	nowFunc func() time.Time
}

// aiResponse 接收 AI 返回的 JSON
type aiResponse struct {
	Summary              string   `json:"summary"`
	WhatItDoes           string   `json:"what_it_does"`
	CoreFeatures         []string `json:"core_features"`
	WhyUseful            string   `json:"why_useful"`
	UseCases             []string `json:"use_cases"`
	TechStack            []string `json:"tech_stack"`
	Difficulty           string   `json:"difficulty"`
	Recommendation       string   `json:"recommendation"`
	RecommendationReason string   `json:"recommendation_reason"`
}

func NewAnalyzer(ctx context.Context, apiKey string) (*Analyzer, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	model := client.GenerativeModel("gemini-2.5-flash-lite")
	// 强制要求返回 JSON，降低解析错误的概率
	model.ResponseMIMEType = "application/json"

	return &Analyzer{
		client:  client,
		model:   model,
		nowFunc: time.Now,
	}, nil
}

// Analyze 分析单个仓库，readme 非空时附带 README 摘录作为补充上下文
//
// 网络失败、空响应、坏 JSON、schema 不符都归为同一类单条失败
// (ANALYSIS_ITEM_ERROR)，由批处理引擎吸收计数，不会中断整个批次
func (g *Analyzer) Analyze(ctx context.Context, repo *domain.TrendingRepo, readme string) (*domain.RepoAnalysis, error) {
	prompt := buildPrompt(repo, readme)

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, common.WrapError(common.ErrCodeAnalysis, "AI 调用失败", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, common.NewError(common.ErrCodeAnalysis, "AI 返回内容为空")
	}

	part, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, common.NewError(common.ErrCodeAnalysis, "AI 返回格式错误")
	}

	return parseAnalysis(repo.RepoName, string(part), g.nowFunc())
}

// parseAnalysis 从 AI 原文里抠出 JSON，做严格校验后构造强类型结果
//
// 即使 AI 返回 "```json { ... } ```"，也能精准截出中间的 { ... }。
// 校验通过之前绝不把半成品结构传给下游
func parseAnalysis(repoName, raw string, now time.Time) (*domain.RepoAnalysis, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, common.NewError(common.ErrCodeAnalysis, fmt.Sprintf("无法提取 JSON, AI 原文: %s", truncate(raw, 200)))
	}

	var res aiResponse
	if err := json.Unmarshal([]byte(raw[start:end+1]), &res); err != nil {
		return nil, common.WrapError(common.ErrCodeAnalysis, "JSON 解析失败", err)
	}

	// 必填字段缺一个就整条作废
	if strings.TrimSpace(res.Summary) == "" {
		return nil, common.NewError(common.ErrCodeAnalysis, "缺少 summary 字段")
	}
	if strings.TrimSpace(res.WhatItDoes) == "" {
		return nil, common.NewError(common.ErrCodeAnalysis, "缺少 what_it_does 字段")
	}

	// 可选枚举缺失或不合法时回退到默认值，而不是让坏值流向下游
	difficulty := res.Difficulty
	if !domain.ValidDifficulty(difficulty) {
		difficulty = domain.DifficultyIntermediate
	}
	recommendation := res.Recommendation
	if !domain.ValidRecommendation(recommendation) {
		recommendation = domain.RecommendationMedium
	}

	return &domain.RepoAnalysis{
		RepoName:             repoName,
		Summary:              strings.TrimSpace(res.Summary),
		WhatItDoes:           strings.TrimSpace(res.WhatItDoes),
		CoreFeatures:         datatypes.NewJSONSlice(orEmpty(res.CoreFeatures)),
		WhyUseful:            strings.TrimSpace(res.WhyUseful),
		UseCases:             datatypes.NewJSONSlice(orEmpty(res.UseCases)),
		TechStack:            datatypes.NewJSONSlice(orEmpty(res.TechStack)),
		Difficulty:           difficulty,
		Recommendation:       recommendation,
		RecommendationReason: strings.TrimSpace(res.RecommendationReason),
		GeneratedAt:          now,
	}, nil
}

func buildPrompt(repo *domain.TrendingRepo, readme string) string {
	description := repo.Description
	if description == "" {
		description = "无描述"
	}
	language := repo.Language
	if language == "" {
		language = "未知"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`你是一个专业的技术分析师，请分析这个 GitHub 开源项目：

项目名称: %s
项目描述: %s
编程语言: %s
Star 数: %d
今日新增 Star: %d
项目地址: %s
`, repo.RepoName, description, language, repo.Stars, repo.StarsToday, repo.URL))

	if readme != "" {
		sb.WriteString(fmt.Sprintf("\nREADME 摘录:\n%s\n", readme))
	}

	sb.WriteString(`
请严格按照 JSON 格式返回中文分析报告，包含以下字段：
{
  "summary": "一句话总结（20字以内）",
  "what_it_does": "这个项目是做什么的（50-100字）",
  "core_features": ["核心功能1", "核心功能2", "核心功能3"],
  "why_useful": "为什么对开发者有用（30-50字）",
  "use_cases": ["使用场景1", "使用场景2"],
  "tech_stack": ["技术1", "技术2"],
  "difficulty": "beginner/intermediate/advanced",
  "recommendation": "high/medium/low",
  "recommendation_reason": "推荐理由（20-30字）"
}

请直接返回 JSON，不要包含 Markdown 格式标记。`)

	return sb.String()
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
