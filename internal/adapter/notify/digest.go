package notify

import (
	"fmt"
	"strings"
	"time"

	"github-trending-tracker/internal/domain"
)

// BuildDigest 把一天的榜单和已有的 AI 分析渲染成推送用的 Markdown 摘要
//
// 按推荐度分三档展示：high 给完整的结构化分析，medium 只给简介，
// 没有分析或 low 的进"其他项目"列表，用原始描述兜底
func BuildDigest(date string, repos []*domain.TrendingRepo, analyses []*domain.RepoAnalysis) (title, body string) {
	byName := make(map[string]*domain.RepoAnalysis, len(analyses))
	for _, a := range analyses {
		byName[a.RepoName] = a
	}

	title = fmt.Sprintf("🔥 GitHub Trending %s", date)

	var sb strings.Builder
	sb.WriteString("# 🔥 GitHub Trending 每日推送\n\n")
	sb.WriteString(fmt.Sprintf("> %s\n\n", date))

	var high, medium, others []*domain.TrendingRepo
	for _, repo := range repos {
		switch a := byName[repo.RepoName]; {
		case a != nil && a.Recommendation == domain.RecommendationHigh:
			high = append(high, repo)
		case a != nil && a.Recommendation == domain.RecommendationMedium:
			medium = append(medium, repo)
		default:
			others = append(others, repo)
		}
	}

	if len(high) > 0 {
		sb.WriteString("---\n\n## ⭐ 高度推荐\n\n")
		for _, repo := range high {
			writeFullEntry(&sb, repo, byName[repo.RepoName])
		}
	}

	if len(medium) > 0 {
		sb.WriteString("## 📌 值得关注\n\n")
		for _, repo := range medium {
			writeSummaryEntry(&sb, repo, byName[repo.RepoName])
		}
		sb.WriteString("---\n\n")
	}

	if len(others) > 0 {
		sb.WriteString("## 📋 其他项目\n\n")
		for i, repo := range others {
			writeLineEntry(&sb, i+1, repo, byName[repo.RepoName])
		}
	}

	sb.WriteString("---\n\n> 由 AI 自动分析生成\n")

	return title, sb.String()
}

// writeFullEntry 完整的结构化展示（高度推荐档）
func writeFullEntry(sb *strings.Builder, repo *domain.TrendingRepo, a *domain.RepoAnalysis) {
	fmt.Fprintf(sb, "### 🌟 %s\n\n", repo.RepoName)
	fmt.Fprintf(sb, "**%s** stars (+%d today)", formatStars(repo.Stars), repo.StarsToday)
	if repo.Language != "" {
		fmt.Fprintf(sb, " · %s", repo.Language)
	}
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "**📝 一句话总结：** %s\n\n", a.Summary)
	if a.WhatItDoes != "" {
		fmt.Fprintf(sb, "**🎯 这个项目是做什么的：**\n%s\n\n", a.WhatItDoes)
	}
	if len(a.CoreFeatures) > 0 {
		sb.WriteString("**✨ 核心功能：**\n")
		for _, f := range a.CoreFeatures {
			fmt.Fprintf(sb, "- %s\n", f)
		}
		sb.WriteString("\n")
	}
	if a.WhyUseful != "" {
		fmt.Fprintf(sb, "**💡 为什么有用：**\n%s\n\n", a.WhyUseful)
	}
	if len(a.UseCases) > 0 {
		fmt.Fprintf(sb, "**🔧 使用场景：** %s\n\n", strings.Join(a.UseCases, "、"))
	}
	if len(a.TechStack) > 0 {
		fmt.Fprintf(sb, "**🛠️ 技术栈：** %s\n\n", strings.Join(a.TechStack, "、"))
	}
	if a.RecommendationReason != "" {
		fmt.Fprintf(sb, "**🎖️ 推荐理由：** %s\n\n", a.RecommendationReason)
	}

	fmt.Fprintf(sb, "👉 [查看项目](%s)\n\n---\n\n", repo.URL)
}

// writeSummaryEntry 只给简介（值得关注档）
func writeSummaryEntry(sb *strings.Builder, repo *domain.TrendingRepo, a *domain.RepoAnalysis) {
	fmt.Fprintf(sb, "### %s\n\n", repo.RepoName)
	fmt.Fprintf(sb, "**%s** stars (+%d today)", formatStars(repo.Stars), repo.StarsToday)
	if repo.Language != "" {
		fmt.Fprintf(sb, " · %s", repo.Language)
	}
	sb.WriteString("\n\n")
	fmt.Fprintf(sb, "**简介：** %s\n\n", a.Summary)
	fmt.Fprintf(sb, "👉 [查看项目](%s)\n\n", repo.URL)
}

// writeLineEntry 一行带过（其他项目档），没有分析时用原始描述
func writeLineEntry(sb *strings.Builder, index int, repo *domain.TrendingRepo, a *domain.RepoAnalysis) {
	fmt.Fprintf(sb, "%d. **[%s](%s)**\n", index, repo.RepoName, repo.URL)
	fmt.Fprintf(sb, "   %s stars", formatStars(repo.Stars))
	if repo.Language != "" {
		fmt.Fprintf(sb, " · %s", repo.Language)
	}
	sb.WriteString("\n")
	if a != nil && a.Summary != "" {
		fmt.Fprintf(sb, "   %s\n", a.Summary)
	} else if repo.Description != "" {
		fmt.Fprintf(sb, "   %s\n", truncateRunes(repo.Description, 80))
	}
	sb.WriteString("\n")
}

func formatStars(stars int) string {
	if stars >= 1000 {
		return fmt.Sprintf("%.1fk", float64(stars)/1000)
	}
	return fmt.Sprintf("%d", stars)
}

// truncateRunes 按字符截断，描述里经常有中文，不能按字节切
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// Today 返回用于摘要标题的当天日期 (UTC)
func Today() string {
	return domain.FormatDate(time.Now())
}
