package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github-trending-tracker/internal/adapter/gemini"
	"github-trending-tracker/internal/adapter/github"
	"github-trending-tracker/internal/adapter/trending"
)

func main() {
	ctx := context.Background()

	fmt.Println("🔍 调试模式：抓取并打印榜单")

	// 1. 抓一次榜单
	scraper := trending.NewScraper()
	lang := ""
	if len(os.Args) > 1 {
		lang = os.Args[1]
	}

	repos, err := scraper.Scrape(ctx, lang)
	if err != nil {
		log.Fatalf("❌ 抓取失败: %v", err)
	}
	fmt.Printf("✅ 成功解析 %d 个项目\n\n", len(repos))

	for _, repo := range repos {
		fmt.Printf("#%-2d %-40s ⭐%-8d +%-5d 🍴%-6d %s\n",
			repo.Rank, repo.RepoName, repo.Stars, repo.StarsToday, repo.Forks, repo.Language)
	}

	// 2. 有 AI key 时分析第一个项目试试水
	geminiKey := os.Getenv("GEMINI_API_KEY")
	if geminiKey == "" || len(repos) == 0 {
		return
	}

	fmt.Printf("\n🧠 分析第一个项目: %s\n", repos[0].RepoName)

	aiAnalyzer, err := gemini.NewAnalyzer(ctx, geminiKey)
	if err != nil {
		log.Fatalf("❌ AI 初始化失败: %v", err)
	}

	readme, err := github.NewReadmeFetcher(os.Getenv("GITHUB_TOKEN")).Readme(ctx, repos[0].Owner, repos[0].Name)
	if err != nil {
		log.Printf("⚠️ 获取 README 失败: %v", err)
	}

	analysis, err := aiAnalyzer.Analyze(ctx, repos[0], readme)
	if err != nil {
		log.Fatalf("❌ 分析失败: %v", err)
	}

	fmt.Printf("    一句话总结: %s\n", analysis.Summary)
	fmt.Printf("    推荐程度: %s (%s)\n", analysis.Recommendation, analysis.RecommendationReason)
	fmt.Printf("    上手难度: %s\n", analysis.Difficulty)
	fmt.Printf("    核心功能: %v\n", []string(analysis.CoreFeatures))
}
