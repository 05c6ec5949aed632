package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github-trending-tracker/internal/adapter/analyzer"
	"github-trending-tracker/internal/adapter/filter"
	"github-trending-tracker/internal/adapter/gemini"
	"github-trending-tracker/internal/adapter/github"
	"github-trending-tracker/internal/adapter/notify"
	"github-trending-tracker/internal/adapter/repository"
	"github-trending-tracker/internal/adapter/trending"
	"github-trending-tracker/internal/api"
	"github-trending-tracker/internal/config"
	"github-trending-tracker/internal/port"
	"github-trending-tracker/internal/service"

	"github.com/robfig/cron/v3"
)

func main() {
	// 1. 命令行参数
	mode := flag.String("mode", "serve", "运行模式: serve (HTTP 服务) / fetch (抓取一次) / analyze (分析一次) / notify (推送一次)")
	lang := flag.String("lang", "", "抓取的语言子榜，空表示全语言榜单 (仅 fetch 模式)")
	date := flag.String("date", "", "操作的日期 YYYY-MM-DD，空表示今天 (analyze/notify 模式)")
	schedule := flag.String("schedule", "", "cron 表达式，如 '0 9 * * *'；非空时定时跑完整流水线")
	flag.Parse()

	// 2. 加载配置并初始化公共依赖
	cfg := config.Load()
	if err := cfg.RequireDatabase(); err != nil {
		log.Fatalf("❌ 配置错误: %v", err)
	}

	store, err := repository.NewPostgresStore(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("❌ DB 初始化失败: %v", err)
	}

	svc := buildService(cfg, store)

	// 3. 根据模式分流
	if *schedule != "" {
		runScheduled(svc, *schedule, *lang)
		return
	}

	switch *mode {
	case "serve":
		runServer(cfg, svc, store)
	case "fetch":
		runOnce(func(ctx context.Context) error {
			result, err := svc.RunScrape(ctx, *lang)
			if err != nil {
				return err
			}
			fmt.Printf("🎉 抓取完成: %s 共 %d 条，样本: %v\n", result.Date, result.Count, result.Sample)
			return nil
		})
	case "analyze":
		runOnce(func(ctx context.Context) error {
			result, err := svc.RunAnalysis(ctx, *date)
			if err != nil {
				return err
			}
			fmt.Printf("🎉 分析完成: %d 成功, %d 失败, %d 已有分析跳过\n", result.Analyzed, result.Failed, result.Skipped)
			return nil
		})
	case "notify":
		runOnce(func(ctx context.Context) error {
			tally, err := svc.RunNotify(ctx, *date)
			if err != nil {
				return err
			}
			fmt.Printf("🎉 推送完成: %d 成功, %d 失败, %d 跳过\n", tally.Sent, tally.Failed, tally.Skipped)
			return nil
		})
	default:
		fmt.Println("❌ 未知模式，请使用 -mode=serve/fetch/analyze/notify")
	}
}

// buildService 按配置组装业务服务
// AI key 或通知通道没配时对应能力为 nil，触发时报 CONFIG_ERROR
func buildService(cfg *config.Config, store *repository.PostgresStore) *service.TrackerService {
	scraper := trending.NewScraper()

	var engine port.Engine
	if cfg.GeminiAPIKey != "" {
		aiAnalyzer, err := gemini.NewAnalyzer(context.Background(), cfg.GeminiAPIKey)
		if err != nil {
			log.Fatalf("❌ AI 初始化失败: %v", err)
		}
		e := analyzer.NewEngine(aiAnalyzer)
		e.SetReadmeFetcher(github.NewReadmeFetcher(cfg.GithubToken))
		e.SetProgressFunc(func(index, total int, repoName string) {
			fmt.Printf("   [%d/%d] %s\n", index, total, repoName)
		})
		engine = e
	} else {
		log.Println("⚠️ GEMINI_API_KEY 未配置，AI 分析不可用")
	}

	var dispatcher port.Dispatcher
	if destinations := buildDestinations(cfg); len(destinations) > 0 {
		dispatcher = notify.NewDispatcher(destinations)
	} else {
		log.Println("⚠️ 没有配置任何通知通道，推送不可用")
	}

	return service.NewTrackerService(scraper, store, engine, dispatcher)
}

// buildDestinations 把配置翻译成通知目的地，两类通道共用同一套过滤条件
func buildDestinations(cfg *config.Config) []notify.Destination {
	destFilter := filter.DestinationFilter{
		Languages: cfg.NotifyLanguages,
		MinStars:  cfg.NotifyMinStars,
	}

	var destinations []notify.Destination
	if cfg.ServerChanKey != "" {
		destinations = append(destinations, notify.Destination{
			Name:    "serverchan",
			Channel: notify.NewServerChanChannel(cfg.ServerChanKey),
			Filter:  destFilter,
		})
	}
	if cfg.WeChatWebhook != "" {
		destinations = append(destinations, notify.Destination{
			Name:    "wechat",
			Channel: notify.NewWeChatChannel(cfg.WeChatWebhook),
			Filter:  destFilter,
		})
	}
	return destinations
}

// runOnce 单次执行模式，整个周期限时 10 分钟
func runOnce(fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if err := fn(ctx); err != nil {
		log.Fatalf("❌ 执行失败: %v", err)
	}
}

// runServer 启动 HTTP 服务并优雅关闭
func runServer(cfg *config.Config, svc *service.TrackerService, store *repository.PostgresStore) {
	handler := api.NewHandler(svc, store, cfg.CronSecret)
	server := api.NewServer(handler, cfg.Port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n👋 收到停止信号，正在退出...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Stop(shutdownCtx)
	}()

	if err := server.Start(); err != nil {
		log.Fatalf("❌ HTTP 服务异常退出: %v", err)
	}
}

// runScheduled 定时执行完整流水线：抓取 → 分析 → 推送
func runScheduled(svc *service.TrackerService, schedule, lang string) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		runPipeline(svc, lang)
	})
	if err != nil {
		log.Fatalf("❌ cron 表达式不合法: %v", err)
	}

	fmt.Printf("⏰ 定时模式已启动，调度表达式: %s\n", schedule)
	fmt.Println("按下 Ctrl+C 可以优雅停止程序")
	c.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	fmt.Println("\n👋 收到停止信号，等待进行中的任务结束...")
	<-c.Stop().Done()
}

// runPipeline 跑一轮完整流水线，单步失败不影响后续步骤的尝试
func runPipeline(svc *service.TrackerService, lang string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if _, err := svc.RunScrape(ctx, lang); err != nil {
		log.Printf("❌ 抓取失败: %v", err)
		return // 没有新数据就不用分析和推送了
	}

	if result, err := svc.RunAnalysis(ctx, ""); err != nil {
		log.Printf("⚠️ 分析失败: %v", err)
	} else {
		fmt.Printf("✅ 分析: %d 成功, %d 失败\n", result.Analyzed, result.Failed)
	}

	if tally, err := svc.RunNotify(ctx, ""); err != nil {
		log.Printf("⚠️ 推送失败: %v", err)
	} else {
		fmt.Printf("✅ 推送: %d 成功, %d 失败, %d 跳过\n", tally.Sent, tally.Failed, tally.Skipped)
	}
}
