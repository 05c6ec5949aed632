package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github-trending-tracker/internal/common"

	"github.com/joho/godotenv"
)

// Config 汇总所有环境变量配置
// 必填项只在用到它的周期里校验：没配 AI key 不妨碍只跑抓取
type Config struct {
	DatabaseDSN   string // 必填
	GeminiAPIKey  string // 分析周期必填
	GithubToken   string // 可选，配了 README 拉取限额更宽裕
	CronSecret    string // 触发接口的共享密钥
	ServerChanKey string // Server酱 SendKey
	WeChatWebhook string // 企业微信群机器人 Webhook

	NotifyLanguages []string // 推送过滤：语言白名单（逗号分隔）
	NotifyMinStars  int      // 推送过滤：star 数下限

	Port int // HTTP 服务端口，默认 8080
}

// Load 从 .env（如果有）和环境变量加载配置
func Load() *Config {
	// .env 不存在不算错，线上环境直接用环境变量
	if err := godotenv.Load(); err == nil {
		log.Println("📄 已加载 .env 文件")
	}

	cfg := &Config{
		DatabaseDSN:   os.Getenv("DATABASE_DSN"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GithubToken:   os.Getenv("GITHUB_TOKEN"),
		CronSecret:    os.Getenv("CRON_SECRET"),
		ServerChanKey: os.Getenv("SERVERCHAN_KEY"),
		WeChatWebhook: os.Getenv("WECHAT_WEBHOOK"),
		Port:          8080,
	}

	if langs := os.Getenv("NOTIFY_LANGUAGES"); langs != "" {
		for _, lang := range strings.Split(langs, ",") {
			if lang = strings.TrimSpace(lang); lang != "" {
				cfg.NotifyLanguages = append(cfg.NotifyLanguages, lang)
			}
		}
	}

	if raw := os.Getenv("NOTIFY_MIN_STARS"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			cfg.NotifyMinStars = n
		}
	}

	if raw := os.Getenv("PORT"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			cfg.Port = n
		}
	}

	return cfg
}

// RequireDatabase 数据库 DSN 是所有模式的硬依赖
func (c *Config) RequireDatabase() error {
	if c.DatabaseDSN == "" {
		return common.NewError(common.ErrCodeConfig, "DATABASE_DSN 未配置")
	}
	return nil
}
