package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ServerConfig 行情服务
type ServerConfig struct {
	Listen             string  `yaml:"listen" json:"listen"`
	MetricsListen      string  `yaml:"metrics_listen" json:"metrics_listen"` // 为空则不启动 debug 服务
	RateLimitPerSecond float64 `yaml:"rate_limit_per_second" json:"rate_limit_per_second"`
}

// FeedConfig 客户端拉取行情
type FeedConfig struct {
	BaseURL         string        `yaml:"base_url" json:"base_url"`
	RefetchInterval time.Duration `yaml:"refetch_interval" json:"refetch_interval"`
	StaleTime       time.Duration `yaml:"stale_time" json:"stale_time"`
	Timeout         time.Duration `yaml:"timeout" json:"timeout"`
	Assets          []string      `yaml:"assets" json:"assets"`
	MinVolume       float64       `yaml:"min_volume" json:"min_volume"`
	MinLiquidity    float64       `yaml:"min_liquidity" json:"min_liquidity"`
	Search          string        `yaml:"search" json:"search"`
}

// DeckConfig 卡片队列
type DeckConfig struct {
	Source          string        `yaml:"source" json:"source"` // feed | dummy
	CommitThreshold float64       `yaml:"commit_threshold" json:"commit_threshold"`
	AdvanceDelay    time.Duration `yaml:"advance_delay" json:"advance_delay"`
}

// IdentityConfig 登录会话
type IdentityConfig struct {
	AppID         string `yaml:"app_id" json:"app_id"`
	SessionDir    string `yaml:"session_dir" json:"session_dir"`
	Email         string `yaml:"email" json:"email"`
	WalletAddress string `yaml:"wallet_address" json:"wallet_address"`
}

// FeatureFlags 功能开关
type FeatureFlags struct {
	AutoTrading     bool `yaml:"auto_trading" json:"auto_trading"`
	Notifications   bool `yaml:"notifications" json:"notifications"`
	RealTimeUpdates bool `yaml:"real_time_updates" json:"real_time_updates"`
	AdvancedCharts  bool `yaml:"advanced_charts" json:"advanced_charts"`
}

// SiteConfig 站点信息
type SiteConfig struct {
	Name        string       `yaml:"name" json:"name"`
	Description string       `yaml:"description" json:"description"`
	URL         string       `yaml:"url" json:"url"`
	Features    FeatureFlags `yaml:"features" json:"features"`
}

// TradingConfig 仓位与滑点默认值，仅用于展示
type TradingConfig struct {
	MaxPositionSize     float64  `yaml:"max_position_size" json:"max_position_size"`
	MinPositionSize     float64  `yaml:"min_position_size" json:"min_position_size"`
	DefaultPositionSize float64  `yaml:"default_position_size" json:"default_position_size"`
	DefaultSlippage     float64  `yaml:"default_slippage" json:"default_slippage"`
	MaxSlippage         float64  `yaml:"max_slippage" json:"max_slippage"`
	MinMarketVolume     float64  `yaml:"min_market_volume" json:"min_market_volume"`
	MinLiquidity        float64  `yaml:"min_liquidity" json:"min_liquidity"`
	CryptoAssets        []string `yaml:"crypto_assets" json:"crypto_assets"`
}

// JournalConfig 滑动记录
type JournalConfig struct {
	Path string `yaml:"path" json:"path"` // 为空则不记录
}

// LogConfig 日志
type LogConfig struct {
	Level      string `yaml:"level" json:"level"`
	File       string `yaml:"file" json:"file"`
	MaxSize    int    `yaml:"max_size" json:"max_size"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups"`
	MaxAge     int    `yaml:"max_age" json:"max_age"`
	Compress   bool   `yaml:"compress" json:"compress"`
}

// Config 应用配置。进程启动时读取一次，之后只读。
type Config struct {
	Server   ServerConfig   `yaml:"server" json:"server"`
	Feed     FeedConfig     `yaml:"feed" json:"feed"`
	Deck     DeckConfig     `yaml:"deck" json:"deck"`
	Identity IdentityConfig `yaml:"identity" json:"identity"`
	Site     SiteConfig     `yaml:"site" json:"site"`
	Trading  TradingConfig  `yaml:"trading" json:"trading"`
	Journal  JournalConfig  `yaml:"journal" json:"journal"`
	Log      LogConfig      `yaml:"log" json:"log"`
}

const (
	DeckSourceFeed  = "feed"
	DeckSourceDummy = "dummy"
)

// ErrInvalidConfig 配置校验失败
var ErrInvalidConfig = errors.New("invalid config")

// Default 默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Listen:             ":8080",
			RateLimitPerSecond: 50,
		},
		Feed: FeedConfig{
			BaseURL:         "http://localhost:8080",
			RefetchInterval: 10 * time.Second,
			StaleTime:       5 * time.Second,
			Timeout:         10 * time.Second,
		},
		Deck: DeckConfig{
			Source:          DeckSourceFeed,
			CommitThreshold: 150,
			AdvanceDelay:    400 * time.Millisecond,
		},
		Identity: IdentityConfig{
			SessionDir: "data/session",
		},
		Site: SiteConfig{
			Name:        "PredictPark",
			Description: "Trade crypto prediction markets on Polymarket with confidence",
			URL:         "http://localhost:3000",
			Features: FeatureFlags{
				RealTimeUpdates: true,
				AdvancedCharts:  true,
			},
		},
		Trading: TradingConfig{
			MaxPositionSize:     1000,
			MinPositionSize:     1,
			DefaultPositionSize: 100,
			DefaultSlippage:     0.01,
			MaxSlippage:         0.05,
			MinMarketVolume:     1000,
			MinLiquidity:        500,
			CryptoAssets:        []string{"BTC", "ETH", "SOL", "MATIC", "AVAX", "ARB", "OP"},
		},
		Journal: JournalConfig{
			Path: "data/journal.db",
		},
		Log: LogConfig{
			Level:      "info",
			File:       "logs/predictpark.log",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   true,
		},
	}
}

// LoadDotEnv 加载 .env 文件到环境变量（已存在的变量不覆盖）。
// 不传参数时加载当前目录的 .env，文件不存在不算错误。
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
	}
	if err := godotenv.Load(paths...); err != nil {
		return fmt.Errorf("加载 .env 失败: %w", err)
	}
	return nil
}

// Load 默认值 < 配置文件 < 环境变量，然后校验。filePath 为空时跳过配置文件。
func Load(filePath string) (*Config, error) {
	cfg := Default()
	if filePath != "" {
		if err := loadConfigFile(filePath, cfg); err != nil {
			return nil, fmt.Errorf("加载配置文件失败 %s: %w", filePath, err)
		}
	}
	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("配置验证失败: %w", err)
	}
	return cfg, nil
}

// loadConfigFile 支持 YAML 和 JSON，只覆盖文件中出现的字段
func loadConfigFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("读取配置文件失败: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(filePath)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("解析 YAML 配置文件失败: %w", err)
		}
	case ".json":
		var raw struct {
			*Config
			Feed struct {
				*FeedConfig
				RefetchInterval string `json:"refetch_interval"`
				StaleTime       string `json:"stale_time"`
				Timeout         string `json:"timeout"`
			} `json:"feed"`
			Deck struct {
				*DeckConfig
				AdvanceDelay string `json:"advance_delay"`
			} `json:"deck"`
		}
		raw.Config = cfg
		raw.Feed.FeedConfig = &cfg.Feed
		raw.Deck.DeckConfig = &cfg.Deck
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("解析 JSON 配置文件失败: %w", err)
		}
		for _, d := range []struct {
			raw string
			dst *time.Duration
		}{
			{raw.Feed.RefetchInterval, &cfg.Feed.RefetchInterval},
			{raw.Feed.StaleTime, &cfg.Feed.StaleTime},
			{raw.Feed.Timeout, &cfg.Feed.Timeout},
			{raw.Deck.AdvanceDelay, &cfg.Deck.AdvanceDelay},
		} {
			if d.raw == "" {
				continue
			}
			v, err := time.ParseDuration(d.raw)
			if err != nil {
				return fmt.Errorf("解析时长 %q 失败: %w", d.raw, err)
			}
			*d.dst = v
		}
	default:
		return fmt.Errorf("不支持的配置文件格式: %s (支持 .yaml, .yml, .json)", ext)
	}
	return nil
}

// applyEnv 环境变量优先级最高
func applyEnv(c *Config) {
	c.Server.Listen = getEnv("PREDICTPARK_LISTEN", c.Server.Listen)
	c.Server.MetricsListen = getEnv("PREDICTPARK_METRICS_LISTEN", c.Server.MetricsListen)
	c.Server.RateLimitPerSecond = parseFloatEnv("PREDICTPARK_RATE_LIMIT", c.Server.RateLimitPerSecond)

	c.Feed.BaseURL = getEnv("PREDICTPARK_FEED_URL", c.Feed.BaseURL)
	c.Feed.RefetchInterval = parseDurationEnv("PREDICTPARK_REFETCH_INTERVAL", c.Feed.RefetchInterval)
	c.Feed.StaleTime = parseDurationEnv("PREDICTPARK_STALE_TIME", c.Feed.StaleTime)
	c.Feed.Timeout = parseDurationEnv("PREDICTPARK_FEED_TIMEOUT", c.Feed.Timeout)
	c.Feed.Assets = parseListEnv("PREDICTPARK_ASSETS", c.Feed.Assets)
	c.Feed.MinVolume = parseFloatEnv("PREDICTPARK_MIN_VOLUME", c.Feed.MinVolume)
	c.Feed.MinLiquidity = parseFloatEnv("PREDICTPARK_MIN_LIQUIDITY", c.Feed.MinLiquidity)
	c.Feed.Search = getEnv("PREDICTPARK_SEARCH", c.Feed.Search)

	c.Deck.Source = getEnv("PREDICTPARK_DECK_SOURCE", c.Deck.Source)
	c.Deck.CommitThreshold = parseFloatEnv("PREDICTPARK_COMMIT_THRESHOLD", c.Deck.CommitThreshold)
	c.Deck.AdvanceDelay = parseDurationEnv("PREDICTPARK_ADVANCE_DELAY", c.Deck.AdvanceDelay)

	c.Identity.AppID = getEnv("PREDICTPARK_APP_ID", getEnv("PRIVY_APP_ID", c.Identity.AppID))
	c.Identity.SessionDir = getEnv("PREDICTPARK_SESSION_DIR", c.Identity.SessionDir)
	c.Identity.Email = getEnv("PREDICTPARK_EMAIL", c.Identity.Email)
	c.Identity.WalletAddress = getEnv("PREDICTPARK_WALLET", c.Identity.WalletAddress)

	c.Site.URL = getEnv("APP_URL", c.Site.URL)
	c.Site.Features.AutoTrading = parseBoolEnv("ENABLE_AUTO_TRADE", c.Site.Features.AutoTrading)
	c.Site.Features.Notifications = parseBoolEnv("ENABLE_NOTIFICATIONS", c.Site.Features.Notifications)

	// 0 与无法解析都回退到当前值
	c.Trading.MaxPositionSize = parseNonZeroFloatEnv("MAX_POSITION_SIZE", c.Trading.MaxPositionSize)
	c.Trading.DefaultSlippage = parseNonZeroFloatEnv("DEFAULT_SLIPPAGE", c.Trading.DefaultSlippage)

	c.Journal.Path = getEnv("PREDICTPARK_JOURNAL", c.Journal.Path)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.File = getEnv("LOG_FILE", c.Log.File)
}

// Validate 验证配置
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.Server.RateLimitPerSecond < 0 {
		add("server.rate_limit_per_second 不能为负数")
	}
	if c.Feed.RefetchInterval <= 0 {
		add("feed.refetch_interval 必须大于 0")
	}
	if c.Feed.StaleTime <= 0 {
		add("feed.stale_time 必须大于 0")
	}
	if c.Feed.Timeout <= 0 {
		add("feed.timeout 必须大于 0")
	}
	if c.Feed.MinVolume < 0 || c.Feed.MinLiquidity < 0 {
		add("feed.min_volume / feed.min_liquidity 不能为负数")
	}
	switch c.Deck.Source {
	case DeckSourceFeed:
		if c.Feed.BaseURL == "" {
			add("deck.source=feed 时 feed.base_url 不能为空")
		}
	case DeckSourceDummy:
	default:
		add("deck.source 只能是 feed 或 dummy，当前: %q", c.Deck.Source)
	}
	if c.Deck.CommitThreshold <= 0 {
		add("deck.commit_threshold 必须大于 0")
	}
	if c.Deck.AdvanceDelay <= 0 {
		add("deck.advance_delay 必须大于 0")
	}
	t := c.Trading
	if t.MinPositionSize <= 0 || t.MaxPositionSize < t.MinPositionSize {
		add("trading 仓位范围不合法: min=%v max=%v", t.MinPositionSize, t.MaxPositionSize)
	} else if t.DefaultPositionSize < t.MinPositionSize || t.DefaultPositionSize > t.MaxPositionSize {
		add("trading.default_position_size 必须在 [%v, %v] 内", t.MinPositionSize, t.MaxPositionSize)
	}
	if t.MaxSlippage < 0 || t.DefaultSlippage < 0 || t.DefaultSlippage > t.MaxSlippage {
		add("trading.default_slippage 必须在 [0, %v] 内", t.MaxSlippage)
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// getEnv 获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseFloatEnv 解析浮点数环境变量
func parseFloatEnv(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseNonZeroFloatEnv(key string, defaultValue float64) float64 {
	if v := parseFloatEnv(key, defaultValue); v != 0 {
		return v
	}
	return defaultValue
}

// parseBoolEnv 解析布尔环境变量
func parseBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// parseDurationEnv 支持 "10s" 这类写法，纯数字按毫秒处理
func parseDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

// parseListEnv 逗号分隔，忽略空项
func parseListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, s := range strings.Split(value, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
