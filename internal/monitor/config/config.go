package config

import (
	"time"

	"golang-stock-tracker/pkg/config"
)

// Monitor holds the batch runner configuration.
type Monitor struct {
	MaxConcurrentQuotes int           `mapstructure:"max_concurrent_quotes"`
	PerPostTimeout      time.Duration `mapstructure:"per_post_timeout"`
	BatchLockTTL        time.Duration `mapstructure:"batch_lock_ttl"`
	BatchTimeout        time.Duration `mapstructure:"batch_timeout"`
	ResultTTL           time.Duration `mapstructure:"result_ttl"`
	CloseOnResolve      bool          `mapstructure:"close_on_resolve"`
}

// Usage holds the quota configuration.
type Usage struct {
	DailyLimit int    `mapstructure:"daily_limit"`
	TimeZone   string `mapstructure:"time_zone"`
}

// YahooFinance holds the configuration for the Yahoo Finance chart API.
type YahooFinance struct {
	BaseURL             string        `mapstructure:"base_url"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	Range               string        `mapstructure:"range"`
	Interval            string        `mapstructure:"interval"`
	CacheTTL            time.Duration `mapstructure:"cache_ttl"`
	RequestTimeout      time.Duration `mapstructure:"request_timeout"`
}

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	BotToken      string `mapstructure:"bot_token"`
	ChannelChatID int64  `mapstructure:"channel_chat_id"`
}

// Scheduler holds the periodic price check configuration.
type Scheduler struct {
	Enabled        bool          `mapstructure:"enabled"`
	CronExpression string        `mapstructure:"cron_expression"`
	NotifyChanges  bool          `mapstructure:"notify_changes"`
	ConsumeTimeout time.Duration `mapstructure:"consume_timeout"`
	RetryInterval  time.Duration `mapstructure:"retry_interval"`
	MaxIdle        time.Duration `mapstructure:"max_idle"`
	MaxRetry       int           `mapstructure:"max_retry"`
}

// Config holds the full configuration for the monitor service.
type Config struct {
	App          config.App      `mapstructure:"app"`
	Logger       config.Logger   `mapstructure:"logger"`
	Database     config.Database `mapstructure:"database"`
	Redis        config.Redis    `mapstructure:"redis"`
	API          config.API      `mapstructure:"api"`
	Kafka        config.Kafka    `mapstructure:"kafka"`
	Monitor      Monitor         `mapstructure:"monitor"`
	Usage        Usage           `mapstructure:"usage"`
	YahooFinance YahooFinance    `mapstructure:"yahoo_finance"`
	Telegram     Telegram        `mapstructure:"telegram"`
	Scheduler    Scheduler       `mapstructure:"scheduler"`
}

var defaults = map[string]interface{}{
	"logger.level":                         "info",
	"logger.encoding":                      "json",
	"api.port":                             8080,
	"kafka.topic":                          "post.status",
	"monitor.max_concurrent_quotes":        4,
	"monitor.per_post_timeout":             "20s",
	"monitor.batch_lock_ttl":               "10m",
	"monitor.batch_timeout":                "5m",
	"monitor.result_ttl":                   "24h",
	"monitor.close_on_resolve":             true,
	"usage.daily_limit":                    20,
	"usage.time_zone":                      "UTC",
	"yahoo_finance.base_url":               "https://query1.finance.yahoo.com",
	"yahoo_finance.max_request_per_minute": 60,
	"yahoo_finance.range":                  "5d",
	"yahoo_finance.interval":               "1d",
	"yahoo_finance.cache_ttl":              "1m",
	"yahoo_finance.request_timeout":        "10s",
	"scheduler.enabled":                    true,
	"scheduler.cron_expression":            "*/30 * * * 1-5",
	"scheduler.notify_changes":             true,
	"scheduler.consume_timeout":            "10m",
	"scheduler.retry_interval":             "1m",
	"scheduler.max_idle":                   "15m",
	"scheduler.max_retry":                  3,
	"redis.stream_max_len":                 10000,
}

// Load loads the monitor configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg, defaults); err != nil {
		return nil, err
	}
	return &cfg, nil
}
