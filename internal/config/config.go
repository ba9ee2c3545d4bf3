package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`
	Port     string `mapstructure:"port"`

	// Optional key gating administrative endpoints (cache flush, article insert).
	APIAccessKey string `mapstructure:"api_access_key"`

	NewsAPIBaseURL        string        `mapstructure:"news_api_base_url"`
	NewsAPIKey            string        `mapstructure:"news_api_key"`
	NewsAPITimeoutSeconds int64         `mapstructure:"news_api_timeout_seconds"`
	NewsAPITimeout        time.Duration `mapstructure:"-"`

	StorageType string `mapstructure:"storage_type"`
	BBoltPath   string `mapstructure:"bbolt_path"`

	CacheType       string        `mapstructure:"cache_type"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	CacheTTLSeconds int64         `mapstructure:"cache_ttl_seconds"`
	CacheTTL        time.Duration `mapstructure:"-"`

	RateLimit         int           `mapstructure:"rate_limit"`
	RateWindowSeconds int64         `mapstructure:"rate_window_seconds"`
	RateWindow        time.Duration `mapstructure:"-"`
	DefaultPageSize   int           `mapstructure:"default_page_size"`
	FetchTimeoutSecs  int64         `mapstructure:"fetch_timeout_seconds"`
	FetchTimeout      time.Duration `mapstructure:"-"`
	SinksFile         string        `mapstructure:"sinks_file"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "statehouse-news")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("port", "8080")
	v.SetDefault("api_access_key", "")
	v.SetDefault("news_api_base_url", "https://newsapi.org/v2")
	v.SetDefault("news_api_key", "")
	v.SetDefault("news_api_timeout_seconds", 15)
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/articles.db")
	v.SetDefault("cache_type", "memory")
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("cache_ttl_seconds", int64((5*time.Minute)/time.Second))
	v.SetDefault("rate_limit", 100)
	v.SetDefault("rate_window_seconds", int64((15*time.Minute)/time.Second))
	v.SetDefault("default_page_size", 10)
	v.SetDefault("fetch_timeout_seconds", 20)
	v.SetDefault("sinks_file", "")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.NewsAPIBaseURL == "" {
		return nil, fmt.Errorf("news_api_base_url must not be empty")
	}
	if cfg.NewsAPITimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid news_api_timeout_seconds (must be positive)")
	}
	cfg.NewsAPITimeout = time.Duration(cfg.NewsAPITimeoutSeconds) * time.Second

	if cfg.CacheTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid cache_ttl_seconds (must be positive)")
	}
	cfg.CacheTTL = time.Duration(cfg.CacheTTLSeconds) * time.Second

	if cfg.RateLimit <= 0 {
		return nil, fmt.Errorf("invalid rate_limit (must be positive)")
	}
	if cfg.RateWindowSeconds <= 0 {
		return nil, fmt.Errorf("invalid rate_window_seconds (must be positive)")
	}
	cfg.RateWindow = time.Duration(cfg.RateWindowSeconds) * time.Second

	if cfg.DefaultPageSize <= 0 {
		return nil, fmt.Errorf("invalid default_page_size (must be positive)")
	}
	if cfg.FetchTimeoutSecs <= 0 {
		return nil, fmt.Errorf("invalid fetch_timeout_seconds (must be positive)")
	}
	cfg.FetchTimeout = time.Duration(cfg.FetchTimeoutSecs) * time.Second

	return &cfg, nil
}
