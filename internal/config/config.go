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

	Host                  string        `mapstructure:"llm_host"`
	RequestTimeoutSeconds int64         `mapstructure:"request_timeout_seconds"`
	RequestTimeout        time.Duration `mapstructure:"-"`
	Verbose               bool          `mapstructure:"verbose"`
	AuthUsername          string        `mapstructure:"auth_username"`
	AuthPassword          string        `mapstructure:"auth_password"`

	ProfilesFile string `mapstructure:"profiles_file"`

	CacheType            string        `mapstructure:"cache_type"`
	BBoltPath            string        `mapstructure:"bbolt_path"`
	CacheTTLSeconds      int64         `mapstructure:"cache_ttl_seconds"`
	CacheCleanupSeconds  int64         `mapstructure:"cache_cleanup_interval_seconds"`
	CacheTTL             time.Duration `mapstructure:"-"`
	CacheCleanupInterval time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "samvad-llm-client")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("llm_host", "http://127.0.0.1:11434")
	v.SetDefault("request_timeout_seconds", 10)
	v.SetDefault("verbose", false)
	v.SetDefault("profiles_file", "")
	v.SetDefault("cache_type", "none")
	v.SetDefault("bbolt_path", "./data/models.db")
	v.SetDefault("cache_ttl_seconds", int64((24*time.Hour)/time.Second))
	v.SetDefault("cache_cleanup_interval_seconds", int64((6*time.Hour)/time.Second))

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Host == "" {
		return nil, fmt.Errorf("llm_host must not be empty")
	}
	if cfg.RequestTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid request_timeout_seconds (must be positive seconds)")
	}
	cfg.RequestTimeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second

	if cfg.CacheTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid cache_ttl_seconds (must be positive seconds)")
	}
	if cfg.CacheCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid cache_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.CacheTTL = time.Duration(cfg.CacheTTLSeconds) * time.Second
	cfg.CacheCleanupInterval = time.Duration(cfg.CacheCleanupSeconds) * time.Second

	return &cfg, nil
}
