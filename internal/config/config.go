package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Defaults for configuration values.
const (
	DefaultPort             = "8080"
	DefaultDBPath           = "/data/bets.db"
	DefaultEnv              = "prod"
	DefaultLogLevel         = "info"
	DefaultFeedCacheTTL     = 30 * time.Second
	DefaultFeedRateLimit    = 60
	DefaultFeedTimeout      = 10 * time.Second
	DefaultFeedMaxRetries   = 3
	DefaultShutdownDeadline = 10 * time.Second
)

// Config holds all application configuration.
type Config struct {
	Port     string
	DBPath   string
	Env      string // "local", "dev", "prod"
	LogLevel string

	// Odds feed settings
	FeedURL        string // empty = feed disabled
	FeedAPIKey     string
	FeedCacheTTL   time.Duration
	FeedRateLimit  int // requests per minute
	FeedTimeout    time.Duration
	FeedMaxRetries int

	// Redis is used for the feed cache when set, otherwise the cache is in-process
	RedisAddr string

	ShutdownDeadline time.Duration
}

// Load reads configuration from environment variables (and .env file if present).
func Load() Config {
	_ = godotenv.Load() // Ignore error if .env doesn't exist

	cfg := Config{
		Port:     DefaultPort,
		DBPath:   DefaultDBPath,
		Env:      DefaultEnv,
		LogLevel: DefaultLogLevel,

		FeedURL:        os.Getenv("FEED_URL"),
		FeedAPIKey:     os.Getenv("FEED_API_KEY"),
		FeedCacheTTL:   DefaultFeedCacheTTL,
		FeedRateLimit:  DefaultFeedRateLimit,
		FeedTimeout:    DefaultFeedTimeout,
		FeedMaxRetries: DefaultFeedMaxRetries,

		RedisAddr: os.Getenv("REDIS_ADDR"),

		ShutdownDeadline: DefaultShutdownDeadline,
	}

	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}

	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}

	if v := os.Getenv("ENV"); v != "" {
		cfg.Env = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	if v := os.Getenv("FEED_CACHE_TTL_SEC"); v != "" {
		if sec, err := strconv.Atoi(v); err == nil {
			cfg.FeedCacheTTL = time.Duration(sec) * time.Second
		}
	}

	if v := os.Getenv("FEED_RATE_LIMIT_PER_MIN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.FeedRateLimit = n
		}
	}

	if v := os.Getenv("FEED_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.FeedTimeout = time.Duration(ms) * time.Millisecond
		}
	}

	if v := os.Getenv("FEED_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.FeedMaxRetries = n
		}
	}

	if v := os.Getenv("SHUTDOWN_DEADLINE_SEC"); v != "" {
		if sec, err := strconv.Atoi(v); err == nil {
			cfg.ShutdownDeadline = time.Duration(sec) * time.Second
		}
	}

	return cfg
}

// Validate checks that configuration values are within acceptable ranges.
func Validate(cfg Config) error {
	if cfg.Port == "" {
		return fmt.Errorf("PORT must be set")
	}
	if cfg.DBPath == "" {
		return fmt.Errorf("DB_PATH must be set")
	}
	if cfg.FeedCacheTTL < 0 {
		return fmt.Errorf("FEED_CACHE_TTL_SEC must be non-negative, got %v", cfg.FeedCacheTTL)
	}
	if cfg.FeedRateLimit < 1 {
		return fmt.Errorf("FEED_RATE_LIMIT_PER_MIN must be at least 1, got %d", cfg.FeedRateLimit)
	}
	if cfg.FeedTimeout < 100*time.Millisecond {
		return fmt.Errorf("FEED_TIMEOUT_MS must be at least 100ms, got %v", cfg.FeedTimeout)
	}
	if cfg.FeedMaxRetries < 0 {
		return fmt.Errorf("FEED_MAX_RETRIES must be non-negative, got %d", cfg.FeedMaxRetries)
	}
	if cfg.ShutdownDeadline <= 0 {
		return fmt.Errorf("SHUTDOWN_DEADLINE_SEC must be positive, got %v", cfg.ShutdownDeadline)
	}
	return nil
}

// FeedEnabled reports whether an upstream odds feed is configured.
func (c Config) FeedEnabled() bool {
	return c.FeedURL != ""
}
