package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	// Auth for /api/jobs; empty disables it.
	APIKey string

	LogLevel slog.Level

	// Document retrieval
	FetchTimeout     time.Duration
	MaxDocumentBytes int64
	FetchAllowHTTP   bool

	// Worker pool
	WorkerCount         int
	MaxQueueSize        int
	MaxConcurrentSelect int

	// Job state
	JobTTL time.Duration

	// Latency stats window
	StatsWindow time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("EMAMEI_API_KEY"),

		LogLevel: envLevel("LOG_LEVEL", slog.LevelInfo),

		FetchTimeout:     envDuration("FETCH_TIMEOUT", 30*time.Second),
		MaxDocumentBytes: envInt64("MAX_DOCUMENT_BYTES", 52428800), // 50MB
		FetchAllowHTTP:   envBool("FETCH_ALLOW_HTTP", true),

		WorkerCount:         envInt("WORKER_COUNT", 4),
		MaxQueueSize:        envInt("MAX_QUEUE_SIZE", 100),
		MaxConcurrentSelect: envInt("MAX_CONCURRENT_SELECT", 4),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		StatsWindow: envDuration("STATS_WINDOW", 1*time.Hour),
	}

	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 30 * time.Second
	}
	if cfg.MaxDocumentBytes <= 0 {
		cfg.MaxDocumentBytes = 52428800
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxConcurrentSelect <= 0 {
		cfg.MaxConcurrentSelect = 4
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be numeric, got %q", c.Port)
	}
	if c.MaxConcurrentSelect > c.WorkerCount*4 {
		return fmt.Errorf("MAX_CONCURRENT_SELECT (%d) exceeds 4x WORKER_COUNT (%d)", c.MaxConcurrentSelect, c.WorkerCount)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envLevel(key string, fallback slog.Level) slog.Level {
	if v := os.Getenv(key); v != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(strings.ToUpper(v))); err == nil {
			return level
		}
	}
	return fallback
}
