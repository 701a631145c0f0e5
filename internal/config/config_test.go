package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "EMAMEI_API_KEY", "LOG_LEVEL", "FETCH_TIMEOUT", "MAX_DOCUMENT_BYTES",
		"FETCH_ALLOW_HTTP", "WORKER_COUNT", "MAX_QUEUE_SIZE", "MAX_CONCURRENT_SELECT", "JOB_TTL", "STATS_WINDOW"} {
		t.Setenv(k, "")
	}
	cfg := Load()

	if cfg.Port != "8090" {
		t.Errorf("expected port 8090, got %q", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("expected info level, got %v", cfg.LogLevel)
	}
	if cfg.FetchTimeout != 30*time.Second {
		t.Errorf("expected 30s fetch timeout, got %v", cfg.FetchTimeout)
	}
	if cfg.MaxDocumentBytes != 52428800 {
		t.Errorf("expected 50MB limit, got %d", cfg.MaxDocumentBytes)
	}
	if !cfg.FetchAllowHTTP {
		t.Error("expected plain http to be allowed by default")
	}
	if cfg.WorkerCount != 4 || cfg.MaxQueueSize != 100 || cfg.MaxConcurrentSelect != 4 {
		t.Errorf("unexpected pool defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("EMAMEI_API_KEY", "secret")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("FETCH_TIMEOUT", "5s")
	t.Setenv("FETCH_ALLOW_HTTP", "false")
	t.Setenv("WORKER_COUNT", "2")
	t.Setenv("JOB_TTL", "10m")

	cfg := Load()
	if cfg.Port != "9000" || cfg.APIKey != "secret" {
		t.Errorf("unexpected overrides: %+v", cfg)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("expected debug level, got %v", cfg.LogLevel)
	}
	if cfg.FetchTimeout != 5*time.Second {
		t.Errorf("expected 5s, got %v", cfg.FetchTimeout)
	}
	if cfg.FetchAllowHTTP {
		t.Error("expected plain http to be disabled")
	}
	if cfg.WorkerCount != 2 {
		t.Errorf("expected 2 workers, got %d", cfg.WorkerCount)
	}
	if cfg.JobTTL != 10*time.Minute {
		t.Errorf("expected 10m TTL, got %v", cfg.JobTTL)
	}
}

func TestLoad_ClampsNonPositive(t *testing.T) {
	t.Setenv("WORKER_COUNT", "-1")
	t.Setenv("MAX_QUEUE_SIZE", "0")
	t.Setenv("JOB_TTL", "-5m")

	cfg := Load()
	if cfg.WorkerCount != 4 || cfg.MaxQueueSize != 100 || cfg.JobTTL != time.Hour {
		t.Errorf("expected clamped defaults, got %+v", cfg)
	}
}

func TestValidate_RejectsBadPort(t *testing.T) {
	cfg := Load()
	cfg.Port = "http"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for non-numeric port")
	}
}
