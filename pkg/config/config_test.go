package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("http addr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.ResultsDriver != "sqlite" {
		t.Fatalf("results driver = %q, want sqlite", cfg.ResultsDriver)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Fatalf("session ttl = %v, want 24h", cfg.SessionTTL)
	}
	if cfg.PassRatio != 0.7 {
		t.Fatalf("pass ratio = %v, want 0.7", cfg.PassRatio)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("REDIS_ADDR", "redis:6380")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("QUIZ_SESSION_TTL", "90m")
	t.Setenv("QUIZ_RESULTS_DRIVER", "postgres")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RedisAddr != "redis:6380" || cfg.RedisDB != 3 {
		t.Fatalf("redis = %s/%d", cfg.RedisAddr, cfg.RedisDB)
	}
	if cfg.SessionTTL != 90*time.Minute {
		t.Fatalf("session ttl = %v", cfg.SessionTTL)
	}
	if cfg.ResultsDriver != "postgres" {
		t.Fatalf("results driver = %q", cfg.ResultsDriver)
	}
}

func TestLoadParseError(t *testing.T) {
	t.Setenv("REDIS_DB", "not-an-int")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestLoadRejectsBadPassRatio(t *testing.T) {
	t.Setenv("QUIZ_PASS_RATIO", "1.5")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for ratio above 1")
	}
}
