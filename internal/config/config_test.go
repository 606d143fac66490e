package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Quiz.TimeBudget != 30 || cfg.Quiz.QuestionLimit != 5 {
		t.Fatalf("unexpected defaults %+v", cfg.Quiz)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("expected default port, got %q", cfg.Server.Port)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
server:
  port: "9090"
quiz:
  questionLimit: 3
  settleDelay: 2s
redis:
  addr: localhost:6379
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Quiz.QuestionLimit != 3 || cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Quiz.TimeBudget != 30 {
		t.Fatalf("expected untouched default time budget, got %d", cfg.Quiz.TimeBudget)
	}
	if got := TTLDuration(cfg.Quiz.SettleDelay, time.Second); got != 2*time.Second {
		t.Fatalf("expected 2s settle delay, got %v", got)
	}
}

func TestTTLDurationFallback(t *testing.T) {
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback, got %v", got)
	}
	if got := TTLDuration("soon", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback on parse error, got %v", got)
	}
}
