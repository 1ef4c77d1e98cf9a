package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("default http addr")
	}
	if cfg.Policy.BanThreshold != 3 {
		t.Fatalf("ban threshold default")
	}
	if cfg.Policy.CompletionReward != 10 {
		t.Fatalf("completion reward default")
	}
	if cfg.Redis.Addr != "" {
		t.Fatalf("redis should be off by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "waitline.json")
	data := []byte(`{"httpAddr":":9090","redis":{"addr":"localhost:6379","db":2},"policy":{"banThreshold":5,"completionReward":20}}`)
	if err := os.WriteFile(file, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Fatalf("expected :9090")
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.Redis.DB != 2 {
		t.Fatalf("redis overrides not applied: %+v", cfg.Redis)
	}
	if cfg.Policy.BanThreshold != 5 || cfg.Policy.CompletionReward != 20 {
		t.Fatalf("policy overrides not applied: %+v", cfg.Policy)
	}
	// untouched sections keep defaults
	if cfg.Journal.MaxEntries != 1024 {
		t.Fatalf("journal default lost: %d", cfg.Journal.MaxEntries)
	}
}

func TestFromEnv(t *testing.T) {
	cfg := Default()
	os.Setenv("WAITLINE_HTTP_ADDR", ":7070")
	os.Setenv("WAITLINE_REDIS_ADDR", "redis:6379")
	os.Setenv("WAITLINE_POLICY_BAN_THRESHOLD", "4")
	t.Cleanup(func() {
		os.Unsetenv("WAITLINE_HTTP_ADDR")
		os.Unsetenv("WAITLINE_REDIS_ADDR")
		os.Unsetenv("WAITLINE_POLICY_BAN_THRESHOLD")
	})
	FromEnv(&cfg)
	if cfg.HTTPAddr != ":7070" {
		t.Fatalf("env override addr")
	}
	if cfg.Redis.Addr != "redis:6379" {
		t.Fatalf("env override redis addr")
	}
	if cfg.Policy.BanThreshold != 4 {
		t.Fatalf("env override ban threshold")
	}
}

func TestValidateRejectsBadPolicy(t *testing.T) {
	cfg := Default()
	cfg.Policy.BanThreshold = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for zero ban threshold")
	}
	cfg = Default()
	cfg.Policy.CompletionReward = -1
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for negative reward")
	}
}
