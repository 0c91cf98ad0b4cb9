package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "REDIS_ADDR", "STATUS_TTL_MS", "WRITE_TIMEOUT_MS",
		"INGRESS_RPS", "INGRESS_BURST", "HUB_URL", "POLL_INTERVAL_MS", "PLAYER_URL",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != 8089 {
		t.Fatalf("Port=%d", cfg.Port)
	}
	if cfg.PollInterval != 500*time.Millisecond {
		t.Fatalf("PollInterval=%s", cfg.PollInterval)
	}
	if cfg.HubURL != "ws://localhost:8089" {
		t.Fatalf("HubURL=%q", cfg.HubURL)
	}
	if cfg.CacheEnabled() {
		t.Fatal("cache must be disabled without REDIS_ADDR")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("POLL_INTERVAL_MS", "250")
	t.Setenv("INGRESS_RPS", "5.5")
	t.Setenv("HUB_URL", "ws://tv.local:9000")

	cfg := Load()
	if cfg.Port != 9000 {
		t.Fatalf("Port=%d", cfg.Port)
	}
	if !cfg.CacheEnabled() {
		t.Fatal("cache should be enabled")
	}
	if cfg.PollInterval != 250*time.Millisecond {
		t.Fatalf("PollInterval=%s", cfg.PollInterval)
	}
	if cfg.IngressRPS != 5.5 {
		t.Fatalf("IngressRPS=%v", cfg.IngressRPS)
	}
	if cfg.HubURL != "ws://tv.local:9000" {
		t.Fatalf("HubURL=%q", cfg.HubURL)
	}
}

func TestLoadIgnoresGarbage(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	t.Setenv("INGRESS_RPS", "fast")

	cfg := Load()
	if cfg.Port != 8089 {
		t.Fatalf("Port=%d, want default on bad input", cfg.Port)
	}
	if cfg.IngressRPS != 20 {
		t.Fatalf("IngressRPS=%v, want default on bad input", cfg.IngressRPS)
	}
}
