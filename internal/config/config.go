package config

import (
	"os"
	"strconv"
	"time"
)

// Config carries hub and agent settings. Everything comes from the
// environment with LAN-friendly defaults; there is no config file.
type Config struct {
	// Hub
	Port         int
	RedisAddr    string
	StatusTTL    time.Duration
	WriteTimeout time.Duration
	IngressRPS   float64
	IngressBurst int

	// Agent
	HubURL       string
	PollInterval time.Duration
	PlayerURL    string
}

func Load() *Config {
	return &Config{
		Port:         envInt("PORT", 8089),
		RedisAddr:    env("REDIS_ADDR", ""),
		StatusTTL:    envDuration("STATUS_TTL_MS", 5000),
		WriteTimeout: envDuration("WRITE_TIMEOUT_MS", 1000),
		IngressRPS:   envFloat("INGRESS_RPS", 20),
		IngressBurst: envInt("INGRESS_BURST", 10),
		HubURL:       env("HUB_URL", "ws://localhost:8089"),
		PollInterval: envDuration("POLL_INTERVAL_MS", 500),
		PlayerURL:    env("PLAYER_URL", ""),
	}
}

// CacheEnabled reports whether the hub should persist status to Redis.
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallbackMs int) time.Duration {
	return time.Duration(envInt(key, fallbackMs)) * time.Millisecond
}
