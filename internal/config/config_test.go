package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ContractName != "bitreon-core" {
		t.Fatalf("unexpected contract name %q", cfg.ContractName)
	}
	if cfg.CacheTTL != 15*time.Second {
		t.Fatalf("unexpected cache ttl %v", cfg.CacheTTL)
	}
	if cfg.ListenAddr != ":8080" {
		t.Fatalf("unexpected listen addr %q", cfg.ListenAddr)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CONTRACT_NAME", "bitreon-core-v2")
	t.Setenv("RATE_LIMIT_RPS", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ContractName != "bitreon-core-v2" {
		t.Fatalf("override not applied: %q", cfg.ContractName)
	}
	if cfg.RateLimitRPS != 5 {
		t.Fatalf("override not applied: %d", cfg.RateLimitRPS)
	}
}

func TestLoadRejectsBadRateLimit(t *testing.T) {
	t.Setenv("RATE_LIMIT_RPS", "0")

	if _, err := Load(); err == nil {
		t.Fatal("expected validation error for zero rate limit")
	}
}

func TestOrigins(t *testing.T) {
	cfg := Config{AllowedOrigins: "http://localhost:3000, https://bitreon.app ,"}
	got := cfg.Origins()
	if len(got) != 2 || got[0] != "http://localhost:3000" || got[1] != "https://bitreon.app" {
		t.Fatalf("unexpected origins %#v", got)
	}
}
