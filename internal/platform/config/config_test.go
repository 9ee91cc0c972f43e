package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Environment:        "development",
		TokenTTL:           time.Hour,
		MaxBodyBytes:       4096,
		RateLimitPerMinute: 60,
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ADDR", "")
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "not-a-number")

	cfg := Load()
	if cfg.Addr != ":8080" {
		t.Fatalf("expected default addr, got %q", cfg.Addr)
	}
	if cfg.TokenTTL != time.Hour {
		t.Fatalf("expected default token ttl, got %v", cfg.TokenTTL)
	}
	if cfg.RateLimitPerMinute != 120 {
		t.Fatalf("expected fallback rate limit, got %d", cfg.RateLimitPerMinute)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TEMPLATE_TTL", "30m")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg := Load()
	if cfg.TemplateTTL != 30*time.Minute {
		t.Fatalf("expected 30m template ttl, got %v", cfg.TemplateTTL)
	}
	if cfg.MetricsEnabled {
		t.Fatal("expected metrics disabled")
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Fatalf("unexpected redis addr %q", cfg.RedisAddr)
	}
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	cases := map[string]func(*Config){
		"production without database": func(c *Config) {
			c.Environment = "production"
		},
		"short production secret": func(c *Config) {
			c.Environment = "production"
			c.DatabaseURL = "postgres://localhost/netpay"
			c.JWTSecret = "short"
		},
		"database without client": func(c *Config) {
			c.DatabaseURL = "postgres://localhost/netpay"
			c.JWTSecret = "secret"
		},
		"tiny body limit": func(c *Config) {
			c.MaxBodyBytes = 10
		},
		"zero rate limit": func(c *Config) {
			c.RateLimitPerMinute = 0
		},
		"negative template ttl": func(c *Config) {
			c.TemplateTTL = -time.Second
		},
	}
	for name, mutate := range cases {
		cfg := validConfig()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestValidateProduction(t *testing.T) {
	cfg := validConfig()
	cfg.Environment = "production"
	cfg.DatabaseURL = "postgres://localhost/netpay"
	cfg.JWTSecret = strings.Repeat("x", 32)
	cfg.DataEncryptionKey = strings.Repeat("k", 32)
	cfg.APIClientID = "payroll-ui"
	cfg.APIClientSecretHash = "$2a$10$hash"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid production config, got %v", err)
	}
}
