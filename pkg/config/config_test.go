package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestLoadDefaults(t *testing.T) {
	resetViper(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Feed.DefaultPageSize != 20 {
		t.Errorf("expected default page size 20, got %d", cfg.Feed.DefaultPageSize)
	}
	if cfg.Feed.MaxPageSize != 100 {
		t.Errorf("expected max page size 100, got %d", cfg.Feed.MaxPageSize)
	}
	if cfg.Feed.ViewRetention != 30*24*time.Hour {
		t.Errorf("expected 30 day view retention, got %v", cfg.Feed.ViewRetention)
	}
	if cfg.Feed.FollowStatusTTL != 30*time.Second {
		t.Errorf("expected 30s follow status TTL, got %v", cfg.Feed.FollowStatusTTL)
	}
	if cfg.Redis.Enabled {
		t.Error("redis must be disabled when no URL is configured")
	}
	if cfg.Auth.JWTSecret != "" {
		t.Error("auth must default to disabled")
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	resetViper(t)
	t.Setenv("MEME_HTTP_SERVER_PORT", "9000")
	t.Setenv("MEME_FEED_PAGE_SIZE", "35")
	t.Setenv("MEME_FEED_REQUEST_TIMEOUT", "2s")
	t.Setenv("MEME_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("MEME_LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Feed.DefaultPageSize != 35 {
		t.Errorf("expected page size 35, got %d", cfg.Feed.DefaultPageSize)
	}
	if cfg.Feed.RequestTimeout != 2*time.Second {
		t.Errorf("expected 2s request timeout, got %v", cfg.Feed.RequestTimeout)
	}
	if !cfg.Redis.Enabled {
		t.Error("redis must be enabled when a URL is configured")
	}
	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("expected DEBUG log level, got %q", cfg.Logging.Level)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database: DatabaseConfig{URL: "postgresql://localhost/memestream"},
			Feed: FeedConfig{
				DefaultPageSize: 20,
				MaxPageSize:     100,
				ScanBatchSize:   100,
				MaxScanBatches:  10,
				ViewRetention:   30 * 24 * time.Hour,
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"missing database url", func(c *Config) { c.Database.URL = "" }, true},
		{"page size above max", func(c *Config) { c.Feed.DefaultPageSize = 200 }, true},
		{"zero page size", func(c *Config) { c.Feed.DefaultPageSize = 0 }, true},
		{"max page size out of range", func(c *Config) { c.Feed.MaxPageSize = 5000 }, true},
		{"zero scan batch", func(c *Config) { c.Feed.ScanBatchSize = 0 }, true},
		{"too many scan batches", func(c *Config) { c.Feed.MaxScanBatches = 500 }, true},
		{"negative view retention", func(c *Config) { c.Feed.ViewRetention = -time.Hour }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestToEnvKey(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"database_url", "DATABASE_URL"},
		{"feed-page-size", "FEED_PAGE_SIZE"},
		{"port", "PORT"},
	}
	for _, tt := range tests {
		if got := toEnvKey(tt.in); got != tt.out {
			t.Errorf("toEnvKey(%q) = %q, want %q", tt.in, got, tt.out)
		}
	}
}
