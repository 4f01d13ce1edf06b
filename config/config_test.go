package config

import (
	"testing"
	"time"
)

func TestConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	if cfg.ServerPort == "" {
		t.Error("server port should have a default")
	}
	if cfg.GetHTTPTimeout() != 15*time.Second {
		t.Errorf("timeout = %v, want 15s default", cfg.GetHTTPTimeout())
	}
	if cfg.GetPastWindowDays() != 90 {
		t.Errorf("past window = %d, want 90 default", cfg.GetPastWindowDays())
	}
	if cfg.GetTableCacheTTL() != 10*time.Minute {
		t.Errorf("table cache TTL = %v, want 10m default", cfg.GetTableCacheTTL())
	}
	if cfg.GetDocCacheTTL() != 60*time.Minute {
		t.Errorf("doc cache TTL = %v, want 60m default", cfg.GetDocCacheTTL())
	}
}

func TestConfigInvalidNumbersFallBack(t *testing.T) {
	cfg := &Config{
		HTTPTimeoutSecs: "not-a-number",
		PastWindowDays:  "-5",
	}
	if cfg.GetHTTPTimeout() != 15*time.Second {
		t.Errorf("timeout = %v, want fallback", cfg.GetHTTPTimeout())
	}
	if cfg.GetPastWindowDays() != 90 {
		t.Errorf("past window = %d, want fallback", cfg.GetPastWindowDays())
	}
}

func TestConfigOverrides(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT_SECONDS", "30")
	t.Setenv("PAST_WINDOW_DAYS", "45")

	cfg := LoadConfig()
	if cfg.GetHTTPTimeout() != 30*time.Second {
		t.Errorf("timeout = %v, want 30s", cfg.GetHTTPTimeout())
	}
	if cfg.GetPastWindowDays() != 45 {
		t.Errorf("past window = %d, want 45", cfg.GetPastWindowDays())
	}
}
