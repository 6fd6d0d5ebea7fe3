package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const minimalYAML = `
feeds:
  - id: wwr
    url: https://weworkremotely.com/remote-jobs.rss
    type: rss
    enabled: true
filters:
  include_keywords: [engineer]
  countries: [argentina]
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func setTelegramEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "-1001")
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("STATE_PATH", "")
}

func TestLoadDefaults(t *testing.T) {
	setTelegramEnv(t)
	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Meta.MaxItemsPerDigest != 10 || cfg.Meta.MinItemsPerDigest != 2 {
		t.Errorf("batch defaults = %d/%d", cfg.Meta.MinItemsPerDigest, cfg.Meta.MaxItemsPerDigest)
	}
	if cfg.Meta.DedupMode != "link" {
		t.Errorf("dedup_mode default = %q", cfg.Meta.DedupMode)
	}
	if cfg.Meta.MaxPublishedEntries != 500 {
		t.Errorf("max_published_entries default = %d", cfg.Meta.MaxPublishedEntries)
	}
	if cfg.Filters.Lookback() != 48*time.Hour {
		t.Errorf("lookback default = %v", cfg.Filters.Lookback())
	}
	if cfg.TelegramChatID != -1001 {
		t.Errorf("chat id = %d", cfg.TelegramChatID)
	}
}

func TestLoadLegacyMaxAgeAlias(t *testing.T) {
	setTelegramEnv(t)
	cfg, err := Load(writeConfig(t, minimalYAML+"\n  max_age_hours: 12\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Filters.Lookback() != 12*time.Hour {
		t.Errorf("max_age_hours alias ignored, lookback = %v", cfg.Filters.Lookback())
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	setTelegramEnv(t)
	if _, err := Load(writeConfig(t, "feeds: [")); err == nil {
		t.Error("malformed config must be fatal")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing token", func(c *Config) { c.TelegramToken = "" }},
		{"missing chat id", func(c *Config) { c.TelegramChatID = 0 }},
		{"no feeds", func(c *Config) { c.Feeds = nil }},
		{"feed without url", func(c *Config) { c.Feeds[0].URL = "" }},
		{"min above max", func(c *Config) { c.Meta.MinItemsPerDigest = 20 }},
		{"bad dedup mode", func(c *Config) { c.Meta.DedupMode = "fuzzy" }},
		{"bad state backend", func(c *Config) { c.Meta.StateBackend = "redis" }},
		{"no geography", func(c *Config) { c.Filters = Filters{IncludeKeywords: []string{"x"}} }},
		{"remote weight out of range", func(c *Config) { c.Scoring.RemoteWeight = 5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	if err := validConfig().Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

func validConfig() *Config {
	cfg := &Config{
		Feeds:          []Feed{{ID: "wwr", URL: "https://example.com/feed", Enabled: true}},
		Filters:        Filters{Countries: []string{"argentina"}},
		TelegramToken:  "123:abc",
		TelegramChatID: -1001,
	}
	cfg.applyDefaults()
	return cfg
}

func TestRegionMarkers(t *testing.T) {
	f := Filters{Region: "latam", RegionAliases: []string{"latin america"}}
	got := f.RegionMarkers()
	if len(got) != 2 || got[0] != "latam" {
		t.Errorf("RegionMarkers = %v", got)
	}

	f = Filters{RegionAliases: []string{"latin america"}}
	if got := f.RegionMarkers(); len(got) != 1 {
		t.Errorf("RegionMarkers without region = %v", got)
	}
}
