package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Feed describes one RSS/Atom source.
type Feed struct {
	ID      string `yaml:"id"`
	URL     string `yaml:"url"`
	Type    string `yaml:"type"` // "rss" or "atom"
	Enabled bool   `yaml:"enabled"`
}

// Filters holds the admission rules. Read-only for the whole run.
type Filters struct {
	IncludeKeywords []string `yaml:"include_keywords"`
	ExcludeKeywords []string `yaml:"exclude_keywords"`
	Region          string   `yaml:"region"`
	RegionAliases   []string `yaml:"region_aliases"`
	Countries       []string `yaml:"countries"`
	RemoteKeywords  []string `yaml:"remote_keywords"`
	LookbackHours   int      `yaml:"lookback_hours"`
	MaxAgeHours     int      `yaml:"max_age_hours"` // legacy alias for lookback_hours
}

// RegionMarkers returns the broad region name plus its aliases.
func (f Filters) RegionMarkers() []string {
	if f.Region == "" {
		return f.RegionAliases
	}
	return append([]string{f.Region}, f.RegionAliases...)
}

// Lookback resolves the freshness window, honoring the legacy key.
func (f Filters) Lookback() time.Duration {
	hours := f.LookbackHours
	if hours == 0 {
		hours = f.MaxAgeHours
	}
	return time.Duration(hours) * time.Hour
}

// Scoring holds the signal weights for ranking.
type Scoring struct {
	RegionWeight  int `yaml:"region_weight"`
	CountryWeight int `yaml:"country_weight"`
	RemoteWeight  int `yaml:"remote_weight"`
}

// Meta holds batch sizing and state policy.
type Meta struct {
	MaxItemsPerDigest   int    `yaml:"max_items_per_digest"`
	MinItemsPerDigest   int    `yaml:"min_items_per_digest"`
	DedupMode           string `yaml:"dedup_mode"`    // "link" or "link_title"
	StateBackend        string `yaml:"state_backend"` // "file" or "sqlite"
	StatePath           string `yaml:"state_path"`
	MaxPublishedEntries int    `yaml:"max_published_entries"`
}

// Formatting holds the digest rendering knobs.
type Formatting struct {
	TitleTemplate string            `yaml:"title_template"` // supports {date} and {time}
	Hashtags      []string          `yaml:"hashtags"`
	SourceNames   map[string]string `yaml:"source_names"` // feed id -> short display name
}

type Config struct {
	Feeds      []Feed     `yaml:"feeds"`
	Filters    Filters    `yaml:"filters"`
	Scoring    Scoring    `yaml:"scoring"`
	Meta       Meta       `yaml:"meta"`
	Formatting Formatting `yaml:"formatting"`

	// Telegram settings, environment only — never stored in the YAML file.
	TelegramToken  string `yaml:"-"`
	TelegramChatID int64  `yaml:"-"`

	// App settings
	Debug            bool          `yaml:"-"`
	RequestTimeout   time.Duration `yaml:"-"`
	PublishTimeout   time.Duration `yaml:"-"`
	RetryAttempts    int           `yaml:"-"`
	RetryDelay       time.Duration `yaml:"-"`
	EnableMonitoring bool          `yaml:"-"`
	MonitoringPort   string        `yaml:"-"`
}

// Load reads the YAML config, then applies environment overrides and defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if p := os.Getenv("CONFIG_PATH"); p != "" {
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := &Config{
		RequestTimeout: 20 * time.Second,
		PublishTimeout: 30 * time.Second,
		RetryAttempts:  3,
		RetryDelay:     2 * time.Second,
		MonitoringPort: "8080",
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyDefaults()

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}

	if os.Getenv("DEBUG") == "true" {
		cfg.Debug = true
	}
	if os.Getenv("ENABLE_HTTP_MONITORING") == "true" {
		cfg.EnableMonitoring = true
	}
	if port := os.Getenv("MONITORING_PORT"); port != "" {
		cfg.MonitoringPort = port
	}
	if p := os.Getenv("STATE_PATH"); p != "" {
		cfg.Meta.StatePath = p
	}

	return cfg, cfg.Validate()
}

func (c *Config) applyDefaults() {
	if c.Meta.MaxItemsPerDigest == 0 {
		c.Meta.MaxItemsPerDigest = 10
	}
	if c.Meta.MinItemsPerDigest == 0 {
		c.Meta.MinItemsPerDigest = 2
	}
	if c.Meta.DedupMode == "" {
		c.Meta.DedupMode = "link"
	}
	if c.Meta.StateBackend == "" {
		c.Meta.StateBackend = "file"
	}
	if c.Meta.StatePath == "" {
		c.Meta.StatePath = "state.json"
	}
	if c.Meta.MaxPublishedEntries == 0 {
		c.Meta.MaxPublishedEntries = 500
	}
	if c.Filters.LookbackHours == 0 && c.Filters.MaxAgeHours == 0 {
		c.Filters.LookbackHours = 48
	}
	if len(c.Filters.RemoteKeywords) == 0 {
		c.Filters.RemoteKeywords = []string{"remote", "remoto", "work from home", "anywhere"}
	}
	if c.Scoring.RegionWeight == 0 {
		c.Scoring.RegionWeight = 4
	}
	if c.Scoring.CountryWeight == 0 {
		c.Scoring.CountryWeight = 2
	}
	if c.Scoring.RemoteWeight == 0 {
		c.Scoring.RemoteWeight = 2
	}
	if c.Formatting.TitleTemplate == "" {
		c.Formatting.TitleTemplate = "💼 Remote LATAM Jobs — {date} • {time}"
	}
	if len(c.Formatting.Hashtags) == 0 {
		c.Formatting.Hashtags = []string{"#jobs", "#remote", "#latam"}
	}
}

func (c *Config) Validate() error {
	if len(c.Feeds) == 0 {
		return fmt.Errorf("at least one feed is required")
	}
	for i, f := range c.Feeds {
		if f.ID == "" {
			return fmt.Errorf("feed %d: id is required", i)
		}
		if f.URL == "" {
			return fmt.Errorf("feed %q: url is required", f.ID)
		}
	}
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	if c.TelegramChatID == 0 {
		return fmt.Errorf("TELEGRAM_CHAT_ID is required")
	}
	if c.Meta.MinItemsPerDigest > c.Meta.MaxItemsPerDigest {
		return fmt.Errorf("min_items_per_digest (%d) exceeds max_items_per_digest (%d)",
			c.Meta.MinItemsPerDigest, c.Meta.MaxItemsPerDigest)
	}
	if m := c.Meta.DedupMode; m != "link" && m != "link_title" {
		return fmt.Errorf("dedup_mode must be 'link' or 'link_title', got %q", m)
	}
	if b := c.Meta.StateBackend; b != "file" && b != "sqlite" {
		return fmt.Errorf("state_backend must be 'file' or 'sqlite', got %q", b)
	}
	if len(c.Filters.RegionMarkers()) == 0 && len(c.Filters.Countries) == 0 {
		return fmt.Errorf("filters: region or countries must be configured")
	}
	if c.Scoring.RemoteWeight < 1 || c.Scoring.RemoteWeight > 2 {
		return fmt.Errorf("remote_weight must be 1 or 2, got %d", c.Scoring.RemoteWeight)
	}
	return nil
}
