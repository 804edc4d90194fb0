package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

// Feed is one newsletter edition to harvest, addressed by slug and date.
type Feed struct {
	Slug    string `yaml:"slug"`
	Enabled bool   `yaml:"enabled"`
}

type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	APIKey  string `yaml:"api_key"`
}

type Config struct {
	FeedBase        string     `yaml:"feed_base"`
	Brand           string     `yaml:"brand"`
	Feeds           []Feed     `yaml:"feeds"`
	CountryCode     string     `yaml:"country_code"`
	HolidayBase     string     `yaml:"holiday_base"`
	CutoverHour     int        `yaml:"cutover_hour"`
	MaxLookbackDays int        `yaml:"max_lookback_days"`
	MaxAttempts     int        `yaml:"max_attempts"`
	FallbackDates   []string   `yaml:"fallback_dates,omitempty"`
	MaxItems        int        `yaml:"max_items"`
	RedisAddr       string     `yaml:"redis_addr"`
	BadgerPath      string     `yaml:"badger_path"`
	ArchiveContent  bool       `yaml:"archive_content"`
	AudioDir        string     `yaml:"audio_dir"`
	SpeechCommand   string     `yaml:"speech_command,omitempty"`
	LLM             *LLMConfig `yaml:"llm,omitempty"`
}

// LLMEnabled reports whether a summarization endpoint is configured.
func (c *Config) LLMEnabled() bool {
	return c.LLM != nil && c.LLM.BaseURL != ""
}

// LLMKey returns the resolved API key (config or env var). Local endpoints
// such as Ollama accept any non-empty key.
func (c *Config) LLMKey() string {
	if c.LLM != nil && c.LLM.APIKey != "" {
		return c.LLM.APIKey
	}
	if key := os.Getenv("BRIEFCAST_LLM_KEY"); key != "" {
		return key
	}
	return "local"
}

func (c *Config) EnabledFeeds() []Feed {
	var out []Feed
	for _, f := range c.Feeds {
		if f.Enabled {
			out = append(out, f)
		}
	}
	return out
}

// GetMaxItems returns the per-run item cap, defaulting to 20.
func (c *Config) GetMaxItems() int {
	if c.MaxItems <= 0 {
		return 20
	}
	return c.MaxItems
}

func (c *Config) GetMaxLookback() int {
	if c.MaxLookbackDays <= 0 {
		return 14
	}
	return c.MaxLookbackDays
}

func (c *Config) GetMaxAttempts() int {
	if c.MaxAttempts <= 0 {
		return 7
	}
	return c.MaxAttempts
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "briefcast", "config.yaml")
}

func DefaultDataDir() string {
	return filepath.Join(xdg.DataHome, "briefcast")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

func Load(path string) (*Config, error) {
	defaults, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Write defaults to config path on first run
			if err := writeDefaults(path); err != nil {
				// Non-fatal: just use embedded defaults
				return defaults, nil
			}
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

func validate(cfg *Config) error {
	if cfg.FeedBase == "" {
		return fmt.Errorf("feed_base is required")
	}
	u, err := url.Parse(cfg.FeedBase)
	if err != nil {
		return fmt.Errorf("invalid feed_base: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("feed_base scheme must be http or https, got %q", u.Scheme)
	}
	for i, f := range cfg.Feeds {
		if f.Slug == "" {
			return fmt.Errorf("feed %d: slug is required", i)
		}
	}
	if cfg.CutoverHour < 0 || cfg.CutoverHour > 23 {
		return fmt.Errorf("cutover_hour must be in [0,23], got %d", cfg.CutoverHour)
	}
	for _, d := range cfg.FallbackDates {
		if !isoDate(d) {
			return fmt.Errorf("fallback date %q is not YYYY-MM-DD", d)
		}
	}
	return nil
}

func isoDate(s string) bool {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return false
	}
	for i, r := range s {
		if i == 4 || i == 7 {
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
