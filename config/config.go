package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the complete journal configuration
type Config struct {
	Storage StorageConfig `json:"storage" yaml:"storage"`
	Summary SummaryConfig `json:"summary" yaml:"summary"`
	Display DisplayConfig `json:"display" yaml:"display"`
	Feed    FeedConfig    `json:"feed" yaml:"feed"`
	Log     LogConfig     `json:"log" yaml:"log"`
}

// StorageConfig selects the durable key-value backend
type StorageConfig struct {
	Type         string        `json:"type" yaml:"type" env:"TRADEJOURNAL_STORAGE"` // "sqlite" or "memory"
	DBPath       string        `json:"db_path,omitempty" yaml:"db_path,omitempty" env:"TRADEJOURNAL_DB"`
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval" env:"TRADEJOURNAL_POLL"`
}

// SummaryConfig controls how summary edits are persisted
type SummaryConfig struct {
	Debounce time.Duration `json:"debounce" yaml:"debounce" env:"TRADEJOURNAL_DEBOUNCE"`
}

// DisplayConfig contains the currencies used when printing amounts
type DisplayConfig struct {
	Currency string  `json:"currency" yaml:"currency" env:"TRADEJOURNAL_CURRENCY"`
	Local    string  `json:"local,omitempty" yaml:"local,omitempty" env:"TRADEJOURNAL_LOCAL_CURRENCY"`
	Rate     float64 `json:"rate,omitempty" yaml:"rate,omitempty" env:"TRADEJOURNAL_RATE"`
}

type FeedConfig struct {
	URL string `json:"url" yaml:"url" env:"TRADEJOURNAL_FEED_URL"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level" env:"TRADEJOURNAL_LOG_LEVEL"`
}

// Load builds the effective configuration: defaults, then the file at path
// (if any), then the TRADEJOURNAL_* environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = read(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(nil); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a file (JSON or YAML). Fields the
// file leaves out keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	cfg, err := read(path)
	if err != nil {
		return nil, err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func read(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables. A nil environ reads
// the process environment.
func (c *Config) ApplyEnv(environ map[string]string) error {
	if err := env.ParseWithOptions(c, env.Options{Environment: environ}); err != nil {
		return fmt.Errorf("config env: %w", err)
	}
	return nil
}

// SaveToFile writes the configuration as YAML, or as JSON when path ends
// in ".json". Durations are written as text ("1.5s") in both formats.
func (c *Config) SaveToFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		// re-encode the YAML tree so durations keep their text form
		var tree map[string]any
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		if data, err = json.MarshalIndent(tree, "", "  "); err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Storage.Type != "sqlite" && c.Storage.Type != "memory" {
		return fmt.Errorf("storage.type must be 'sqlite' or 'memory'")
	}
	if c.Storage.Type == "sqlite" && c.Storage.DBPath == "" {
		return fmt.Errorf("storage db_path required for SQLite type")
	}
	if c.Storage.PollInterval < 0 {
		return fmt.Errorf("storage.poll_interval must not be negative")
	}
	if c.Summary.Debounce < 0 {
		return fmt.Errorf("summary.debounce must not be negative")
	}
	if c.Display.Currency == "" {
		return fmt.Errorf("display.currency is required")
	}
	if money.GetCurrency(c.Display.Currency) == nil {
		return fmt.Errorf("unknown currency: %s", c.Display.Currency)
	}
	if c.Display.Local != "" {
		if money.GetCurrency(c.Display.Local) == nil {
			return fmt.Errorf("unknown currency: %s", c.Display.Local)
		}
		if c.Display.Rate <= 0 {
			return fmt.Errorf("display.rate must be positive")
		}
	}
	if c.Feed.URL != "" && !strings.HasPrefix(c.Feed.URL, "ws://") && !strings.HasPrefix(c.Feed.URL, "wss://") {
		return fmt.Errorf("feed.url must be a ws:// or wss:// URL")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Type:         "sqlite",
			DBPath:       "./tradejournal.db",
			PollInterval: 500 * time.Millisecond,
		},
		Summary: SummaryConfig{
			Debounce: 1500 * time.Millisecond,
		},
		Display: DisplayConfig{
			Currency: "USD",
			Local:    "INR",
			Rate:     85,
		},
		Feed: FeedConfig{
			URL: "wss://stream.binance.com:9443/ws/btcusdt@ticker",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
