package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	// Deck builder scoring policy
	Builder BuilderConfig `toml:"builder"`

	// Inventory CSV parsing
	Inventory InventoryConfig `toml:"inventory"`

	// Build history database
	Database DatabaseConfig `toml:"database"`

	// Inventory watch mode
	Watch WatchConfig `toml:"watch"`
}

// BuilderConfig contains the tunable deck-building weights.
type BuilderConfig struct {
	DefaultScore    float64        `toml:"default_score"`     // Score for cards EDHREC has no data on
	ThemeBoost      float64        `toml:"theme_boost"`       // Score boost for theme-tagged cards
	RequireFullDeck bool           `toml:"require_full_deck"` // Fail instead of returning a budget-capped partial deck
	TypeQuotas      map[string]int `toml:"type_quotas"`       // Per-primary-type selection caps (0 = uncapped)
}

// InventoryConfig contains CSV import settings.
type InventoryConfig struct {
	Strict bool `toml:"strict"` // Abort on first malformed row instead of skipping
}

// DatabaseConfig contains build history storage settings.
type DatabaseConfig struct {
	Path string `toml:"path"` // Path to the SQLite database file
}

// WatchConfig contains inventory watch mode settings.
type WatchConfig struct {
	MinInterval string `toml:"min_interval"` // Minimum time between rebuilds (e.g. "2s")
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Builder: BuilderConfig{
			DefaultScore: 0.01,
			ThemeBoost:   0.25,
		},
		Inventory: InventoryConfig{
			Strict: false,
		},
		Database: DatabaseConfig{
			Path: "",
		},
		Watch: WatchConfig{
			MinInterval: "2s",
		},
	}
}

// configPath returns the path to the configuration file.
func configPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".deckforge")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.toml"), nil
}

// DefaultDatabasePath returns the database location used when the config
// does not set one.
func DefaultDatabasePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".deckforge", "deckforge.db"), nil
}

// Load loads the configuration from disk. Returns default config if file doesn't exist.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return &config, nil
}

// Save saves the configuration to disk.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.Builder.DefaultScore < 0 {
		return fmt.Errorf("default score cannot be negative: %v", c.Builder.DefaultScore)
	}

	if c.Builder.ThemeBoost < 0 {
		return fmt.Errorf("theme boost cannot be negative: %v", c.Builder.ThemeBoost)
	}

	for cardType, quota := range c.Builder.TypeQuotas {
		if quota < 0 {
			return fmt.Errorf("type quota for %s cannot be negative: %d", cardType, quota)
		}
	}

	// Empty means the default interval applies.
	if c.Watch.MinInterval != "" {
		if _, err := time.ParseDuration(c.Watch.MinInterval); err != nil {
			return fmt.Errorf("invalid watch min interval %q: %w", c.Watch.MinInterval, err)
		}
	}

	return nil
}

// GetWatchMinInterval returns the watch rebuild interval as a duration.
// An unset interval (config file without a [watch] section) falls back to
// the default.
func (c *Config) GetWatchMinInterval() (time.Duration, error) {
	if c.Watch.MinInterval == "" {
		return time.ParseDuration(DefaultConfig().Watch.MinInterval)
	}
	return time.ParseDuration(c.Watch.MinInterval)
}
