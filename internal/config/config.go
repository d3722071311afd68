// Package config loads and writes the credenza configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// IgnoreEntry is one view-time filter rule from the config file.
type IgnoreEntry struct {
	Scope   string `yaml:"scope,omitempty"`
	Pattern string `yaml:"pattern"`
}

// Config carries everything the client reads from
// ~/.config/credenza/config.yaml. Retention knobs are handed to the cache as
// explicit values; nothing in here is consulted as process-wide state.
type Config struct {
	DatabasePath string   `yaml:"database,omitempty"`
	Feeds        []string `yaml:"feeds,omitempty"`

	// KeepOldArticles is the retention window in days. 0 disables the
	// policy entirely.
	KeepOldArticles int `yaml:"keep_old_articles,omitempty"`
	// CleanupOnQuit prunes feeds absent from the subscription list when the
	// client shuts down.
	CleanupOnQuit bool `yaml:"cleanup_on_quit,omitempty"`
	// PreserveUnread exempts unread items from age-based deletion.
	PreserveUnread bool `yaml:"preserve_unread,omitempty"`

	// ScrapeContent fetches the linked page and stores the extracted
	// article text alongside the feed-provided content.
	ScrapeContent   bool `yaml:"scrape_content,omitempty"`
	FetchTimeoutSec int  `yaml:"fetch_timeout,omitempty"`
	MaxItemsPerFeed int  `yaml:"max_items_per_feed,omitempty"`

	Ignore []IgnoreEntry `yaml:"ignore,omitempty"`
}

// Default returns the built-in configuration used when no file exists.
func Default() Config {
	return Config{
		FetchTimeoutSec: 30,
		MaxItemsPerFeed: 100,
	}
}

// DefaultPath returns ~/.config/credenza/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "credenza", "config.yaml"), nil
}

// Load reads the config file at path. A missing file yields the defaults
// without error; a malformed file is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.FetchTimeoutSec <= 0 {
		cfg.FetchTimeoutSec = 30
	}
	if cfg.MaxItemsPerFeed <= 0 {
		cfg.MaxItemsPerFeed = 100
	}
	return cfg, nil
}

// LoadDefault reads the config from the default location.
func LoadDefault() (Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return Default(), nil
	}
	return Load(path)
}

// DBPath resolves the SQLite database path, falling back to a per-user
// location when the config does not name one.
func (c Config) DBPath() string {
	if strings.TrimSpace(c.DatabasePath) != "" {
		return ExpandPath(c.DatabasePath)
	}
	return FallbackDBPath()
}

// FallbackDBPath returns the database location used when none is configured.
func FallbackDBPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "credenza", "cache.db")
	}
	return "credenza.db"
}

// ExpandPath expands a leading ~ and environment variables in a filesystem
// path.
func ExpandPath(p string) string {
	if p == "" {
		return p
	}
	p = os.ExpandEnv(p)
	if strings.HasPrefix(p, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			if p == "~" {
				p = home
			} else if strings.HasPrefix(p, "~/") {
				p = filepath.Join(home, p[2:])
			}
		}
	}
	return p
}
