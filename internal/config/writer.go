package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Write persists cfg to path, creating parent directories as needed. An
// existing database path in the file is preserved so re-running init does
// not move a user's cache out from under them.
func Write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	if prev, err := Load(path); err == nil && prev.DatabasePath != "" && cfg.DatabasePath == "" {
		cfg.DatabasePath = prev.DatabasePath
	}

	b, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	out := append([]byte("# credenza configuration\n"), b...)
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// WriteDefault persists cfg to the default location and returns that path.
func WriteDefault(cfg Config) (string, error) {
	path, err := DefaultPath()
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	if err := Write(path, cfg); err != nil {
		return "", err
	}
	return path, nil
}
