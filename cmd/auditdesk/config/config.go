// Package config loads and persists the auditdesk UI preferences from
// ~/.auditdesk/config.json. A missing file is not an error; every field has
// a usable zero value.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds the persisted preferences. Flags override these per run.
type Config struct {
	// Theme is "light", "dark" or "auto". Empty means auto.
	Theme string `json:"theme,omitempty"`
	// Debug enables category log files under the config directory.
	Debug bool `json:"debug,omitempty"`
	// Fast zeroes the simulated operation delays.
	Fast bool `json:"fast,omitempty"`
}

// Dir returns the auditdesk config directory, honoring AUDITDESK_HOME for
// tests and sandboxed runs.
func Dir() (string, error) {
	if dir := os.Getenv("AUDITDESK_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".auditdesk"), nil
}

// Path returns the config file location.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config file. A missing file yields the zero config.
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config file, creating the directory if needed.
func (c Config) Save() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), append(data, '\n'), 0o644)
}
