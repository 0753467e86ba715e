// Package config loads the application configuration from a YAML file,
// falling back to documented defaults for anything unset.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration.
type Config struct {
	// ChartWidth/ChartHeight are the rendered page size in pixels.
	ChartWidth  int `yaml:"chart_width"`
	ChartHeight int `yaml:"chart_height"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// RecentLog is the path of the recent-project list.
	RecentLog string `yaml:"recent_log"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		ChartWidth:  1200,
		ChartHeight: 800,
		LogLevel:    "info",
		RecentLog:   filepath.Join(home, ".splotview", "fileLog.txt"),
	}
}

// Load reads a config file over the defaults. A missing file is not an
// error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.ChartWidth <= 0 {
		cfg.ChartWidth = 1200
	}
	if cfg.ChartHeight <= 0 {
		cfg.ChartHeight = 800
	}
	return cfg, nil
}

// DefaultPath is the conventional config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".splotview", "config.yaml")
}
