package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from ~/.config/wiretap/config.yaml. A
// missing or unreadable file yields the defaults.
func Load() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultConfig()
	}
	return LoadFrom(filepath.Join(home, ".config", "wiretap", "config.yaml"))
}

// LoadFrom loads configuration from an explicit path. Unknown or
// malformed values fall back to their defaults rather than failing.
func LoadFrom(path string) Config {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	var raw struct {
		Theme   string `yaml:"theme"`
		DataDir string `yaml:"data_dir"`
		Timeout string `yaml:"timeout"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return cfg
	}

	if raw.Theme != "" {
		cfg.Theme = raw.Theme
	}
	if raw.DataDir != "" {
		cfg.DataDir = raw.DataDir
	}
	if raw.Timeout != "" {
		if d, err := time.ParseDuration(raw.Timeout); err == nil {
			cfg.Timeout = d
		}
	}
	return cfg
}
