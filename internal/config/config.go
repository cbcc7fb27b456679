package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds the application configuration.
type Config struct {
	Theme   string
	DataDir string
	Timeout time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Theme:   "catppuccin-mocha",
		DataDir: defaultDataDir(),
		Timeout: 30 * time.Second,
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".wiretap"
	}
	return filepath.Join(home, ".local", "share", "wiretap")
}
