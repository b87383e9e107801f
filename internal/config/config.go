package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the client's own configuration, not to be confused with the
// site configuration served by /api/config.
type Config struct {
	// ServerURL is the SubDock service root.
	ServerURL string `yaml:"server_url"`
	// DataPath is where the credential database lives.
	DataPath string `yaml:"data_path"`
	LogLevel string `yaml:"log_level"`
}

// Dir returns the client's config/data directory under the user's home.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".subdock"
	}
	return filepath.Join(home, ".subdock")
}

// Load reads the YAML config file at path when it exists, then applies
// SUBDOCK_* environment overrides. A missing file just means defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{
		ServerURL: "http://localhost:8080",
		DataPath:  filepath.Join(Dir(), "subdock.db"),
		LogLevel:  "info",
	}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	cfg.ServerURL = getEnv("SUBDOCK_SERVER_URL", cfg.ServerURL)
	cfg.DataPath = getEnv("SUBDOCK_DATA_PATH", cfg.DataPath)
	cfg.LogLevel = getEnv("SUBDOCK_LOG_LEVEL", cfg.LogLevel)

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
