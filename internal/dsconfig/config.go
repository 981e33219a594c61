package dsconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dbtrawl/dbtrawl/internal/alert"
)

// Config holds the optional audit configuration. Absent keys keep defaults.
type Config struct {
	Rules     string         `yaml:"rules"`
	OutputDir string         `yaml:"output_dir"`
	RunLog    string         `yaml:"run_log"`
	Alerts    []alert.Config `yaml:"alerts"`
}

// DefaultConfig returns the built-in audit configuration.
func DefaultConfig() *Config {
	return &Config{
		OutputDir: "audit_reports",
		RunLog:    "audit_runs.jsonl",
	}
}

// LoadConfig loads the audit configuration from a YAML file. An empty path
// or a missing file returns defaults. Invalid YAML returns an error.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Start with defaults, YAML overwrites only specified fields
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
