package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFromFile loads configuration from a YAML file over the defaults.
// The returned configuration has not been validated.
func LoadFromFile(filename string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return cfg, nil
}

// Load reads filename when it exists and falls back to the defaults when it
// does not, then applies environment overrides and validates. fromFile
// reports whether the file was used.
func Load(filename string, getenv func(string) string) (cfg *Config, fromFile bool, err error) {
	cfg, err = LoadFromFile(filename)
	switch {
	case err == nil:
		fromFile = true
	case errors.Is(err, fs.ErrNotExist):
		cfg = DefaultConfig()
	default:
		return nil, false, err
	}

	cfg.ApplyEnv(getenv)
	if err := cfg.Validate(); err != nil {
		return nil, fromFile, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, fromFile, nil
}
