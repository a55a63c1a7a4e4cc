package main

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
)

const defaultLogLevel = "info"

type Config struct {
	LogLevel string `toml:"log_level"`
	Output   string `toml:"output"`
	Verify   bool   `toml:"verify"`
}

// LoadConfig reads a TOML config. An empty path yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := Config{LogLevel: defaultLogLevel}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if err := ValidateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func ValidateConfig(cfg Config) error {
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("config invalid: log_level %q: %w", cfg.LogLevel, err)
	}
	return nil
}
