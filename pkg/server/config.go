package server

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Resize policies for overlay uploads of unequal size.
const (
	// ResizeMin shrinks both uploads to the minimum of their
	// dimensions before trees are built.
	ResizeMin = "min"
	// ResizeOff passes uploads through untouched; the engine then
	// rejects mismatched pairs.
	ResizeOff = "off"
)

// Config is the service configuration, loadable from YAML.
type Config struct {
	Addr             string `yaml:"addr"`
	MaxUploadBytes   int64  `yaml:"max_upload_bytes"`
	DefaultThreshold int    `yaml:"default_threshold"`
	ResizePolicy     string `yaml:"resize_policy"`
	Compact          bool   `yaml:"compact"`
	Parallel         bool   `yaml:"parallel"`
	HistoryDB        string `yaml:"history_db"`
	HistoryLimit     int    `yaml:"history_limit"`
	LogFile          string `yaml:"log_file"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Addr:             ":8080",
		MaxUploadBytes:   32 << 20,
		DefaultThreshold: 10,
		ResizePolicy:     ResizeMin,
		Parallel:         true,
		HistoryDB:        "quadpix_history.sqlite",
		HistoryLimit:     50,
	}
}

// LoadConfig reads a YAML config file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.ResizePolicy != ResizeMin && c.ResizePolicy != ResizeOff {
		return fmt.Errorf("unknown resize_policy %q", c.ResizePolicy)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive, got %d", c.MaxUploadBytes)
	}
	return nil
}
