package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type VenueConfig struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
}

type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chat_id"`
}

type Config struct {
	// Models enabled for scanning, by registry name. Empty means all
	// registered models.
	Models []string `yaml:"models"`

	// ScanInterval is a timeframe code giving the cadence of the live
	// scan loop, default "1Min".
	ScanInterval string `yaml:"scan_interval"`

	Workers  int    `yaml:"workers"`
	Database string `yaml:"database"`
	KVPath   string `yaml:"kv_path"`

	Venues   map[string]VenueConfig `yaml:"venues"`
	Telegram *TelegramConfig        `yaml:"telegram"`
}

// ReadConfig loads and validates a yaml config file.
func ReadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if config.ScanInterval == "" {
		config.ScanInterval = "1Min"
	}
	if config.Workers <= 0 {
		config.Workers = 4
	}
	return config, nil
}

// Save writes the config back to the given path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
