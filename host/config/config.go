// Package config loads the host tooling's YAML configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config describes how the host reaches the cooler and labels what it
// reads back.
type Config struct {
	// Device is the serial port the cooler's query UART is bridged to.
	Device string `yaml:"device"`

	// Baud rate; defaults to the firmware's 115200.
	Baud int `yaml:"baud"`

	// ReadTimeoutMillis bounds each serial read; 0 means the default.
	ReadTimeoutMillis int `yaml:"read_timeout_millis"`

	// PollIntervalSeconds between temperature polls in watch mode.
	PollIntervalSeconds int `yaml:"poll_interval_seconds"`

	// ZoneNames label the temperature zones in reported order. Extra
	// zones beyond the list print by index.
	ZoneNames []string `yaml:"zone_names"`
}

// Load parses a YAML configuration file and fills in defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data and fills in defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Device == "" {
		cfg.Device = "/dev/ttyUSB0"
	}
	if cfg.Baud == 0 {
		cfg.Baud = 115200
	}
	if cfg.ReadTimeoutMillis == 0 {
		cfg.ReadTimeoutMillis = 2000
	}
	if cfg.PollIntervalSeconds == 0 {
		cfg.PollIntervalSeconds = 5
	}
	if len(cfg.ZoneNames) == 0 {
		cfg.ZoneNames = []string{"cooler_a", "cooler_b", "intake", "exhaust"}
	}
}
