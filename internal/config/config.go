package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds all user-facing configuration for plotline.
type Config struct {
	Data     DataConfig     `toml:"data"`
	Server   ServerConfig   `toml:"server"`
	Timeline TimelineConfig `toml:"timeline"`
}

type DataConfig struct {
	Dir string `toml:"dir"`
}

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
	// ValidateRateLimit caps validation requests per second; validation is
	// the only expensive endpoint.
	ValidateRateLimit float64 `toml:"validate_rate_limit"`
}

type TimelineConfig struct {
	// DefaultSpeedKmh is used for lazily created speed profiles.
	DefaultSpeedKmh float64 `toml:"default_speed_kmh"`
	// HoursPerStep is how many in-world hours one order-index step
	// represents when events carry no explicit story hours.
	HoursPerStep float64 `toml:"hours_per_step"`
	// DefaultMode is the travel mode assumed when an event specifies none.
	DefaultMode string `toml:"default_mode"`
}

// Defaults returns a Config populated with built-in default values.
func Defaults() *Config {
	return &Config{
		Data:     DataConfig{Dir: "data"},
		Server:   ServerConfig{Host: "localhost", Port: 8080, ValidateRateLimit: 2.0},
		Timeline: TimelineConfig{DefaultSpeedKmh: 5.0, HoursPerStep: 24.0, DefaultMode: "travel"},
	}
}

// Load reads a TOML config file. If the file does not exist, built-in
// defaults are returned without error.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
