// Package config loads the runtime configuration: defaults, then the YAML
// file, then GEO_* environment overrides. A missing file is not an error,
// defaults are enough to run against a local controller.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds all GeoCommander configuration.
type Config struct {
	Name    string `yaml:"name" env:"-"`
	Version string `yaml:"version" env:"-"`

	// Controller connection
	Server ServerConfig `yaml:"server" envPrefix:"GEO_SERVER_"`

	// Scene defaults
	Scene SceneConfig `yaml:"scene" envPrefix:"GEO_SCENE_"`

	// Action log persistence
	Store StoreConfig `yaml:"store" envPrefix:"GEO_STORE_"`

	// Logging
	Logging LoggingConfig `yaml:"logging" envPrefix:"GEO_LOG_"`
}

// ServerConfig configures the websocket link to the controller.
type ServerConfig struct {
	URL                  string        `yaml:"url" env:"URL"`
	HeartbeatInterval    time.Duration `yaml:"heartbeat_interval" env:"HEARTBEAT_INTERVAL"`
	ReconnectBaseDelay   time.Duration `yaml:"reconnect_base_delay" env:"RECONNECT_BASE_DELAY"`
	ReconnectMultiplier  float64       `yaml:"reconnect_multiplier" env:"RECONNECT_MULTIPLIER"`
	MaxReconnectAttempts int           `yaml:"max_reconnect_attempts" env:"MAX_RECONNECT_ATTEMPTS"`
	DedupWindow          int           `yaml:"dedup_window" env:"DEDUP_WINDOW"`
}

// SceneConfig configures the default camera view.
type SceneConfig struct {
	HomeLongitude float64       `yaml:"home_longitude" env:"HOME_LONGITUDE"`
	HomeLatitude  float64       `yaml:"home_latitude" env:"HOME_LATITUDE"`
	HomeAltitude  float64       `yaml:"home_altitude" env:"HOME_ALTITUDE"`
	HomePitch     float64       `yaml:"home_pitch" env:"HOME_PITCH"`
	HomeDuration  time.Duration `yaml:"home_duration" env:"HOME_DURATION"`
}

// StoreConfig configures the SQLite action log.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled" env:"ENABLED"`
	Path    string `yaml:"path" env:"PATH"`
}

// LoggingConfig configures categorized file logging.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode" env:"DEBUG"`
	Dir        string          `yaml:"dir" env:"DIR"`
	Level      string          `yaml:"level" env:"LEVEL"`
	Categories map[string]bool `yaml:"categories" env:"-"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "geocommander",
		Version: "1.0.0",

		Server: ServerConfig{
			URL:                  "ws://localhost:8000/ws",
			HeartbeatInterval:    30 * time.Second,
			ReconnectBaseDelay:   3 * time.Second,
			ReconnectMultiplier:  1.5,
			MaxReconnectAttempts: 5,
			DedupWindow:          128,
		},

		Scene: SceneConfig{
			HomeLongitude: 105.0,
			HomeLatitude:  35.0,
			HomeAltitude:  15000000,
			HomePitch:     -90,
			HomeDuration:  2 * time.Second,
		},

		Store: StoreConfig{
			Enabled: true,
			Path:    "data/geocommander.db",
		},

		Logging: LoggingConfig{
			DebugMode: false,
			Dir:       "logs",
			Level:     "info",
		},
	}
}

// Load reads configuration from a YAML file, then applies GEO_*
// environment overrides on top. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("apply env overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration back to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate rejects values the connection manager cannot operate with.
func (c *Config) Validate() error {
	if c.Server.HeartbeatInterval <= 0 {
		return fmt.Errorf("server.heartbeat_interval must be positive, got %s", c.Server.HeartbeatInterval)
	}
	if c.Server.ReconnectBaseDelay <= 0 {
		return fmt.Errorf("server.reconnect_base_delay must be positive, got %s", c.Server.ReconnectBaseDelay)
	}
	if c.Server.ReconnectMultiplier < 1 {
		return fmt.Errorf("server.reconnect_multiplier must be at least 1, got %g", c.Server.ReconnectMultiplier)
	}
	if c.Server.MaxReconnectAttempts < 0 {
		return fmt.Errorf("server.max_reconnect_attempts must not be negative, got %d", c.Server.MaxReconnectAttempts)
	}
	if c.Server.DedupWindow <= 0 {
		return fmt.Errorf("server.dedup_window must be positive, got %d", c.Server.DedupWindow)
	}
	return nil
}
