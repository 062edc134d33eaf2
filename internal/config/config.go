// Package config loads triad tool configuration from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/triad-field/internal/evolution"
	"github.com/danielpatrickdp/triad-field/internal/logging"
	"github.com/danielpatrickdp/triad-field/internal/resonance"
)

// Environment variables that override file values.
const (
	EnvDB       = "TRIAD_DB"
	EnvAddr     = "TRIAD_ADDR"
	EnvLogLevel = "TRIAD_LOG_LEVEL"
)

// #region types
// Config is the full configuration shared by the triad commands.
type Config struct {
	Log     LogConfig               `yaml:"log"`
	Store   StoreConfig             `yaml:"store"`
	Tracker evolution.TrackerConfig `yaml:"tracker"`
	Field   resonance.FieldConfig   `yaml:"field"`
	Cascade CascadeConfig           `yaml:"cascade"`
	Server  ServerConfig            `yaml:"server"`
}

// LogConfig selects the slog level and handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // tint | json | text
}

// StoreConfig locates the SQLite database.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// CascadeConfig holds cascade defaults used when a scenario leaves them unset.
type CascadeConfig struct {
	Steps    int     `yaml:"steps"`
	Coupling float64 `yaml:"coupling"`
}

// ServerConfig is the FieldService listen address.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// #endregion types

// #region defaults
// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Log:     LogConfig{Level: "info", Format: logging.FormatTint},
		Store:   StoreConfig{Path: "triad.db"},
		Tracker: evolution.DefaultTrackerConfig(),
		Field:   resonance.DefaultFieldConfig(),
		Cascade: CascadeConfig{Steps: 10, Coupling: 0.1},
		Server:  ServerConfig{Addr: "localhost:50061"},
	}
}

// #endregion defaults

// #region load
// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Store.Path = envOr(EnvDB, c.Store.Path)
	c.Server.Addr = envOr(EnvAddr, c.Server.Addr)
	c.Log.Level = envOr(EnvLogLevel, c.Log.Level)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion load

// #region validate
// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case logging.FormatTint, logging.FormatJSON, logging.FormatText:
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}
	if c.Cascade.Steps < 0 {
		errs = append(errs, fmt.Errorf("cascade.steps: must be >= 0, got %d", c.Cascade.Steps))
	}
	if math.IsNaN(c.Cascade.Coupling) || math.IsInf(c.Cascade.Coupling, 0) {
		errs = append(errs, fmt.Errorf("cascade.coupling: must be finite"))
	}
	if c.Tracker.AttractorMinDuration < 1 {
		errs = append(errs, fmt.Errorf("tracker.attractor_min_duration: must be >= 1"))
	}
	if c.Field.EmergenceSaturation < 1 {
		errs = append(errs, fmt.Errorf("field.emergence_saturation: must be >= 1"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// #endregion validate
