// Package config loads editor configuration from a YAML file, an optional
// .env file and SPHERE_* environment variables, in that order of precedence
// (later wins).
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/dd0wney/cluso-sphere/pkg/geom"
	"github.com/dd0wney/cluso-sphere/pkg/logging"
	"github.com/dd0wney/cluso-sphere/pkg/validation"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load
const (
	EnvLogLevel        = "SPHERE_LOG_LEVEL"
	EnvLogFormat       = "SPHERE_LOG_FORMAT"
	EnvHistoryLimit    = "SPHERE_HISTORY_LIMIT"
	EnvNearlyAntipodal = "SPHERE_NEARLY_ANTIPODAL"
	EnvMetrics         = "SPHERE_METRICS"
)

// Config is the complete editor configuration
type Config struct {
	Geometry geom.Tolerances `yaml:"geometry"`
	Log      LogConfig       `yaml:"log"`
	History  HistoryConfig   `yaml:"history"`
	Metrics  MetricsConfig   `yaml:"metrics"`
}

// LogConfig selects the logger
type LogConfig struct {
	Level  string `yaml:"level" validate:"required"`
	Format string `yaml:"format" validate:"required"`
}

// HistoryConfig bounds the undo stack
type HistoryConfig struct {
	// Limit is the number of undoable commands kept; 0 keeps everything.
	Limit int `yaml:"limit" validate:"gte=0"`
}

// MetricsConfig toggles prometheus instrumentation
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the stock configuration
func Default() *Config {
	return &Config{
		Geometry: geom.DefaultTolerances(),
		Log:      LogConfig{Level: "info", Format: string(logging.FormatText)},
		History:  HistoryConfig{Limit: 0},
		Metrics:  MetricsConfig{Enabled: false},
	}
}

// Load builds a configuration from defaults, the YAML file at path (skipped
// when path is empty), a .env file in the working directory if present, and
// the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := cfg.Merge(data); err != nil {
			return nil, err
		}
	}

	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Merge overlays the YAML document in data onto c. Keys absent from the
// document keep their current values.
func (c *Config) Merge(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// ApplyEnv overrides c from environment variables looked up with lookup
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		c.Log.Format = strings.ToLower(v)
	}
	if v, ok := lookup(EnvHistoryLimit); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvHistoryLimit, err)
		}
		c.History.Limit = n
	}
	if v, ok := lookup(EnvNearlyAntipodal); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvNearlyAntipodal, err)
		}
		c.Geometry.NearlyAntipodal = f
	}
	if v, ok := lookup(EnvMetrics); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMetrics, err)
		}
		c.Metrics.Enabled = b
	}
	return nil
}

// Validate checks every field and reports all problems at once
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	g := c.Geometry
	return validation.NewConfigValidator("Config").
		RangeFloat("Geometry.NearlyAntipodal", g.NearlyAntipodal, 0, 1).
		PositiveFloat("Geometry.Zero", g.Zero).
		Less("Geometry.Zero", g.Zero, "Geometry.MinimumArcLength", g.MinimumArcLength).
		RangeFloat("Geometry.MinimumRadius", g.MinimumRadius, 0, 1).
		OneOf("Log.Format", c.Log.Format, []string{string(logging.FormatJSON), string(logging.FormatText)}).
		Custom("Log.Level", func() error {
			_, err := logging.LookupLevel(c.Log.Level)
			return err
		}).
		NonNegative("History.Limit", c.History.Limit).
		Validate()
}

// Logger builds the logger the configuration describes, writing to w
func (c *Config) Logger(w io.Writer) logging.Logger {
	return logging.New(logging.Format(c.Log.Format), logging.ParseLevel(c.Log.Level), w)
}
