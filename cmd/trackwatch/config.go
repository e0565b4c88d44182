// Package main provides the trackwatch CLI.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the trackwatch configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Database   DatabaseConfig   `yaml:"database"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Log        LogConfig        `yaml:"log"`
}

// ServerConfig contains HTTP API settings.
type ServerConfig struct {
	Address            string `yaml:"address"`               // HTTP listen address (default: :8080)
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute"` // per-IP request budget
	EvaluateTimeout    string `yaml:"evaluate_timeout"`      // bound on an HTTP-triggered pass
}

// MetricsConfig contains the Prometheus endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"` // metrics listen address (default: :9090)
}

// DatabaseConfig contains storage settings.
type DatabaseConfig struct {
	Path string `yaml:"path"` // SQLite database path
}

// EvaluationConfig tunes the evaluation engine.
type EvaluationConfig struct {
	Workers           int    `yaml:"workers"`            // concurrent per-item evaluations
	SuppressionWindow string `yaml:"suppression_window"` // minimum gap between repeat schedule alerts
}

// SchedulerConfig controls the built-in minute ticker. Disable it when
// an external scheduler invokes the evaluate endpoint instead.
type SchedulerConfig struct {
	Enabled    bool   `yaml:"enabled"`
	RunTimeout string `yaml:"run_timeout"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // trace, debug, info, warn, error
	Pretty bool   `yaml:"pretty"` // human-readable console output
}

// LoadConfig loads configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// setDefaults sets default values for missing config fields.
func (c *Config) setDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if c.Server.RateLimitPerMinute == 0 {
		c.Server.RateLimitPerMinute = 120
	}
	if c.Metrics.Address == "" {
		c.Metrics.Address = ":9090"
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/trackwatch.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Evaluation.Workers < 0 {
		return fmt.Errorf("evaluation.workers must be >= 0")
	}
	if c.Server.RateLimitPerMinute < 1 {
		return fmt.Errorf("server.rate_limit_per_minute must be >= 1")
	}
	if _, err := c.EvaluateTimeout(); err != nil {
		return err
	}
	if _, err := c.SuppressionWindow(); err != nil {
		return err
	}
	if _, err := c.SchedulerRunTimeout(); err != nil {
		return err
	}
	return nil
}

// EvaluateTimeout returns the parsed server.evaluate_timeout, or zero
// when unset so the API layer applies its own default.
func (c *Config) EvaluateTimeout() (time.Duration, error) {
	return parseDurationField("server.evaluate_timeout", c.Server.EvaluateTimeout)
}

// SuppressionWindow returns the parsed evaluation.suppression_window.
func (c *Config) SuppressionWindow() (time.Duration, error) {
	return parseDurationField("evaluation.suppression_window", c.Evaluation.SuppressionWindow)
}

// SchedulerRunTimeout returns the parsed scheduler.run_timeout.
func (c *Config) SchedulerRunTimeout() (time.Duration, error) {
	return parseDurationField("scheduler.run_timeout", c.Scheduler.RunTimeout)
}

// parseDurationField parses a duration config value. Empty means unset
// and yields zero without error.
func parseDurationField(path, raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", path, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: duration must be >= 0", path)
	}
	return d, nil
}
