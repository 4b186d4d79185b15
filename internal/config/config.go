// Package config loads the phenograph command configuration.
//
// Config file locations (priority order):
//  1. $PHENOGRAPH_CONFIG
//  2. ./phenograph.yaml
//  3. $XDG_CONFIG_HOME/phenograph/config.yaml
//  4. ~/.config/phenograph/config.yaml
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	// EnvConfigPath is the environment variable for explicit config path
	EnvConfigPath = "PHENOGRAPH_CONFIG"
	// ConfigFileName is the default config file name
	ConfigFileName = "phenograph.yaml"
	// ConfigDirName is the config directory name under XDG
	ConfigDirName = "phenograph"
)

// Property names accepted by Config.Property.
const (
	PropertyMomentum = "momentum"
	PropertyEnergy   = "energy"
	PropertyCharge   = "charge"
)

// ErrInvalidConfig indicates a config that fails validation.
var ErrInvalidConfig = errors.New("config: invalid")

// Config controls a trace run.
type Config struct {
	// Property selects what is traced: the four-momentum, its energy
	// component alone, or electric charge.
	Property  string          `yaml:"property" validate:"required,oneof=momentum energy charge"`
	Exclusive bool            `yaml:"exclusive"`
	Target    []int32         `yaml:"target,omitempty" validate:"dive,ne=0"`
	Select    SelectConfig    `yaml:"select"`
	Workers   int             `yaml:"workers" validate:"gte=1,lte=256"`
	Output    OutputConfig    `yaml:"output"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// SelectConfig narrows the final-state particles that are traced.
type SelectConfig struct {
	PDG           []int32 `yaml:"pdg,omitempty" validate:"dive,ne=0"`
	SignSensitive bool    `yaml:"sign_sensitive"`
}

// OutputConfig controls where results are written. An empty path means stdout.
type OutputConfig struct {
	Format string `yaml:"format" validate:"required,oneof=yaml json"`
	Path   string `yaml:"path,omitempty"`
}

// TelemetryConfig selects the OpenTelemetry exporters.
type TelemetryConfig struct {
	Traces       string `yaml:"traces" validate:"oneof=none stdout otlp"`
	Metrics      string `yaml:"metrics" validate:"oneof=none stdout prometheus"`
	OTLPEndpoint string `yaml:"otlp_endpoint,omitempty" validate:"required_if=Traces otlp,omitempty,hostname_port"`
	MetricsAddr  string `yaml:"metrics_addr,omitempty" validate:"required_if=Metrics prometheus,omitempty,hostname_port"`
}

var validate = validator.New()

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()
	if path == "" {
		return DefaultConfig(), "", nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}
	return &cfg, path, nil
}

// DefaultConfig returns the settings used when no config file exists
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Property == "" {
		c.Property = PropertyMomentum
	}
	if c.Workers == 0 {
		c.Workers = 1
	}
	if c.Output.Format == "" {
		c.Output.Format = "yaml"
	}
	if c.Telemetry.Traces == "" {
		c.Telemetry.Traces = "none"
	}
	if c.Telemetry.Metrics == "" {
		c.Telemetry.Metrics = "none"
	}
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// FindConfigPath searches for a config file in priority order and returns
// an empty string if none is found.
func FindConfigPath() string {
	if path := os.Getenv(EnvConfigPath); path != "" {
		if fileExists(path) {
			return path
		}
	}

	if fileExists(ConfigFileName) {
		if abs, err := filepath.Abs(ConfigFileName); err == nil {
			return abs
		}
		return ConfigFileName
	}

	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		path := filepath.Join(xdgHome, ConfigDirName, "config.yaml")
		if fileExists(path) {
			return path
		}
	}

	if home := os.Getenv("HOME"); home != "" {
		path := filepath.Join(home, ".config", ConfigDirName, "config.yaml")
		if fileExists(path) {
			return path
		}
	}

	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
