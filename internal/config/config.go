// Package config defines the application configuration and loads it from a YAML
// file with environment overrides.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/vehicle-afford/pkg/constants"
	"github.com/iwvelando/vehicle-afford/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for vehicle-afford.
type Configuration struct {
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
	Output    OutputConfig    `yaml:"output,omitempty"`
	Reference ReferenceConfig `yaml:"reference,omitempty"`
	Forecast  ForecastConfig  `yaml:"forecast,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// ReferenceConfig points at an optional reference tables overlay.
type ReferenceConfig struct {
	File string `yaml:"file,omitempty"`
}

// ForecastConfig holds value forecast defaults.
type ForecastConfig struct {
	Years int `yaml:"years,omitempty"`
}

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("reference.file", "")
	v.SetDefault("forecast.years", constants.DefaultForecastYears)
	return v
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. An empty path yields the defaults plus any environment
// overrides.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file, %w", err)
		}
	}
	return decode(v)
}

// LoadConfigurationFromReader loads YAML configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config, %w", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	if err := configuration.Validate(); err != nil {
		return nil, err
	}
	return &configuration, nil
}

// Validate rejects settings the application cannot run with.
func (c *Configuration) Validate() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging level %q", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("invalid logging format %q", c.Logging.Format)
	}
	if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
		return err
	}
	if c.Forecast.Years < 0 {
		return fmt.Errorf("forecast years must not be negative, got %d", c.Forecast.Years)
	}
	return nil
}
