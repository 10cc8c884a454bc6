// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Server struct {
		Port int `mapstructure:"port" yaml:"port"`
	} `mapstructure:"server" yaml:"server"`

	DB struct {
		Path string `mapstructure:"path" yaml:"path"`
	} `mapstructure:"db" yaml:"db"`

	Engine struct {
		DefaultYears int     `mapstructure:"default_years" yaml:"default_years"`
		TaxRate      float64 `mapstructure:"tax_rate" yaml:"tax_rate"`
	} `mapstructure:"engine" yaml:"engine"`

	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`
}

// Load initializes Viper configuration with hierarchical loading:
// defaults, then an optional config.yaml, then FORECAST_* env vars.
func Load() (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.forecast-engine")
	v.AddConfigPath(".")

	// 3. Environment variables
	v.SetEnvPrefix("FORECAST")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file %s: %w", v.ConfigFileUsed(), err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("db.path", "./data/forecast.db")
	v.SetDefault("engine.default_years", 10)
	v.SetDefault("engine.tax_rate", 0.30)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// validate checks the configuration values
func validate(config *Config) error {
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got: %d", config.Server.Port)
	}

	if config.Engine.DefaultYears < 1 {
		return fmt.Errorf("engine.default_years must be at least 1, got: %d", config.Engine.DefaultYears)
	}

	if config.Engine.TaxRate < 0.0 || config.Engine.TaxRate >= 1.0 {
		return fmt.Errorf("engine.tax_rate must be in [0, 1), got: %f", config.Engine.TaxRate)
	}

	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	return nil
}

// NewLogger configures a logrus logger from the Config struct
func NewLogger(config *Config) *logrus.Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
