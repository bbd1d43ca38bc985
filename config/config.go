// Package config loads runtime settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type Config struct {
	// Server
	Port string `mapstructure:"PORT"`

	// Data
	CacheDirectory string `mapstructure:"CACHE_DIRECTORY"`
	Season         int    `mapstructure:"SEASON"`

	// Logging: off, error, warn, info, debug
	LogLevel string `mapstructure:"LOG_LEVEL"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")

	v.SetDefault("PORT", "8000")
	v.SetDefault("CACHE_DIRECTORY", "cache")
	v.SetDefault("SEASON", 2025)
	v.SetDefault("LOG_LEVEL", "info")

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}

// ZerologLevel maps the configured level name onto zerolog. Unknown names
// fall back to info.
func (c *Config) ZerologLevel() zerolog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "off":
		return zerolog.Disabled
	case "error":
		return zerolog.ErrorLevel
	case "warn":
		return zerolog.WarnLevel
	case "debug":
		return zerolog.DebugLevel
	default:
		return zerolog.InfoLevel
	}
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return ":" + c.Port
}
