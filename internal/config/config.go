// Package config loads tool settings from an optional config file and
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds every tunable the CLI exposes. Zero values never occur;
// defaults are applied during Load.
type Config struct {
	DBPath string `mapstructure:"db_path"`

	ToxicKeywords    []string `mapstructure:"toxic_keywords"`
	PositiveKeywords []string `mapstructure:"positive_keywords"`

	FormWindow           int     `mapstructure:"form_window"`
	FormKDThreshold      float64 `mapstructure:"form_kd_threshold"`
	FormADRThreshold     float64 `mapstructure:"form_adr_threshold"`
	FormWinRateThreshold float64 `mapstructure:"form_win_rate_threshold"`
}

// Load reads demotrak.yaml from ~/.demotrak or the working directory, plus
// DEMOTRAK_* environment variables. A missing config file is fine; a
// malformed one is not.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("db_path", filepath.Join(userHome(), ".demotrak", "stats.db"))
	v.SetDefault("toxic_keywords", []string(nil))
	v.SetDefault("positive_keywords", []string(nil))
	v.SetDefault("form_window", 5)
	v.SetDefault("form_kd_threshold", 0.1)
	v.SetDefault("form_adr_threshold", 5.0)
	v.SetDefault("form_win_rate_threshold", 10.0)

	v.SetConfigName("demotrak")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(userHome(), ".demotrak"))
	v.AddConfigPath(".")

	v.SetEnvPrefix("DEMOTRAK")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

func userHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
