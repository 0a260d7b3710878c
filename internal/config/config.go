package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

type Config struct {
	// CodeDir is the check_code folder holding runnable sources.
	// Empty means <cwd>/check_code.
	CodeDir string `mapstructure:"code_dir"`

	// TimeLimit bounds compilation and execution independently.
	TimeLimit time.Duration `mapstructure:"time_limit"`

	// LanguagesFile optionally points at a YAML toolchain overlay.
	LanguagesFile string `mapstructure:"languages_file"`

	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
}

// Load reads runcheck.yaml from the working directory or ~/.runcheck.
// A missing config file is not an error; defaults apply.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("runcheck")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.runcheck")

	v.SetDefault("code_dir", "")
	v.SetDefault("time_limit", "10s")
	v.SetDefault("server.port", 8080)
	v.SetDefault("storage.db_path", filepath.Join(os.Getenv("HOME"), ".runcheck", "runcheck.db"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// Save persists the config to ~/.runcheck/runcheck.yaml so a chosen
// code folder survives across sessions.
func (c *Config) Save() error {
	dir := filepath.Join(os.Getenv("HOME"), ".runcheck")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.Set("code_dir", c.CodeDir)
	v.Set("time_limit", c.TimeLimit.String())
	v.Set("languages_file", c.LanguagesFile)
	v.Set("server.port", c.Server.Port)
	v.Set("storage.db_path", c.Storage.DBPath)

	path := filepath.Join(dir, "runcheck.yaml")
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
