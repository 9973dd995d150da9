package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the unified application configuration.
type Config struct {
	DBPath           string
	LogPath          string
	LogLevel         string
	Theme            string
	OperationTimeout time.Duration
}

// Flags holds values given on the command line; empty fields are unset.
type Flags struct {
	ConfigFile string
	DBPath     string
	Theme      string
}

// Load resolves configuration with priority: flags > env vars > config file > defaults.
func Load(flags Flags) (*Config, error) {
	dir, err := DefaultDir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetDefault("db_path", filepath.Join(dir, "notes.db"))
	v.SetDefault("log_path", filepath.Join(dir, "debug.log"))
	v.SetDefault("log_level", "info")
	v.SetDefault("theme", "classic")
	v.SetDefault("operation_timeout", "5s")

	v.SetEnvPrefix("notish")
	v.AutomaticEnv()

	if flags.ConfigFile != "" {
		v.SetConfigFile(flags.ConfigFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if flags.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{
		DBPath:           expandPath(v.GetString("db_path")),
		LogPath:          expandPath(v.GetString("log_path")),
		LogLevel:         v.GetString("log_level"),
		Theme:            v.GetString("theme"),
		OperationTimeout: v.GetDuration("operation_timeout"),
	}
	if flags.DBPath != "" {
		cfg.DBPath = expandPath(flags.DBPath)
	}
	if flags.Theme != "" {
		cfg.Theme = flags.Theme
	}
	return cfg, nil
}

// DefaultDir returns ~/.notish, where the database, log and config live by default.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".notish"), nil
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
