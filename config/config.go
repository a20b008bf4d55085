package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/k1LoW/expand"
	"github.com/k1LoW/pngfixture/version"
)

var (
	homePath       string
	configHomePath string
)

// Config holds settings for the pngfixture CLI itself.
// None of them affect the bytes of the generated fixture.
type Config struct {
	// Minimum level for logs written to stderr (debug, info, warn, error)
	LogLevel string `yaml:"logLevel,omitempty" json:"logLevel,omitempty"`
	// File to append JSON logs to, in addition to stderr
	LogFile string `yaml:"logFile,omitempty" json:"logFile,omitempty"`
	// Whether to colorize output. Unset means auto-detect.
	Color *bool `yaml:"color,omitempty" json:"color,omitempty"`
}

func init() {
	var err error
	homePath, err = os.UserHomeDir()
	if err != nil {
		panic(fmt.Sprintf("failed to get home directory: %v", err))
	}
}

// Load loads the configuration from the config file.
// It searches for config files in the following order:
// 1. $XDG_CONFIG_HOME/pngfixture/config.yml
// 2. $XDG_CONFIG_HOME/pngfixture/config.yaml
// Environment variables in the file are expanded before parsing.
// If no config file is found, it returns an empty Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	for _, ext := range []string{".yml", ".yaml"} {
		p := filepath.Join(configPath(), "config"+ext)
		b, err := os.ReadFile(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to read config %s: %w", p, err)
		}
		if err := yaml.Unmarshal(expand.ExpandenvYAMLBytes(b), cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config %s: %w", p, err)
		}
		if _, err := cfg.Level(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return cfg, nil
}

// Level returns the slog level for LogLevel. An empty LogLevel means warn.
func (c *Config) Level() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "":
		return slog.LevelWarn, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid logLevel: %s", c.LogLevel)
	}
}

// configPath returns the path to the configuration directory.
func configPath() string {
	if configHomePath != "" {
		return configHomePath
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		configHomePath = filepath.Join(v, version.Name)
	} else {
		configHomePath = filepath.Join(homePath, ".config", version.Name)
	}
	return configHomePath
}
