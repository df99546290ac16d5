// Package config loads the playground configuration file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aqilarik/xpcache/namespace"
)

const (
	EngineXPath = "xpath"
	EngineExpr  = "expr"
)

type Config struct {
	// Engine is the expression language: "xpath" or "expr".
	Engine     string     `yaml:"engine"`
	Namespaces Namespaces `yaml:"namespaces"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

type Namespaces struct {
	// Path of the properties file with prefix=uri lines.
	Path string `yaml:"path"`
	// Watch reloads the file as soon as it changes.
	Watch bool `yaml:"watch"`
}

func Default() Config {
	return Config{
		Engine:     EngineXPath,
		Namespaces: Namespaces{Path: namespace.DefaultFileName},
		LogLevel:   "info",
	}
}

// Load reads a YAML file over the defaults. A missing file yields the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Engine {
	case EngineXPath, EngineExpr:
	default:
		return fmt.Errorf("unknown engine %q", c.Engine)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	l, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
