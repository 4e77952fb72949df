// Package config loads configuration from an optional YAML file and
// environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all shadowtree configuration.
type Config struct {
	// Base directory the shadow tree mirrors.
	BasePath string `yaml:"base_path"`

	// Logging
	LogLevel  string `yaml:"log_level"`  // error, warn, info, debug
	LogFormat string `yaml:"log_format"` // console, json

	// Build recursion bound.
	MaxDepth int `yaml:"max_depth"`

	// Lines shown by the preview command.
	MaxPreviewLines int `yaml:"max_preview_lines"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		BasePath:        ".",
		LogLevel:        "info",
		LogFormat:       "console",
		MaxDepth:        256,
		MaxPreviewLines: 100,
	}
}

// Load reads the optional YAML config file, then applies environment
// variable overrides. A missing file path means defaults plus environment.
func Load(file string) (*Config, error) {
	cfg := Default()

	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", file, err)
		}
	}

	cfg.BasePath = envOr("SHADOWTREE_BASE", cfg.BasePath)
	cfg.LogLevel = envOr("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = envOr("LOG_FORMAT", cfg.LogFormat)
	cfg.MaxDepth = envInt("SHADOWTREE_MAX_DEPTH", cfg.MaxDepth)
	cfg.MaxPreviewLines = envInt("SHADOWTREE_PREVIEW_LINES", cfg.MaxPreviewLines)

	if cfg.MaxDepth <= 0 {
		return nil, fmt.Errorf("max_depth must be positive, got %d", cfg.MaxDepth)
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
