// Package config loads deduce.yaml and builds the runtime components it
// describes.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/deduce/pkg/deduce/internalerr"
	"github.com/cognicore/deduce/pkg/deduce/logging"
	"github.com/cognicore/deduce/pkg/deduce/metrics"
)

// Config is the top-level configuration file.
type Config struct {
	Log       logging.Config `yaml:"log"`
	Engine    Engine         `yaml:"engine"`
	Knowledge Knowledge      `yaml:"knowledge"`
	Metrics   Metrics        `yaml:"metrics"`
}

// Engine tunes inference.
type Engine struct {
	// MaxDepth bounds nested derivations per assertion; 0 is unlimited.
	MaxDepth int `yaml:"max_depth"`
}

// Knowledge lists .kb files loaded at startup.
type Knowledge struct {
	Files []string `yaml:"files"`
}

// Metrics controls the Prometheus recorder.
type Metrics struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Log: logging.Config{
			Level:  "info",
			Format: logging.FormatConsole,
		},
		Metrics: Metrics{
			Namespace: metrics.DefaultNamespace,
		},
	}
}

// Load reads a YAML configuration file on top of Default. Relative knowledge
// file paths are resolved against the file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for i, f := range cfg.Knowledge.Files {
		if !filepath.IsAbs(f) {
			cfg.Knowledge.Files[i] = filepath.Join(dir, f)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later at startup.
func (c *Config) Validate() error {
	if c.Engine.MaxDepth < 0 {
		return fmt.Errorf("%w: engine.max_depth must not be negative, got %d",
			internalerr.ErrInvalidConfig, c.Engine.MaxDepth)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", internalerr.ErrInvalidConfig, err)
	}
	switch c.Log.Format {
	case "", logging.FormatConsole, logging.FormatJSON:
	default:
		return fmt.Errorf("%w: log.format must be %q or %q, got %q",
			internalerr.ErrInvalidConfig, logging.FormatConsole, logging.FormatJSON, c.Log.Format)
	}
	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return fmt.Errorf("%w: metrics.namespace is required when metrics are enabled",
			internalerr.ErrInvalidConfig)
	}
	return nil
}
