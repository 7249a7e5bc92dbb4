// Copyright 2024-2026 Madhukar Beema, Distinguished Engineer. All rights reserved.
// Use of this source code is governed by the Business Source License
// included in the LICENSE file of this repository.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for sqlmask.
type Config struct {
	LogLevel  string          `yaml:"log_level" env:"SQLMASK_LOG_LEVEL"`
	Masking   MaskingConfig   `yaml:"masking"`
	Redaction RedactionConfig `yaml:"redaction"`
	Output    OutputConfig    `yaml:"output"`
	Health    HealthConfig    `yaml:"health"`
}

// MaskingConfig configures the SQL masker.
type MaskingConfig struct {
	Format           bool     `yaml:"format" env:"SQLMASK_FORMAT"`
	MaxDepth         int      `yaml:"max_depth" env:"SQLMASK_MAX_DEPTH"`
	PreserveKeywords []string `yaml:"preserve_keywords"` // literal after these keywords is kept
}

// RedactionConfig configures PII redaction. Rules only see SQL produced by
// the regex fallback.
type RedactionConfig struct {
	Enabled  bool            `yaml:"enabled"`
	Fallback bool            `yaml:"fallback"` // regex normalization for unparseable SQL
	Rules    []RedactionRule `yaml:"rules"`
}

// RedactionRule is a user-defined redaction pattern.
type RedactionRule struct {
	Name        string `yaml:"name"`
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`
}

// OutputConfig selects how results are written.
type OutputConfig struct {
	Format string `yaml:"format" env:"SQLMASK_OUTPUT_FORMAT"` // "text" or "json"
}

// HealthConfig configures the health HTTP server.
type HealthConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    string `yaml:"port" env:"SQLMASK_HEALTH_PORT"` // e.g. ":8686"
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Masking: MaskingConfig{
			Format:           false,
			MaxDepth:         512,
			PreserveKeywords: []string{"LIMIT", "OFFSET", "TOP"},
		},
		Redaction: RedactionConfig{
			Enabled:  true,
			Fallback: true,
		},
		Output: OutputConfig{
			Format: "text",
		},
		Health: HealthConfig{
			Enabled: false,
			Port:    ":8686",
		},
	}
}

// layerFiles are the files LoadDir merges, in order.
var layerFiles = []string{"base.yaml", "masking.yaml", "redaction.yaml"}

// LoadDir loads YAML files from a directory and merges them into a single
// Config. Expected files:
//   - base.yaml      → log_level, output, health
//   - masking.yaml   → masking
//   - redaction.yaml → redaction
//
// Missing files are silently ignored (defaults apply).
func LoadDir(dir string) (*Config, error) {
	cfg := DefaultConfig()

	for _, f := range layerFiles {
		if err := loadFileInto(filepath.Join(dir, f), cfg); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// loadFileInto reads a YAML file and unmarshals it into an existing Config,
// overwriting only the fields present in the file.
func loadFileInto(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// ApplyEnvOverrides reads SQLMASK_* environment variables and applies them
// to the config, overriding YAML values.
func (c *Config) ApplyEnvOverrides() {
	envOverrides := map[string]func(string){
		"SQLMASK_LOG_LEVEL":     func(v string) { c.LogLevel = v },
		"SQLMASK_OUTPUT_FORMAT": func(v string) { c.Output.Format = v },
		"SQLMASK_HEALTH_PORT":   func(v string) { c.Health.Port = v },
	}

	boolOverrides := map[string]*bool{
		"SQLMASK_FORMAT":            &c.Masking.Format,
		"SQLMASK_HEALTH_ENABLED":    &c.Health.Enabled,
		"SQLMASK_REDACTION_ENABLED": &c.Redaction.Enabled,
	}

	intOverrides := map[string]*int{
		"SQLMASK_MAX_DEPTH": &c.Masking.MaxDepth,
	}

	for envKey, setter := range envOverrides {
		if val := os.Getenv(envKey); val != "" {
			setter(val)
		}
	}

	for envKey, target := range boolOverrides {
		if val := os.Getenv(envKey); val != "" {
			*target = parseBool(val)
		}
	}

	for envKey, target := range intOverrides {
		if val := os.Getenv(envKey); val != "" {
			if n, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
				*target = n
			}
		}
	}
}

func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes"
}

// Validate checks the configuration and reports every problem found.
func (c *Config) Validate() error {
	var err error

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		err = multierr.Append(err, fmt.Errorf("log_level must be debug, info, warn or error, got %q", c.LogLevel))
	}

	if c.Masking.MaxDepth <= 0 {
		err = multierr.Append(err, fmt.Errorf("masking.max_depth must be positive"))
	}

	for i, k := range c.Masking.PreserveKeywords {
		if strings.TrimSpace(k) == "" {
			err = multierr.Append(err, fmt.Errorf("masking.preserve_keywords[%d] is empty", i))
		}
	}

	for i, r := range c.Redaction.Rules {
		if r.Name == "" {
			err = multierr.Append(err, fmt.Errorf("redaction.rules[%d].name is required", i))
		}
		if _, cerr := regexp.Compile(r.Pattern); cerr != nil || r.Pattern == "" {
			err = multierr.Append(err, fmt.Errorf("redaction.rules[%d].pattern is invalid: %q", i, r.Pattern))
		}
	}

	if c.Output.Format != "text" && c.Output.Format != "json" {
		err = multierr.Append(err, fmt.Errorf("output.format must be 'text' or 'json'"))
	}

	if c.Health.Enabled && c.Health.Port == "" {
		err = multierr.Append(err, fmt.Errorf("health.port is required when health is enabled"))
	}

	return err
}
