// Copyright the phi-redact authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package config loads the YAML configuration: pipeline defaults, detector
// toggles, the accelerated-scan backend, and redaction output options.
// Environment variables override file values so deployments can tune a
// shared config without editing it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full configuration tree.
type Config struct {
	Defaults  Defaults  `yaml:"defaults"`
	Detectors Detectors `yaml:"detectors"`
	Gateway   Gateway   `yaml:"gateway"`
	Redaction Redaction `yaml:"redaction"`
}

// Defaults are pipeline-wide settings.
type Defaults struct {
	// FailurePolicy is "fail-open" or "abort".
	FailurePolicy string `yaml:"failure_policy"`

	// DeadlineMs bounds the detection pass per document; zero disables it.
	DeadlineMs int `yaml:"deadline_ms"`

	// LogLevel is "off", "metrics", or "debug".
	LogLevel string `yaml:"log_level"`
}

// Detectors configures the detector set.
type Detectors struct {
	// Disabled lists detector names removed from the registry.
	Disabled []string `yaml:"disabled"`
}

// Gateway configures the accelerated-scan backend.
type Gateway struct {
	Enabled   bool     `yaml:"enabled"`
	Command   string   `yaml:"command"`
	Args      []string `yaml:"args"`
	TimeoutMs int      `yaml:"timeout_ms"`
}

// Redaction configures output handling.
type Redaction struct {
	// TokenMapFile receives the token -> original map next to the
	// redacted output; empty suppresses it.
	TokenMapFile string `yaml:"token_map_file"`

	// Format is "text" or "json".
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Defaults: Defaults{
			FailurePolicy: "fail-open",
			LogLevel:      "off",
		},
		Gateway: Gateway{
			TimeoutMs: 2000,
		},
		Redaction: Redaction{
			Format: "text",
		},
	}
}

// SearchPaths returns the config file locations in precedence order.
func SearchPaths() []string {
	paths := []string{"phi-redact.yaml", ".phi-redact.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".phi-redact", "config.yaml"))
	}
	return paths
}

// Load reads the configuration from path, or from the first existing search
// path when path is empty, then applies environment overrides. A missing
// file is not an error; the defaults stand.
func Load(path string) (Config, error) {
	cfg := Default()

	candidates := []string{path}
	if path == "" {
		candidates = SearchPaths()
	}

	for _, candidate := range candidates {
		data, err := os.ReadFile(candidate)
		if err != nil {
			if path != "" {
				return Config{}, fmt.Errorf("reading config %s: %w", candidate, err)
			}
			continue
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", candidate, err)
		}
		break
	}

	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv layers PHI_REDACT_* environment variables over the file values.
func applyEnv(cfg *Config) {
	if v := os.Getenv("PHI_REDACT_FAILURE_POLICY"); v != "" {
		cfg.Defaults.FailurePolicy = v
	}
	if v := os.Getenv("PHI_REDACT_LOG_LEVEL"); v != "" {
		cfg.Defaults.LogLevel = v
	}
	if v := os.Getenv("PHI_REDACT_DEADLINE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.Defaults.DeadlineMs = ms
		}
	}
	if v := os.Getenv("PHI_REDACT_GATEWAY_COMMAND"); v != "" {
		cfg.Gateway.Command = v
		cfg.Gateway.Enabled = true
	}
}

// Validate rejects values that would otherwise fail deep inside the
// pipeline.
func (c Config) Validate() error {
	switch c.Defaults.FailurePolicy {
	case "fail-open", "abort":
	default:
		return fmt.Errorf("config: failure_policy %q must be fail-open or abort", c.Defaults.FailurePolicy)
	}
	switch c.Defaults.LogLevel {
	case "off", "metrics", "debug":
	default:
		return fmt.Errorf("config: log_level %q must be off, metrics, or debug", c.Defaults.LogLevel)
	}
	switch c.Redaction.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: redaction format %q must be text or json", c.Redaction.Format)
	}
	if c.Defaults.DeadlineMs < 0 {
		return fmt.Errorf("config: deadline_ms must not be negative")
	}
	if c.Gateway.Enabled && c.Gateway.Command == "" {
		return fmt.Errorf("config: gateway enabled without a command")
	}
	return nil
}

// Deadline returns the per-document deadline as a duration.
func (c Config) Deadline() time.Duration {
	return time.Duration(c.Defaults.DeadlineMs) * time.Millisecond
}

// GatewayTimeout returns the per-call gateway timeout as a duration.
func (c Config) GatewayTimeout() time.Duration {
	return time.Duration(c.Gateway.TimeoutMs) * time.Millisecond
}
