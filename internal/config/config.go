// Copyright piiscan contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package config loads the pipeline configuration from a YAML file with
// sensible defaults for every knob.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration.
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline"`
	Address  AddressConfig  `yaml:"address"`

	// DenyList holds terms that must never be anonymized. Only consulted
	// when extended features are enabled.
	DenyList []string `yaml:"deny_list"`

	// Profiles for different scanning scenarios.
	Profiles map[string]Profile `yaml:"profiles"`
}

// PipelineConfig mirrors the orchestrator's configuration surface.
type PipelineConfig struct {
	MLConfidenceThreshold  float64         `yaml:"ml_confidence_threshold"`
	ContextWindowSize      int             `yaml:"context_window_size"`
	AutoAnonymizeThreshold float64         `yaml:"auto_anonymize_threshold"`
	EnabledPasses          map[string]bool `yaml:"enabled_passes"`
	EnableNormalization    bool            `yaml:"enable_normalization"`
	EnableExtendedFeatures bool            `yaml:"enable_extended_features"`
	DefaultLanguage        string          `yaml:"default_language"`
	Debug                  bool            `yaml:"debug"`
}

// AddressConfig holds the address scorer thresholds.
type AddressConfig struct {
	ReviewThreshold        float64 `yaml:"review_threshold"`
	AutoAnonymizeThreshold float64 `yaml:"auto_anonymize_threshold"`
}

// Profile overrides a subset of the defaults for one scanning scenario.
type Profile struct {
	Description string          `yaml:"description"`
	Pipeline    *PipelineConfig `yaml:"pipeline,omitempty"`
	Address     *AddressConfig  `yaml:"address,omitempty"`
	DenyList    []string        `yaml:"deny_list,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			MLConfidenceThreshold:  0.5,
			ContextWindowSize:      50,
			AutoAnonymizeThreshold: 0.6,
			EnabledPasses: map[string]bool{
				"patterns": true,
				"address":  true,
				"invoice":  true,
				"denylist": true,
			},
			EnableNormalization: true,
			DefaultLanguage:     "de",
		},
		Address: AddressConfig{
			ReviewThreshold:        0.6,
			AutoAnonymizeThreshold: 0.8,
		},
		Profiles: map[string]Profile{},
	}
}

// Load reads configuration from path, layered over the defaults. An empty
// path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault is Load with fallback to defaults on any error. Callers
// that must distinguish a broken file from a missing one use Load.
func LoadOrDefault(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\nUsing default configuration\n", err)
		return Default()
	}
	return cfg
}

// FindConfigFile looks for a config file in the standard locations.
func FindConfigFile() string {
	candidates := []string{".piiscan.yaml", "piiscan.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(home, ".piiscan.yaml"),
			filepath.Join(home, ".config", "piiscan", "config.yaml"),
		)
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// ApplyProfile overlays a named profile onto the configuration.
func (c *Config) ApplyProfile(name string) error {
	profile, ok := c.Profiles[name]
	if !ok {
		return fmt.Errorf("unknown profile %q", name)
	}
	if profile.Pipeline != nil {
		c.Pipeline = *profile.Pipeline
	}
	if profile.Address != nil {
		c.Address = *profile.Address
	}
	if profile.DenyList != nil {
		c.DenyList = profile.DenyList
	}
	return c.validate()
}

func (c *Config) validate() error {
	checks := []struct {
		name  string
		value float64
	}{
		{"pipeline.ml_confidence_threshold", c.Pipeline.MLConfidenceThreshold},
		{"pipeline.auto_anonymize_threshold", c.Pipeline.AutoAnonymizeThreshold},
		{"address.review_threshold", c.Address.ReviewThreshold},
		{"address.auto_anonymize_threshold", c.Address.AutoAnonymizeThreshold},
	}
	for _, check := range checks {
		if check.value < 0 || check.value > 1 {
			return fmt.Errorf("%s must be in [0,1], got %v", check.name, check.value)
		}
	}
	switch c.Pipeline.DefaultLanguage {
	case "en", "fr", "de":
	default:
		return fmt.Errorf("default_language must be en, fr or de, got %q", c.Pipeline.DefaultLanguage)
	}
	if c.Pipeline.ContextWindowSize < 0 {
		return fmt.Errorf("context_window_size must be non-negative")
	}
	return nil
}
