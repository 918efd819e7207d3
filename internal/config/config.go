// Package config loads the guard's YAML configuration, validates it,
// and publishes immutable snapshots that the admission pipeline reads.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	guard "github.com/apollosolutions/graphguard/internal/guard"
	language "github.com/apollosolutions/graphguard/internal/language"
	schema "github.com/apollosolutions/graphguard/internal/schema"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration document.
type Config struct {
	// Schema is the path to the SDL file, relative to the config file.
	Schema string `yaml:"schema"`

	Limits  LimitsConfig  `yaml:"limits"`
	Weights WeightsConfig `yaml:"weights"`
	Server  ServerConfig  `yaml:"server"`
}

type LimitsConfig struct {
	MaxDepth   int   `yaml:"max_depth"`
	MaxCost    int   `yaml:"max_cost"`
	MaxNodes   int   `yaml:"max_nodes"`
	DepthCheck *bool `yaml:"depth_check"` // nil means enabled
	CostCheck  *bool `yaml:"cost_check"`  // nil means enabled
}

type WeightsConfig struct {
	Default *int `yaml:"default"` // nil means 1

	// Fields maps "Type.field" coordinates to explicit weights.
	Fields map[string]int `yaml:"fields"`
}

type ServerConfig struct {
	Listen   string `yaml:"listen"`
	Upstream string `yaml:"upstream"`
	Pretty   bool   `yaml:"pretty"`
}

// ConfigError reports an invalid proposed configuration. It is fatal
// only to the load or reload that produced it; an active snapshot is
// never replaced by an invalid one.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: invalid %s: %s", e.Field, e.Reason)
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	t := guard.DefaultThresholds()
	return &Config{
		Limits: LimitsConfig{
			MaxDepth: t.MaxDepth,
			MaxCost:  t.MaxCost,
			MaxNodes: t.MaxNodes,
		},
		Server: ServerConfig{Listen: ":8080"},
	}
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates configuration bytes.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the proposed limits and weights. MaxDepth has a hard
// floor: a limit below guard.MinDepthLimit would make introspection
// queries always fail, so it is rejected here instead of silently
// breaking clients.
func (c *Config) Validate() error {
	if c.Limits.MaxDepth < guard.MinDepthLimit {
		return &ConfigError{
			Field:  "limits.max_depth",
			Reason: fmt.Sprintf("%d is below the minimum of %d required for introspection", c.Limits.MaxDepth, guard.MinDepthLimit),
		}
	}
	if c.Limits.MaxCost < 0 {
		return &ConfigError{Field: "limits.max_cost", Reason: "must not be negative"}
	}
	if c.Limits.MaxNodes < 0 {
		return &ConfigError{Field: "limits.max_nodes", Reason: "must not be negative"}
	}
	if c.Weights.Default != nil && *c.Weights.Default < 0 {
		return &ConfigError{Field: "weights.default", Reason: "must not be negative"}
	}
	for coord, w := range c.Weights.Fields {
		if w < 0 {
			return &ConfigError{Field: "weights.fields." + coord, Reason: "must not be negative"}
		}
	}
	return nil
}

// Thresholds converts the limits section into guard thresholds.
func (c *Config) Thresholds() guard.Thresholds {
	enabled := func(b *bool) bool { return b == nil || *b }
	return guard.Thresholds{
		MaxDepth:     c.Limits.MaxDepth,
		MaxCost:      c.Limits.MaxCost,
		MaxNodes:     c.Limits.MaxNodes,
		DepthEnabled: enabled(c.Limits.DepthCheck),
		CostEnabled:  enabled(c.Limits.CostCheck),
	}
}

// Registry converts the weights section into a weight registry.
func (c *Config) Registry() *guard.WeightRegistry {
	def := guard.DefaultWeight
	if c.Weights.Default != nil {
		def = *c.Weights.Default
	}
	return guard.NewWeightRegistry(def, c.Weights.Fields)
}

// BuildSnapshot loads the schema named by cfg (resolved against
// baseDir when relative) and assembles one immutable snapshot.
func BuildSnapshot(cfg *Config, baseDir string) (*guard.Snapshot, error) {
	if cfg.Schema == "" {
		return nil, &ConfigError{Field: "schema", Reason: "no schema file configured"}
	}
	path := cfg.Schema
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	sdl, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	doc, err := language.ParseSchema(filepath.Base(path), string(sdl))
	if err != nil {
		return nil, fmt.Errorf("config: parse schema %s: %w", path, err)
	}
	s, err := schema.BuildFromSDL(doc)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &guard.Snapshot{
		Schema:  s,
		Index:   schema.BuildIndex(s),
		Weights: cfg.Registry(),
		Limits:  cfg.Thresholds(),
	}, nil
}
