package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Profile is a named interpreter configuration profile, for clients that pin
// different evaluation limits per deployment.
type Profile struct {
	Name              string `yaml:"name" json:"name"`
	MaxReductionSteps int    `yaml:"max_reduction_steps" json:"max_reduction_steps"`
	StrictSchema      bool   `yaml:"strict_schema" json:"strict_schema"`
	StorePath         string `yaml:"store_path,omitempty" json:"store_path,omitempty"`
}

// LoadProfile reads a YAML profile from disk.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("config: read profile: %w", err)
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("config: parse profile: %w", err)
	}
	if p.Name == "" {
		return nil, fmt.Errorf("config: profile requires a name")
	}
	if p.MaxReductionSteps < 0 {
		return nil, fmt.Errorf("config: max_reduction_steps must be non-negative")
	}
	return &p, nil
}

// Apply overlays profile values onto a config.
func (p *Profile) Apply(cfg *Config) {
	if p.MaxReductionSteps > 0 {
		cfg.MaxReductionSteps = p.MaxReductionSteps
	}
	if p.StorePath != "" {
		cfg.StorePath = p.StorePath
	}
	cfg.StrictSchema = p.StrictSchema
}
