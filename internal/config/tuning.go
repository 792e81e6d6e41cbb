package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning overrides the heuristic matching and ranking constants.
// Nil fields keep the built-in value.
type Tuning struct {
	AmenityMatchThreshold *float64 `yaml:"amenity_match_threshold"`
	BudgetWeight          *float64 `yaml:"budget_weight"`
	BedroomWeight         *float64 `yaml:"bedroom_weight"`
	AmenityMatchWeight    *float64 `yaml:"amenity_match_weight"`
	AmenityRichnessWeight *float64 `yaml:"amenity_richness_weight"`
	SizeDivisor           *float64 `yaml:"size_divisor"`
	SizeCap               *float64 `yaml:"size_cap"`
}

// LoadTuning reads a YAML tuning file. An empty path yields no overrides.
func LoadTuning(path string) (*Tuning, error) {
	if path == "" {
		return &Tuning{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tuning file: %w", err)
	}

	var t Tuning
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse tuning file: %w", err)
	}

	if t.AmenityMatchThreshold != nil && (*t.AmenityMatchThreshold < 0 || *t.AmenityMatchThreshold > 1) {
		return nil, fmt.Errorf("amenity_match_threshold must be within [0, 1], got %v", *t.AmenityMatchThreshold)
	}
	if t.SizeDivisor != nil && *t.SizeDivisor <= 0 {
		return nil, fmt.Errorf("size_divisor must be positive, got %v", *t.SizeDivisor)
	}

	return &t, nil
}
