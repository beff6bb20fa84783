// Package config holds the simulation tunables loaded from finsim.yaml.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level finsim.yaml configuration.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Tax        TaxConfig        `yaml:"tax"`
	Credit     CreditConfig     `yaml:"credit"`
}

// SimulationConfig seeds a scenario run.
type SimulationConfig struct {
	StartYear int     `yaml:"start_year"`
	StartCash float64 `yaml:"start_cash"`
	BirthYear int     `yaml:"birth_year"`
	Seed      int64   `yaml:"seed"`
}

// TaxConfig overrides the default bracket table and deduction.
type TaxConfig struct {
	StandardDeduction float64         `yaml:"standard_deduction"`
	Brackets          []BracketConfig `yaml:"brackets,omitempty"`
}

// BracketConfig is one progressive band; upper 0 = unbounded.
type BracketConfig struct {
	Lower float64 `yaml:"lower"`
	Upper float64 `yaml:"upper"`
	Rate  float64 `yaml:"rate"`
}

// CreditConfig sets the starting credit score.
type CreditConfig struct {
	StartingScore int `yaml:"starting_score"`
}

// Default returns the configuration for a fresh scenario.
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{
			StartYear: 2030,
			StartCash: 25000,
			BirthYear: 2005,
			Seed:      1,
		},
		Tax: TaxConfig{
			StandardDeduction: 13850,
			Brackets: []BracketConfig{
				{Lower: 0, Upper: 10000, Rate: 0.10},
				{Lower: 10000, Upper: 40000, Rate: 0.15},
				{Lower: 40000, Upper: 0, Rate: 0.25},
			},
		},
		Credit: CreditConfig{StartingScore: 650},
	}
}

// Load reads a finsim.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a config file to disk.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
