// Package config loads planner settings from defaults, an optional YAML file and
// PAXDEI_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when none is given
const DefaultPath = "planner.yaml"

// Weight modes
const (
	WeightModeNone   = "none"
	WeightModeRarity = "rarity"
)

// Paths locates every input and output file
type Paths struct {
	Bundle       string `yaml:"bundle" env:"BUNDLE"`
	Localisation string `yaml:"localisation" env:"LOCALISATION"`
	Profile      string `yaml:"profile" env:"PROFILE"`
	Weights      string `yaml:"weights" env:"WEIGHTS"`
	Targets      string `yaml:"targets" env:"TARGETS"`
	Materials    string `yaml:"materials" env:"MATERIALS"`
	Database     string `yaml:"database" env:"DB"`
	OutDir       string `yaml:"out_dir" env:"OUT_DIR"`
}

// Config is the planner's run configuration
type Config struct {
	Paths      Paths  `yaml:"paths" envPrefix:"PAXDEI_"`
	Strategy   string `yaml:"strategy" env:"PAXDEI_STRATEGY"`
	WeightMode string `yaml:"weight_mode" env:"PAXDEI_WEIGHT_MODE"`
	Workers    int    `yaml:"workers" env:"PAXDEI_WORKERS"`
	TopK       int    `yaml:"top_k" env:"PAXDEI_TOP_K"`

	// MaxExpansions bounds the dijkstra search per skill; 0 keeps the built-in budget
	MaxExpansions  int  `yaml:"max_expansions" env:"PAXDEI_MAX_EXPANSIONS"`
	IgnoreStations bool `yaml:"ignore_stations" env:"PAXDEI_IGNORE_STATIONS"`
	WriteCSV       bool `yaml:"write_csv" env:"PAXDEI_WRITE_CSV"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Paths: Paths{
			Bundle:       "data/static_data.json.br",
			Localisation: "data/localisation.json",
			Profile:      "config/profile.json",
			Weights:      "config/weights.json",
			Targets:      "config/targets.json",
			Materials:    "config/materials_config.json",
			OutDir:       "out",
		},
		Strategy:   "greedy",
		WeightMode: WeightModeNone,
		TopK:       3,
	}
}

// Load builds the configuration: defaults, then the YAML file at path (a missing file
// is fine), then environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
			}
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated and numeric settings
func (c *Config) Validate() error {
	c.WeightMode = strings.ToLower(strings.TrimSpace(c.WeightMode))
	switch c.WeightMode {
	case "":
		c.WeightMode = WeightModeNone
	case WeightModeNone, WeightModeRarity:
	default:
		return fmt.Errorf("weight_mode must be %q or %q, got %q", WeightModeNone, WeightModeRarity, c.WeightMode)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.TopK < 0 {
		return fmt.Errorf("top_k must not be negative, got %d", c.TopK)
	}
	if c.MaxExpansions < 0 {
		return fmt.Errorf("max_expansions must not be negative, got %d", c.MaxExpansions)
	}
	return nil
}

// WriteTemplate writes the default configuration as YAML. It refuses to overwrite an
// existing file unless force is set.
func WriteTemplate(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
	}
	data, err := yaml.Marshal(Default())
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	header := []byte("# PaxDei planner configuration. PAXDEI_* environment variables override these values.\n")
	if err := os.WriteFile(path, append(header, data...), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
