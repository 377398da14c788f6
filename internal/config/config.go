package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	DefaultModel      = "classic"
	DefaultIntegrator = "euler"
	DefaultHorizon    = 40
	DefaultPopulation = 7138.0
)

// Config describes one scenario: which model to run, from which population,
// with which rates. A zero Horizon means the model's default.
type Config struct {
	Model      string          `yaml:"model" toml:"model" json:"model"`
	Integrator string          `yaml:"integrator,omitempty" toml:"integrator" json:"integrator,omitempty"`
	Substeps   int             `yaml:"substeps,omitempty" toml:"substeps" json:"substeps,omitempty"`
	Horizon    int             `yaml:"horizon,omitempty" toml:"horizon" json:"horizon,omitempty"`
	Clamp      bool            `yaml:"clamp,omitempty" toml:"clamp" json:"clamp,omitempty"`
	Validate   bool            `yaml:"validate,omitempty" toml:"validate" json:"validate,omitempty"`
	Population Population      `yaml:"population" toml:"population" json:"population"`
	Rates      map[string]Expr `yaml:"rates" toml:"rates" json:"rates"`
}

// Population is the day-0 split. S0 is whatever is left of N.
type Population struct {
	N  float64 `yaml:"n" toml:"n" json:"n"`
	I0 float64 `yaml:"i0" toml:"i0" json:"i0"`
	R0 float64 `yaml:"r0,omitempty" toml:"r0" json:"r0,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:      DefaultModel,
		Integrator: DefaultIntegrator,
		Horizon:    DefaultHorizon,
		Population: Population{N: DefaultPopulation, I0: 1},
		Rates: map[string]Expr{
			"beta": "1.0 / N",
			"k":    "0.4",
		},
	}
}

// Load reads a scenario file. Files ending in .toml are decoded as TOML,
// anything else as YAML. Rates in the file replace the default rates, and a
// missing horizon stays zero so the model's own default applies.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.Rates = nil
	cfg.Horizon = 0

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	if err := cfg.Check(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Check rejects structurally broken configs. Rate values are not range
// checked; any real number is a valid rate.
func (c *Config) Check() error {
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.Horizon < 0 {
		return fmt.Errorf("horizon must not be negative, got %d", c.Horizon)
	}
	if c.Substeps < 0 {
		return fmt.Errorf("substeps must not be negative, got %d", c.Substeps)
	}
	return nil
}

// Params evaluates every rate against the population.
func (c *Config) Params() (map[string]float64, error) {
	out := make(map[string]float64, len(c.Rates))
	for _, name := range c.RateNames() {
		v, err := c.Rates[name].Eval(c.Population)
		if err != nil {
			return nil, fmt.Errorf("rate %s: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

func (c *Config) RateNames() []string {
	names := make([]string, 0, len(c.Rates))
	for name := range c.Rates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetRate overrides one rate with a literal value.
func (c *Config) SetRate(name string, v float64) {
	if c.Rates == nil {
		c.Rates = make(map[string]Expr)
	}
	c.Rates[name] = Number(v)
}

func (c *Config) Clone() *Config {
	cp := *c
	cp.Rates = make(map[string]Expr, len(c.Rates))
	for k, v := range c.Rates {
		cp.Rates[k] = v
	}
	return &cp
}
