// Package config loads the settings of the rule consistency checker.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Common errors.
var (
	ErrInvalidInterval  = errors.New("interval min must be below max")
	ErrInvalidTolerance = errors.New("tolerances must be non-negative")
	ErrInvalidSamples   = errors.New("samples must be positive")
)

// Interval is a closed sampling range.
type Interval struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Tolerance bounds |a-b| by Abs + Rel·max(|a|, |b|).
type Tolerance struct {
	Abs float64 `yaml:"abs"`
	Rel float64 `yaml:"rel"`
}

// Check configures internal/ruletest.
type Check struct {
	Seed    int64 `yaml:"seed"`
	Samples int   `yaml:"samples"`
	Workers int   `yaml:"workers"`

	// Step is the finite-difference step.
	Step float64 `yaml:"step"`

	Standard   Tolerance `yaml:"standard"`
	Fast       Tolerance `yaml:"fast"`
	Difference Tolerance `yaml:"difference"`

	// Default is the sampling range for arguments of functions without an
	// entry in Intervals. Complex arguments draw both parts from it.
	Default   Interval            `yaml:"default"`
	Intervals map[string]Interval `yaml:"intervals"`

	// Skip lists signature keys the checker leaves out.
	Skip []string `yaml:"skip"`
}

// Default returns the built-in settings.
func Default() *Check {
	positive := Interval{Min: 0.2, Max: 3}
	return &Check{
		Seed:       1,
		Samples:    32,
		Workers:    4,
		Step:       1e-6,
		Standard:   Tolerance{Abs: 1e-9, Rel: 1e-9},
		Fast:       Tolerance{Abs: 1e-4, Rel: 1e-4},
		Difference: Tolerance{Abs: 1e-6, Rel: 1e-5},
		Default:    Interval{Min: -2, Max: 2},
		Intervals: map[string]Interval{
			"log":   positive,
			"log2":  positive,
			"log10": positive,
			"log1p": {Min: -0.5, Max: 3},
			"sqrt":  positive,
			"cbrt":  positive,
			"^":     positive,
			"/":     positive,
			`\`:     positive,
			"inv":   positive,
			"mod":   positive,
			"acos":  {Min: -0.9, Max: 0.9},
			"asin":  {Min: -0.9, Max: 0.9},
			"tan":   {Min: -1.2, Max: 1.2},
		},
	}
}

// Load reads settings from a YAML file. Fields absent from the file keep
// their Default values; intervals are merged by function.
func Load(path string) (*Check, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML settings on top of Default.
func Parse(data []byte) (*Check, error) {
	cfg := Default()
	defaults := cfg.Intervals
	cfg.Intervals = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	merged := make(map[string]Interval, len(defaults)+len(cfg.Intervals))
	for fn, iv := range defaults {
		merged[fn] = iv
	}
	for fn, iv := range cfg.Intervals {
		merged[fn] = iv
	}
	cfg.Intervals = merged
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings for consistency.
func (c *Check) Validate() error {
	if c.Samples <= 0 {
		return fmt.Errorf("config: %w (got %d)", ErrInvalidSamples, c.Samples)
	}
	if c.Step <= 0 {
		return fmt.Errorf("config: step must be positive (got %g)", c.Step)
	}
	for name, tol := range map[string]Tolerance{
		"standard":   c.Standard,
		"fast":       c.Fast,
		"difference": c.Difference,
	} {
		if tol.Abs < 0 || tol.Rel < 0 {
			return fmt.Errorf("config: %s: %w", name, ErrInvalidTolerance)
		}
	}
	if c.Default.Min >= c.Default.Max {
		return fmt.Errorf("config: default: %w", ErrInvalidInterval)
	}
	for fn, iv := range c.Intervals {
		if iv.Min >= iv.Max {
			return fmt.Errorf("config: interval %q: %w", fn, ErrInvalidInterval)
		}
	}
	return nil
}

// Interval returns the sampling range for fn.
func (c *Check) Interval(fn string) Interval {
	if iv, ok := c.Intervals[fn]; ok {
		return iv
	}
	return c.Default
}

// Skipped reports whether key is excluded from checking.
func (c *Check) Skipped(key string) bool {
	for _, k := range c.Skip {
		if k == key {
			return true
		}
	}
	return false
}

// Marshal encodes the settings as YAML.
func (c *Check) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
