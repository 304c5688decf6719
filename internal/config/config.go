package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/numsolve/internal/ode"
	"github.com/san-kum/numsolve/internal/roots"
)

const (
	DefaultTolerance     = 1e-6
	DefaultMaxIterations = 200
	DefaultH             = 0.1
	DefaultSteps         = 10
)

// Problem kinds.
const (
	KindRoot   = "root"
	KindODE    = "ode"
	KindLinear = "linear"
)

// Linear methods that only need the matrix.
const (
	LinearLU      = "lu"
	LinearInverse = "inverse"
	LinearDet     = "det"
)

var ErrInvalidConfig = errors.New("config: invalid problem")

// Config describes one problem: what to solve, with which method, from where.
type Config struct {
	Kind          string        `yaml:"kind" json:"kind"`
	Method        string        `yaml:"method" json:"method"`
	Function      string        `yaml:"function,omitempty" json:"function,omitempty"`
	Derivative    string        `yaml:"derivative,omitempty" json:"derivative,omitempty"`
	Tolerance     float64       `yaml:"tolerance,omitempty" json:"tolerance,omitempty"`
	MaxIterations int           `yaml:"max_iterations,omitempty" json:"max_iterations,omitempty"`
	Initial       roots.Initial `yaml:"initial,omitempty" json:"initial,omitempty"`
	ODE           ode.Settings  `yaml:"ode,omitempty" json:"ode,omitempty"`
	Linear        LinearConfig  `yaml:"linear,omitempty" json:"linear,omitempty"`
}

type LinearConfig struct {
	A [][]float64 `yaml:"a,flow" json:"a"`
	B []float64   `yaml:"b,flow,omitempty" json:"b,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Kind:          KindRoot,
		Method:        string(roots.Bisection),
		Tolerance:     DefaultTolerance,
		MaxIterations: DefaultMaxIterations,
		ODE: ode.Settings{
			H:     DefaultH,
			Steps: DefaultSteps,
		},
	}
}

func Load(path string) (*Config, error) {
	return Overlay(path, DefaultConfig())
}

// Overlay reads path on top of a copy of base: keys present in the file
// replace base's values, the rest are kept.
func Overlay(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
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

// Clone returns a deep copy so presets can be adjusted without aliasing.
func (c *Config) Clone() *Config {
	out := *c
	if c.Linear.A != nil {
		out.Linear.A = make([][]float64, len(c.Linear.A))
		for i, row := range c.Linear.A {
			out.Linear.A[i] = append([]float64(nil), row...)
		}
	}
	if c.Linear.B != nil {
		out.Linear.B = append([]float64(nil), c.Linear.B...)
	}
	return &out
}

func (c *Config) RootSettings() roots.Settings {
	return roots.Settings{Tolerance: c.Tolerance, MaxIterations: c.MaxIterations}
}

// Validate checks the fields the problem kind uses. Method names are resolved
// later by the registry.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Method) == "" {
		return invalid("method is required")
	}
	switch c.Kind {
	case KindRoot:
		return c.validateRoot()
	case KindODE:
		return c.validateODE()
	case KindLinear:
		return c.validateLinear()
	default:
		return invalid("unknown kind %q (want %s, %s or %s)", c.Kind, KindRoot, KindODE, KindLinear)
	}
}

func (c *Config) validateRoot() error {
	if strings.TrimSpace(c.Function) == "" {
		return invalid("function is required")
	}
	if !(c.Tolerance > 0) || math.IsInf(c.Tolerance, 0) {
		return invalid("tolerance must be positive, got %g", c.Tolerance)
	}
	if c.MaxIterations <= 0 {
		return invalid("max_iterations must be positive, got %d", c.MaxIterations)
	}
	switch roots.Method(c.Method) {
	case roots.Bisection, roots.FalsePosition:
		if c.Initial.A == c.Initial.B {
			return invalid("bracket endpoints must differ, got a = b = %g", c.Initial.A)
		}
	case roots.Secant:
		if c.Initial.X0 == c.Initial.X1 {
			return invalid("secant needs two distinct starting points, got x0 = x1 = %g", c.Initial.X0)
		}
	}
	return nil
}

func (c *Config) validateODE() error {
	if strings.TrimSpace(c.Function) == "" {
		return invalid("function is required")
	}
	if err := c.ODE.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func (c *Config) validateLinear() error {
	n := len(c.Linear.A)
	if n == 0 {
		return invalid("linear.a is required")
	}
	for i, row := range c.Linear.A {
		if len(row) != n {
			return invalid("linear.a must be square: row %d has %d entries, want %d", i, len(row), n)
		}
	}
	switch c.Method {
	case LinearLU, LinearInverse, LinearDet:
		return nil
	}
	if len(c.Linear.B) != n {
		return invalid("linear.b has %d entries, want %d", len(c.Linear.B), n)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
