// Package registry maps method names used in configs and on the command line
// to root-finding strategies, ODE steppers and linear solvers.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/numsolve/internal/linalg"
	"github.com/san-kum/numsolve/internal/ode"
	"github.com/san-kum/numsolve/internal/roots"
)

var ErrUnknownMethod = errors.New("registry: unknown method")

// All selects every stepper in Steppers.
const All = "all"

// LinearSolver solves a·x = b.
type LinearSolver func(a *linalg.Dense, b []float64) ([]float64, error)

type Registry struct {
	strategies map[string]func() roots.Strategy
	steppers   map[string]func() ode.Stepper
	solvers    map[string]LinearSolver
	aliases    map[string]string
	order      []string
}

func NewRegistry() *Registry {
	r := &Registry{
		strategies: make(map[string]func() roots.Strategy),
		steppers:   make(map[string]func() ode.Stepper),
		solvers:    make(map[string]LinearSolver),
		aliases:    make(map[string]string),
	}

	r.strategies[string(roots.Bisection)] = func() roots.Strategy { return roots.NewBisection() }
	r.strategies[string(roots.FalsePosition)] = func() roots.Strategy { return roots.NewFalsePosition() }
	r.strategies[string(roots.NewtonRaphson)] = func() roots.Strategy { return roots.NewNewton() }
	r.strategies[string(roots.Secant)] = func() roots.Strategy { return roots.NewSecant() }

	r.steppers["euler"] = func() ode.Stepper { return ode.NewEuler() }
	r.steppers["heun"] = func() ode.Stepper { return ode.NewHeun() }
	r.steppers["midpoint"] = func() ode.Stepper { return ode.NewMidpoint() }
	r.steppers["ralston"] = func() ode.Stepper { return ode.NewRalston() }
	r.order = []string{"euler", "heun", "midpoint", "ralston"}

	r.solvers["gauss"] = linalg.Gauss
	r.solvers["pivot"] = linalg.GaussPivot

	for alias, name := range map[string]string{
		"bisect":           string(roots.Bisection),
		"regula-falsi":     string(roots.FalsePosition),
		"fp":               string(roots.FalsePosition),
		"newton":           string(roots.NewtonRaphson),
		"nr":               string(roots.NewtonRaphson),
		"improved-euler":   "heun",
		"rk2":              "midpoint",
		"naive":            "gauss",
		"partial-pivoting": "pivot",
		"gauss-pivot":      "pivot",
	} {
		r.aliases[alias] = name
	}

	return r
}

func (r *Registry) canonical(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.NewReplacer("_", "-", " ", "-").Replace(key)
	if target, ok := r.aliases[key]; ok {
		return target
	}
	return key
}

func (r *Registry) GetStrategy(name string) (roots.Strategy, error) {
	fn, ok := r.strategies[r.canonical(name)]
	if !ok {
		return nil, fmt.Errorf("%w: root method %q", ErrUnknownMethod, name)
	}
	return fn(), nil
}

func (r *Registry) GetStepper(name string) (ode.Stepper, error) {
	fn, ok := r.steppers[r.canonical(name)]
	if !ok {
		return nil, fmt.Errorf("%w: ode method %q", ErrUnknownMethod, name)
	}
	return fn(), nil
}

// Steppers resolves names in order. A single "all" expands to every stepper.
func (r *Registry) Steppers(names ...string) ([]ode.Stepper, error) {
	if len(names) == 1 && r.canonical(names[0]) == All {
		names = r.order
	}
	out := make([]ode.Stepper, 0, len(names))
	for _, name := range names {
		s, err := r.GetStepper(name)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *Registry) GetSolver(name string) (LinearSolver, error) {
	fn, ok := r.solvers[r.canonical(name)]
	if !ok {
		return nil, fmt.Errorf("%w: linear method %q", ErrUnknownMethod, name)
	}
	return fn, nil
}

// IsStepperSelection reports whether name picks one or all ODE steppers.
func (r *Registry) IsStepperSelection(name string) bool {
	key := r.canonical(name)
	_, ok := r.steppers[key]
	return ok || key == All
}

func (r *Registry) ListStrategies() []string { return sortedKeys(r.strategies) }
func (r *Registry) ListSteppers() []string   { return append([]string(nil), r.order...) }
func (r *Registry) ListSolvers() []string    { return sortedKeys(r.solvers) }

// Aliases returns the alternative names that resolve to name.
func (r *Registry) Aliases(name string) []string {
	var out []string
	for alias, target := range r.aliases {
		if target == name {
			out = append(out, alias)
		}
	}
	sort.Strings(out)
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
