package config

import (
	"sort"

	"github.com/san-kum/numsolve/internal/ode"
	"github.com/san-kum/numsolve/internal/roots"
)

var Presets = map[string]map[string]*Config{
	KindRoot: {
		"cubic-bisection": {
			Kind: KindRoot, Method: string(roots.Bisection), Function: "x^3 - x - 2",
			Tolerance: 1e-6, MaxIterations: 200,
			Initial: roots.Initial{A: 1, B: 2},
		},
		"cubic-false-position": {
			Kind: KindRoot, Method: string(roots.FalsePosition), Function: "x^3 - x - 2",
			Tolerance: 1e-6, MaxIterations: 200,
			Initial: roots.Initial{A: 1, B: 2},
		},
		"sqrt2-newton": {
			Kind: KindRoot, Method: string(roots.NewtonRaphson), Function: "x^2 - 2", Derivative: "2*x",
			Tolerance: 1e-6, MaxIterations: 50,
			Initial: roots.Initial{X0: 1},
		},
		"sqrt2-secant": {
			Kind: KindRoot, Method: string(roots.Secant), Function: "x^2 - 2",
			Tolerance: 1e-6, MaxIterations: 50,
			Initial: roots.Initial{X0: 1, X1: 2},
		},
		"cosine-fixed-point": {
			Kind: KindRoot, Method: string(roots.NewtonRaphson), Function: "cos(x) - x",
			Tolerance: 1e-10, MaxIterations: 50,
			Initial: roots.Initial{X0: 1},
		},
	},
	KindODE: {
		"euler-demo": {
			Kind: KindODE, Method: "euler", Function: "x + y",
			ODE: ode.Settings{X0: 0, Y0: 1, H: 0.1, Steps: 2},
		},
		"linear-all": {
			Kind: KindODE, Method: "all", Function: "x + y",
			ODE: ode.Settings{X0: 0, Y0: 1, H: 0.1, XEnd: 1},
		},
		"decay": {
			Kind: KindODE, Method: "ralston", Function: "-2*y",
			ODE: ode.Settings{X0: 0, Y0: 1, H: 0.05, XEnd: 2},
		},
		"logistic": {
			Kind: KindODE, Method: "heun", Function: "y*(1 - y)",
			ODE: ode.Settings{X0: 0, Y0: 0.1, H: 0.25, XEnd: 10},
		},
	},
	KindLinear: {
		"gauss-3x3": {
			Kind: KindLinear, Method: "pivot",
			Linear: LinearConfig{
				A: [][]float64{{2, 1, -1}, {-3, -1, 2}, {-2, 1, 2}},
				B: []float64{8, -11, -3},
			},
		},
		"singular-lu": {
			Kind: KindLinear, Method: LinearLU,
			Linear: LinearConfig{
				A: [][]float64{{1, 2, 3}, {2, 4, 6}, {1, 1, 1}},
			},
		},
		"inverse-2x2": {
			Kind: KindLinear, Method: LinearInverse,
			Linear: LinearConfig{
				A: [][]float64{{4, 7}, {2, 6}},
			},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(kind, preset string) *Config {
	kindPresets, ok := Presets[kind]
	if !ok {
		return nil
	}
	cfg, ok := kindPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

// FindPreset looks a preset up by name across all kinds.
func FindPreset(preset string) *Config {
	for _, kind := range Kinds() {
		if cfg := GetPreset(kind, preset); cfg != nil {
			return cfg
		}
	}
	return nil
}

func ListPresets(kind string) []string {
	kindPresets, ok := Presets[kind]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(kindPresets))
	for name := range kindPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func Kinds() []string {
	return []string{KindRoot, KindODE, KindLinear}
}
