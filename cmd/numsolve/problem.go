package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/numsolve/internal/config"
)

// loadProblem builds the config for one command. Later sources win:
// defaults, then the preset, then the config file, then flags the user set.
func loadProblem(cmd *cobra.Command, kind string, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Kind = kind
	cfg.Method = ""

	// Load preset if specified
	if preset != "" {
		p := config.GetPreset(kind, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(kind))
		}
		cfg = p
	}

	// Load config file if specified (overrides preset)
	if configFile != "" {
		loaded, err := config.Overlay(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if loaded.Kind != kind {
			return nil, fmt.Errorf("%s describes a %s problem, not %s", configFile, loaded.Kind, kind)
		}
		cfg = loaded
	}

	if len(args) > 0 {
		cfg.Method = args[0]
	}

	flags := cmd.Flags()
	switch kind {
	case config.KindRoot:
		if flags.Changed("function") {
			cfg.Function = function
		}
		if flags.Changed("derivative") {
			cfg.Derivative = derivative
		}
		if flags.Changed("tol") {
			cfg.Tolerance = tolerance
		}
		if flags.Changed("max-iter") {
			cfg.MaxIterations = maxIter
		}
		if flags.Changed("a") {
			cfg.Initial.A = bracketA
		}
		if flags.Changed("b") {
			cfg.Initial.B = bracketB
		}
		if flags.Changed("x0") {
			cfg.Initial.X0 = x0
		}
		if flags.Changed("x1") {
			cfg.Initial.X1 = x1
		}

	case config.KindODE:
		if flags.Changed("function") {
			cfg.Function = function
		}
		if flags.Changed("x0") {
			cfg.ODE.X0 = odeX0
		}
		if flags.Changed("y0") || (preset == "" && configFile == "") {
			cfg.ODE.Y0 = odeY0
		}
		if flags.Changed("h") {
			cfg.ODE.H = stepH
		}
		// the two ways of ending a run exclude each other
		if flags.Changed("steps") {
			cfg.ODE.Steps, cfg.ODE.XEnd = steps, 0
		}
		if flags.Changed("x-end") {
			cfg.ODE.XEnd, cfg.ODE.Steps = xEnd, 0
		}

	case config.KindLinear:
		if flags.Changed("matrix") {
			a, err := parseMatrix(matrix)
			if err != nil {
				return nil, err
			}
			cfg.Linear.A = a
		}
		if flags.Changed("rhs") {
			b, err := parseVector(rhs)
			if err != nil {
				return nil, err
			}
			cfg.Linear.B = b
		}
	}

	if cfg.Method == "" {
		return nil, fmt.Errorf("no method given: pass one as an argument or use --preset/--config")
	}
	return cfg, nil
}

// parseMatrix reads "1,2;3,4" as [[1 2] [3 4]].
func parseMatrix(s string) ([][]float64, error) {
	var rows [][]float64
	for _, line := range strings.Split(s, ";") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		row, err := parseVector(line)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty matrix")
	}
	return rows, nil
}

func parseVector(s string) ([]float64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q: %w", f, err)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty vector %q", s)
	}
	return out, nil
}
