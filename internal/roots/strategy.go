// Package roots finds roots of scalar functions with bracketing and open
// iteration strategies that share one iterate/check/log engine.
package roots

import (
	"github.com/san-kum/numsolve/internal/convergence"
	"github.com/san-kum/numsolve/internal/numeric"
)

// Method names a root-finding strategy.
type Method string

const (
	Bisection     Method = "bisection"
	FalsePosition Method = "false-position"
	NewtonRaphson Method = "newton-raphson"
	Secant        Method = "secant"
)

// Initial is the starting state. Bracketing methods read A and B, Newton-Raphson
// reads X0, the secant method reads X0 and X1.
type Initial struct {
	A  float64 `json:"a" yaml:"a"`
	B  float64 `json:"b" yaml:"b"`
	X0 float64 `json:"x0" yaml:"x0"`
	X1 float64 `json:"x1" yaml:"x1"`
}

// Problem bundles the oracles with the initial state.
type Problem struct {
	F numeric.Func
	// DF is the derivative oracle for Newton-Raphson. Nil selects a central difference.
	DF      numeric.Func
	Initial Initial
}

// State is the per-iteration working state. Bracketing methods hold the
// bracket in A/B; open methods hold the iterates (Newton uses only A).
type State struct {
	A, B   float64
	FA, FB float64
}

// Step is the outcome of one iteration.
type Step struct {
	// Fields holds the method-specific pre-update values, named by Strategy.Columns.
	Fields []float64
	X, FX  float64
	// Delta is the reference distance for the convergence test: the bracket
	// width for bracketing methods, |x_new - x_prev| for open methods.
	Delta float64
	Next  State
}

// Strategy is one root-finding update rule.
type Strategy interface {
	Method() Method
	Columns() []string
	// Start validates the initial state and evaluates the oracle there.
	Start(p Problem) (State, error)
	// Next performs one iteration from s. It returns an error wrapping
	// numeric.ErrDegenerate when a required denominator is zero.
	Next(p Problem, s State) (Step, error)
}

// Record is one row of the iteration trace.
type Record struct {
	Iteration int
	Fields    []float64
	Estimate  float64
	FEstimate float64
	Sample    convergence.Sample
}

// Settings are the stopping parameters.
type Settings struct {
	Tolerance     float64 `json:"tolerance" yaml:"tolerance"`
	MaxIterations int     `json:"max_iterations" yaml:"max_iterations"`
}

func DefaultSettings() Settings {
	return Settings{
		Tolerance:     1e-6,
		MaxIterations: 200,
	}
}

// Result is the trace and terminal state of one run.
type Result struct {
	Method  Method
	Columns []string
	Trace   []Record
	Root    float64
	HasRoot bool
	Status  numeric.Status
	// Width is the last Step.Delta.
	Width float64
}

// Iterations returns the number of recorded iterations.
func (r *Result) Iterations() int {
	return len(r.Trace)
}

// Last returns the final trace record.
func (r *Result) Last() (Record, bool) {
	if len(r.Trace) == 0 {
		return Record{}, false
	}
	return r.Trace[len(r.Trace)-1], true
}
