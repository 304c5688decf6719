// Package experiment turns a problem config into a solver run: it compiles
// the expressions, resolves the method and runs the matching engine.
package experiment

import (
	"context"
	"errors"
	"fmt"

	"github.com/san-kum/numsolve/internal/config"
	"github.com/san-kum/numsolve/internal/expreval"
	"github.com/san-kum/numsolve/internal/linalg"
	"github.com/san-kum/numsolve/internal/numeric"
	"github.com/san-kum/numsolve/internal/ode"
	"github.com/san-kum/numsolve/internal/registry"
	"github.com/san-kum/numsolve/internal/roots"
	"github.com/san-kum/numsolve/internal/storage"
)

type Experiment struct {
	cfg *config.Config
	reg *registry.Registry

	f        numeric.Func
	df       numeric.Func
	rate     numeric.Func2
	strategy roots.Strategy
	steppers []ode.Stepper
	solver   registry.LinearSolver
	a        *linalg.Dense
}

func New(cfg *config.Config, reg *registry.Registry) *Experiment {
	return &Experiment{cfg: cfg.Clone(), reg: reg}
}

func (e *Experiment) Config() *config.Config { return e.cfg }

// Setup validates the config and compiles everything Run needs.
func (e *Experiment) Setup() error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	var err error
	switch e.cfg.Kind {
	case config.KindRoot:
		if e.f, err = expreval.Compile(e.cfg.Function); err != nil {
			return fmt.Errorf("function: %w", err)
		}
		if e.cfg.Derivative != "" {
			if e.df, err = expreval.Compile(e.cfg.Derivative); err != nil {
				return fmt.Errorf("derivative: %w", err)
			}
		}
		e.strategy, err = e.reg.GetStrategy(e.cfg.Method)
		return err

	case config.KindODE:
		if e.rate, err = expreval.Compile2(e.cfg.Function); err != nil {
			return fmt.Errorf("function: %w", err)
		}
		e.steppers, err = e.reg.Steppers(e.cfg.Method)
		return err

	case config.KindLinear:
		if e.a, err = linalg.NewDenseFrom(e.cfg.Linear.A); err != nil {
			return err
		}
		switch e.cfg.Method {
		case config.LinearLU, config.LinearInverse, config.LinearDet:
			return nil
		}
		e.solver, err = e.reg.GetSolver(e.cfg.Method)
		return err
	}
	return nil
}

// Outcome holds whichever results the problem kind produced.
type Outcome struct {
	Config *config.Config

	Root *roots.Result
	ODE  []*ode.Result

	Matrix   *linalg.Dense
	L, U     *linalg.Dense
	Inverse  *linalg.Dense
	Solution []float64
	Residual float64
	Det      float64
}

// Run executes the configured engine. The outcome is non-nil whenever Setup
// succeeded, and carries partial traces when the engine stopped early.
func (e *Experiment) Run(ctx context.Context) (*Outcome, error) {
	if e.strategy == nil && e.steppers == nil && e.a == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	out := &Outcome{Config: e.cfg}

	switch e.cfg.Kind {
	case config.KindRoot:
		p := roots.Problem{F: e.f, DF: e.df, Initial: e.cfg.Initial}
		res, err := roots.Find(ctx, e.strategy, p, e.cfg.RootSettings())
		out.Root = res
		return out, err

	case config.KindODE:
		results, err := ode.RunAll(ctx, e.rate, e.steppers, e.cfg.ODE)
		out.ODE = results
		if err == nil {
			err = instability(results)
		}
		return out, err
	}

	out.Matrix = e.a
	return out, e.runLinear(out)
}

// instability reports the first run that blew up, so batch summaries count it
// as a failure.
func instability(results []*ode.Result) error {
	for _, r := range results {
		if r.Status == numeric.StatusNumericInstability {
			return fmt.Errorf("%s: %w", r.Method, numeric.ErrNumericInstability)
		}
	}
	return nil
}

func (e *Experiment) runLinear(out *Outcome) error {
	b := e.cfg.Linear.B
	var err error
	switch e.cfg.Method {
	case config.LinearLU:
		if out.L, out.U, err = linalg.LU(e.a); err != nil {
			return err
		}
		if len(b) == 0 {
			return nil
		}
		out.Solution, err = linalg.SolveLU(out.L, out.U, b)
	case config.LinearInverse:
		out.Inverse, err = linalg.Inverse(e.a)
		return err
	case config.LinearDet:
		out.Det, err = linalg.Determinant(e.a)
		return err
	default:
		out.Solution, err = e.solver(e.a, b)
	}
	if err != nil {
		return err
	}
	out.Residual, err = linalg.Residual(e.a, out.Solution, b)
	return err
}

// Status is the terminal state shown in summaries and stored with the run.
func (o *Outcome) Status(err error) string {
	switch {
	case o.Root != nil:
		return o.Root.Status.String()
	case o.ODE != nil:
		for _, r := range o.ODE {
			if !r.Status.OK() {
				return r.Status.String()
			}
		}
		return numeric.StatusDone.String()
	case errors.Is(err, linalg.ErrZeroPivot):
		return "zero-pivot"
	case err != nil:
		return "error"
	default:
		return numeric.StatusDone.String()
	}
}

// Record flattens the outcome for storage.
func (o *Outcome) Record() (storage.RunMetadata, storage.Trace) {
	switch {
	case o.Root != nil:
		return storage.RootRun(o.Config, o.Root)
	case o.ODE != nil:
		return storage.ODERun(o.Config, o.ODE)
	case o.L != nil:
		meta, trace := storage.FactorRun(o.Config, o.L, o.U)
		if o.Solution != nil {
			meta.Summary = vectorSummary(o.Solution)
		}
		return meta, trace
	case o.Inverse != nil:
		return storage.MatrixRun(o.Config, o.Inverse, nil)
	case o.Solution != nil:
		meta, trace := storage.VectorRun(o.Config, "x", o.Solution)
		meta.Summary = map[string]float64{"residual": o.Residual}
		return meta, trace
	default:
		return storage.MatrixRun(o.Config, o.Matrix, map[string]float64{"det": o.Det})
	}
}

func vectorSummary(x []float64) map[string]float64 {
	m := make(map[string]float64, len(x))
	for i, v := range x {
		m[fmt.Sprintf("x%d", i+1)] = v
	}
	return m
}
