package ode

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/numsolve/internal/numeric"
)

// MaxSteps bounds a single integration run.
const MaxSteps = 10_000_000

// Point is one entry of an integration trace. Index 0 is the initial condition.
type Point struct {
	Index int     `json:"index"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// Settings selects the initial condition and how far to step. With Steps > 0
// exactly Steps steps of size H are taken; otherwise the run stops at XEnd,
// shortening the last step so the final point lands on XEnd exactly.
type Settings struct {
	X0    float64 `json:"x0" yaml:"x0"`
	Y0    float64 `json:"y0" yaml:"y0"`
	H     float64 `json:"h" yaml:"h"`
	Steps int     `json:"steps" yaml:"steps"`
	XEnd  float64 `json:"x_end" yaml:"x_end"`
}

func (s Settings) fixed() bool { return s.Steps > 0 }

// Validate checks the step size and the stopping rule.
func (s Settings) Validate() error {
	if s.H == 0 || !numeric.IsFinite(s.H) {
		return fmt.Errorf("%w: step size must be non-zero and finite, got %g", numeric.ErrInvalidSettings, s.H)
	}
	if !numeric.IsFinite(s.X0) || !numeric.IsFinite(s.Y0) {
		return fmt.Errorf("%w: initial condition must be finite", numeric.ErrInvalidSettings)
	}
	if s.Steps < 0 {
		return fmt.Errorf("%w: steps must not be negative, got %d", numeric.ErrInvalidSettings, s.Steps)
	}
	if s.fixed() {
		if s.Steps > MaxSteps {
			return fmt.Errorf("%w: %d steps exceeds the limit of %d", numeric.ErrInvalidSettings, s.Steps, MaxSteps)
		}
		return nil
	}
	if s.H < 0 {
		return fmt.Errorf("%w: stepping to x_end needs a positive step size", numeric.ErrInvalidSettings)
	}
	if !(s.XEnd > s.X0) || math.IsInf(s.XEnd, 0) {
		return fmt.Errorf("%w: x_end (%g) must be greater than x0 (%g) when steps is 0", numeric.ErrInvalidSettings, s.XEnd, s.X0)
	}
	if n := math.Ceil((s.XEnd - s.X0) / s.H); n > MaxSteps {
		return fmt.Errorf("%w: %.0f steps exceeds the limit of %d", numeric.ErrInvalidSettings, n, MaxSteps)
	}
	return nil
}

// Result is the outcome of one integration run.
type Result struct {
	Method string
	H      float64
	Trace  []Point
	Status numeric.Status
}

// Final returns the last point of the trace.
func (r *Result) Final() Point {
	if len(r.Trace) == 0 {
		return Point{}
	}
	return r.Trace[len(r.Trace)-1]
}

func (r *Result) Xs() []float64 {
	xs := make([]float64, len(r.Trace))
	for i, p := range r.Trace {
		xs[i] = p.X
	}
	return xs
}

func (r *Result) Ys() []float64 {
	ys := make([]float64, len(r.Trace))
	for i, p := range r.Trace {
		ys[i] = p.Y
	}
	return ys
}

// snap is the relative distance below which a grid point counts as XEnd.
const snap = 1e-9

// Integrate steps y from (X0, Y0) with s and returns the trace. A non-finite
// rate or state stops the run with StatusNumericInstability and the points
// computed so far; evaluator failures stop it with StatusOracleError.
func Integrate(ctx context.Context, f numeric.Func2, s Stepper, set Settings) (*Result, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: rate oracle is nil", numeric.ErrInvalidSettings)
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}

	capacity := set.Steps + 1
	if !set.fixed() {
		capacity = int(math.Ceil((set.XEnd-set.X0)/set.H)) + 1
	}
	res := &Result{
		Method: s.Name(),
		H:      set.H,
		Trace:  make([]Point, 0, min(capacity, 4096)),
	}

	x, y := set.X0, set.Y0
	res.Trace = append(res.Trace, Point{Index: 0, X: x, Y: y})

	for i := 1; ; i++ {
		if set.fixed() && i > set.Steps {
			break
		}
		if !set.fixed() && x >= set.XEnd {
			break
		}

		select {
		case <-ctx.Done():
			res.Status = numeric.StatusCanceled
			return res, ctx.Err()
		default:
		}

		// grid points are x0 + i*h so rounding does not accumulate
		h, next := set.H, set.X0+float64(i)*set.H
		if !set.fixed() && (next > set.XEnd || math.Abs(next-set.XEnd) <= snap*math.Max(1, math.Abs(set.XEnd))) {
			h, next = set.XEnd-x, set.XEnd
		}

		yNext, err := s.Step(f, x, y, h)
		if err == nil && !numeric.IsFinite(yNext) {
			err = numeric.ErrNumericInstability
		}
		if err != nil {
			if errors.Is(err, numeric.ErrNumericInstability) {
				res.Status = numeric.StatusNumericInstability
			} else {
				res.Status = numeric.StatusOf(err, numeric.StatusOracleError)
			}
			return res, &numeric.StepError{Step: i, X: x, Wrapped: err}
		}

		x, y = next, yNext
		res.Trace = append(res.Trace, Point{Index: i, X: x, Y: y})
	}

	res.Status = numeric.StatusDone
	return res, nil
}
