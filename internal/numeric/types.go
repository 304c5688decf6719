package numeric

import (
	"context"
	"errors"
	"math"

	"gonum.org/v1/gonum/diff/fd"
)

// DefaultDiffStep is the central-difference step used when no derivative is supplied.
const DefaultDiffStep = 1e-6

// Func is a scalar oracle mapping x to f(x).
type Func func(x float64) (float64, error)

// Eval calls f and converts evaluator failures and non-finite results into
// an *OracleError.
func (f Func) Eval(x float64) (float64, error) {
	v, err := f(x)
	if err != nil {
		return 0, &OracleError{X: x, Wrapped: err}
	}
	if !IsFinite(v) {
		return 0, &OracleError{X: x, Wrapped: errNonFinite(v)}
	}
	return v, nil
}

// Func2 is a bivariate rate oracle mapping (x, y) to dy/dx.
type Func2 func(x, y float64) (float64, error)

// Eval calls f and wraps evaluator failures in an *OracleError. Non-finite
// results are reported as ErrNumericInstability so the ODE engine can stop
// with a partial trace.
func (f Func2) Eval(x, y float64) (float64, error) {
	v, err := f(x, y)
	if err != nil {
		return 0, &OracleError{X: x, Y: y, HasY: true, Wrapped: err}
	}
	if !IsFinite(v) {
		return v, ErrNumericInstability
	}
	return v, nil
}

// Scalar adapts a plain float function into a Func.
func Scalar(f func(float64) float64) Func {
	return func(x float64) (float64, error) { return f(x), nil }
}

// Rate adapts a plain bivariate function into a Func2.
func Rate(f func(x, y float64) float64) Func2 {
	return func(x, y float64) (float64, error) { return f(x, y), nil }
}

// CentralDifference returns a derivative oracle approximating f'(x) by
// (f(x+h) - f(x-h)) / 2h.
func CentralDifference(f Func, step float64) Func {
	if step <= 0 {
		step = DefaultDiffStep
	}
	settings := &fd.Settings{Formula: fd.Central, Step: step}
	return func(x float64) (float64, error) {
		var evalErr error
		d := fd.Derivative(func(x float64) float64 {
			v, err := f.Eval(x)
			if err != nil && evalErr == nil {
				evalErr = err
			}
			return v
		}, x, settings)
		if evalErr != nil {
			return 0, evalErr
		}
		return d, nil
	}
}

// IsFinite reports whether v is neither NaN nor ±Inf.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func errNonFinite(v float64) error {
	if math.IsNaN(v) {
		return errors.New("result is NaN")
	}
	return errors.New("result overflowed to Inf")
}

// Status is the terminal state of one engine invocation.
type Status int

const (
	StatusConverged Status = iota
	StatusMaxIterations
	StatusDegenerate
	StatusInvalidBracket
	StatusOracleError
	StatusDone
	StatusNumericInstability
	StatusCanceled
)

var statusNames = map[Status]string{
	StatusConverged:          "converged",
	StatusMaxIterations:      "max-iterations-reached",
	StatusDegenerate:         "degenerate",
	StatusInvalidBracket:     "invalid-bracket",
	StatusOracleError:        "oracle-error",
	StatusDone:               "done",
	StatusNumericInstability: "numeric-instability",
	StatusCanceled:           "canceled",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// OK reports whether the status carries a usable final value.
func (s Status) OK() bool {
	return s == StatusConverged || s == StatusMaxIterations || s == StatusDone
}

// StatusOf maps an engine error to its status. A nil error maps to fallback.
func StatusOf(err error, fallback Status) Status {
	switch {
	case err == nil:
		return fallback
	case errors.Is(err, ErrInvalidBracket):
		return StatusInvalidBracket
	case errors.Is(err, ErrDegenerate):
		return StatusDegenerate
	case errors.Is(err, ErrNumericInstability):
		return StatusNumericInstability
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return StatusCanceled
	default:
		return StatusOracleError
	}
}
