package numeric

import (
	"errors"
	"fmt"
)

// Domain errors for engine invocations.
var (
	// ErrInvalidBracket indicates bracket endpoints that do not straddle a sign change.
	ErrInvalidBracket = errors.New("numeric: invalid bracket (f(a)*f(b) must be negative)")

	// ErrDegenerate indicates a required non-zero quantity (derivative, slope denominator) was zero.
	ErrDegenerate = errors.New("numeric: degenerate iteration (zero denominator)")

	// ErrOracle indicates the function evaluator failed or returned a non-finite value.
	ErrOracle = errors.New("numeric: oracle evaluation failed")

	// ErrNumericInstability indicates an ODE step produced a non-finite value.
	ErrNumericInstability = errors.New("numeric: numeric instability (NaN or Inf detected)")

	// ErrDivisionUndefined indicates a relative error requested against a zero estimate.
	ErrDivisionUndefined = errors.New("numeric: relative error undefined for zero estimate")

	// ErrInvalidSettings indicates a tolerance, iteration cap, or step size outside its valid range.
	ErrInvalidSettings = errors.New("numeric: invalid settings")
)

// OracleError wraps an oracle failure with the input that caused it.
type OracleError struct {
	X       float64
	Y       float64
	HasY    bool
	Wrapped error
}

func (e *OracleError) Error() string {
	if e.HasY {
		return fmt.Sprintf("%v at (x=%g, y=%g): %v", ErrOracle, e.X, e.Y, e.Wrapped)
	}
	return fmt.Sprintf("%v at x=%g: %v", ErrOracle, e.X, e.Wrapped)
}

// Unwrap exposes both ErrOracle and the evaluator's own error.
func (e *OracleError) Unwrap() []error {
	if e.Wrapped == nil {
		return []error{ErrOracle}
	}
	return []error{ErrOracle, e.Wrapped}
}

// StepError wraps an ODE stepping failure with the step that produced it.
type StepError struct {
	Step    int
	X       float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (x=%.6g): %v", e.Step, e.X, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
