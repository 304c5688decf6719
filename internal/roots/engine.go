package roots

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/numsolve/internal/convergence"
	"github.com/san-kum/numsolve/internal/numeric"
)

// Find runs strategy s on p until the estimate converges, the strategy
// degenerates, or the iteration cap is reached.
//
// The returned result is non-nil once the settings validate. It carries the
// partial trace on failure; the error wraps numeric.ErrInvalidBracket,
// numeric.ErrDegenerate or numeric.ErrOracle. Reaching the iteration cap is
// not an error: the status is StatusMaxIterations and Root holds the last
// estimate. A degenerate or failed oracle iteration clears Root and HasRoot
// even when earlier records exist; cancellation keeps the last estimate.
func Find(ctx context.Context, s Strategy, p Problem, set Settings) (*Result, error) {
	if err := validate(p, set); err != nil {
		return nil, err
	}
	if p.DF == nil {
		p.DF = numeric.CentralDifference(p.F, numeric.DefaultDiffStep)
	}

	res := &Result{
		Method:  s.Method(),
		Columns: s.Columns(),
		Trace:   make([]Record, 0, min(set.MaxIterations, 64)),
	}

	state, err := s.Start(p)
	if err != nil {
		res.Status = numeric.StatusOf(err, numeric.StatusOracleError)
		return res, err
	}

	var tracker convergence.Tracker
	for i := 1; i <= set.MaxIterations; i++ {
		select {
		case <-ctx.Done():
			res.Status = numeric.StatusCanceled
			return res, ctx.Err()
		default:
		}

		step, err := s.Next(p, state)
		if err != nil {
			// a failed iteration leaves no root, whatever earlier ones estimated
			res.Root, res.HasRoot, res.Width = 0, false, 0
			res.Status = numeric.StatusOf(err, numeric.StatusOracleError)
			return res, fmt.Errorf("iteration %d: %w", i, err)
		}

		// zero estimates leave the sample undefined
		sample, _ := tracker.Update(step.X)
		res.Trace = append(res.Trace, Record{
			Iteration: i,
			Fields:    step.Fields,
			Estimate:  step.X,
			FEstimate: step.FX,
			Sample:    sample,
		})
		res.Root, res.HasRoot = step.X, true
		res.Width = step.Delta

		if math.Abs(step.FX) < set.Tolerance || step.Delta < set.Tolerance {
			res.Status = numeric.StatusConverged
			return res, nil
		}
		state = step.Next
	}

	res.Status = numeric.StatusMaxIterations
	return res, nil
}

func validate(p Problem, set Settings) error {
	if p.F == nil {
		return fmt.Errorf("%w: function oracle is nil", numeric.ErrInvalidSettings)
	}
	if !(set.Tolerance > 0) || math.IsInf(set.Tolerance, 0) {
		return fmt.Errorf("%w: tolerance must be positive, got %g", numeric.ErrInvalidSettings, set.Tolerance)
	}
	if set.MaxIterations <= 0 {
		return fmt.Errorf("%w: max iterations must be positive, got %d", numeric.ErrInvalidSettings, set.MaxIterations)
	}
	return nil
}
