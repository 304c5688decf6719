package ode

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/san-kum/numsolve/internal/numeric"
)

// RunAll integrates the same problem with every stepper concurrently.
// Results keep the order of steppers. A run that stops on numeric
// instability keeps its partial trace and does not fail the batch; any other
// error is returned together with whatever results completed.
func RunAll(ctx context.Context, f numeric.Func2, steppers []Stepper, set Settings) ([]*Result, error) {
	results := make([]*Result, len(steppers))
	errs := make([]error, len(steppers))

	var wg sync.WaitGroup
	for i, s := range steppers {
		wg.Add(1)
		go func(idx int, s Stepper) {
			defer wg.Done()
			results[idx], errs[idx] = Integrate(ctx, f, s, set)
		}(i, s)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil && !errors.Is(err, numeric.ErrNumericInstability) {
			return results, fmt.Errorf("%s: %w", steppers[i].Name(), err)
		}
	}
	return results, nil
}

// DefaultHalvings is the number of step sizes CompareStepSizes tries: h, h/2, ..., h/16.
const DefaultHalvings = 5

// ComparisonRow holds the final y of every stepper for one step size.
type ComparisonRow struct {
	H      float64
	Steps  int
	Final  []float64
	Status []numeric.Status
}

// Comparison tabulates final values across successively halved step sizes.
type Comparison struct {
	Methods []string
	Rows    []ComparisonRow
}

// CompareStepSizes reruns RunAll with h/2^i for i in [0, levels). In fixed
// step mode the step count doubles with each halving so every row covers the
// same interval.
func CompareStepSizes(ctx context.Context, f numeric.Func2, steppers []Stepper, set Settings, levels int) (*Comparison, error) {
	if levels <= 0 {
		levels = DefaultHalvings
	}
	cmp := &Comparison{Methods: make([]string, len(steppers))}
	for i, s := range steppers {
		cmp.Methods[i] = s.Name()
	}

	for lvl := 0; lvl < levels; lvl++ {
		scaled := set
		scaled.H = set.H / math.Pow(2, float64(lvl))
		if set.fixed() {
			scaled.Steps = set.Steps << lvl
		}

		results, err := RunAll(ctx, f, steppers, scaled)
		if err != nil {
			return cmp, fmt.Errorf("h=%g: %w", scaled.H, err)
		}

		row := ComparisonRow{
			H:      scaled.H,
			Final:  make([]float64, len(results)),
			Status: make([]numeric.Status, len(results)),
		}
		for i, r := range results {
			row.Final[i] = r.Final().Y
			row.Status[i] = r.Status
			row.Steps = len(r.Trace) - 1
		}
		cmp.Rows = append(cmp.Rows, row)
	}
	return cmp, nil
}
