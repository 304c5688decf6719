// Package convergence estimates approximate relative error and the number of
// significant digits that have stabilised between successive approximations.
package convergence

import (
	"math"
	"strconv"

	"github.com/san-kum/numsolve/internal/numeric"
)

// Digits is a significant-digit count. Negative values are sentinels.
type Digits int

const (
	// DigitsUnknown marks a sample without a previous estimate ("-").
	DigitsUnknown Digits = -1
	// DigitsExact marks a zero relative error ("∞").
	DigitsExact Digits = -2
)

func (d Digits) String() string {
	switch d {
	case DigitsUnknown:
		return "-"
	case DigitsExact:
		return "∞"
	default:
		return strconv.Itoa(int(d))
	}
}

// Sample is one convergence diagnostic.
type Sample struct {
	// ErrorPercent is |current-previous| / |current| * 100. Valid only when Defined.
	ErrorPercent float64
	Defined      bool
	Digits       Digits
}

// Tracker holds the previous estimate of one engine run.
type Tracker struct {
	prev    float64
	hasPrev bool
}

// Update records current and returns its diagnostic against the previous
// estimate. When current is zero the relative error is undefined: the
// returned sample is undefined and the error is numeric.ErrDivisionUndefined.
// The estimate is still recorded as the next reference.
func (t *Tracker) Update(current float64) (Sample, error) {
	prev, hasPrev := t.prev, t.hasPrev
	t.prev, t.hasPrev = current, true

	if !hasPrev {
		return Sample{Digits: DigitsUnknown}, nil
	}
	if current == 0 {
		return Sample{Digits: DigitsUnknown}, numeric.ErrDivisionUndefined
	}

	e := math.Abs(current-prev) / math.Abs(current) * 100
	return Sample{ErrorPercent: e, Defined: true, Digits: SignificantDigits(e)}, nil
}

// Reset forgets the previous estimate.
func (t *Tracker) Reset() {
	t.prev, t.hasPrev = 0, false
}

// SignificantDigits returns the Scarborough count for an approximate relative
// error given in percent: the number of thresholds 5, 0.5, 0.05, ... that e
// lies strictly below. Zero error yields DigitsExact.
func SignificantDigits(e float64) Digits {
	if e == 0 {
		return DigitsExact
	}
	if !(e < threshold(0)) {
		return 0
	}

	d := int(math.Ceil(-math.Log10(e / 5)))
	if d < 1 {
		d = 1
	}
	// log10 rounding can land one off the exact threshold comparison.
	for d > 1 && !(e < threshold(d-1)) {
		d--
	}
	for e < threshold(d) {
		d++
	}
	return Digits(d)
}

func threshold(d int) float64 {
	return 5 * math.Pow(10, -float64(d))
}
