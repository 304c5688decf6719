package roots

import (
	"fmt"
	"math"

	"github.com/san-kum/numsolve/internal/numeric"
)

var bracketColumns = []string{"a", "b", "f(a)", "f(b)"}

func startBracket(p Problem) (State, error) {
	a, b := p.Initial.A, p.Initial.B
	fa, err := p.F.Eval(a)
	if err != nil {
		return State{}, err
	}
	fb, err := p.F.Eval(b)
	if err != nil {
		return State{}, err
	}
	if !(fa*fb < 0) {
		return State{}, fmt.Errorf("%w: f(%g)=%g, f(%g)=%g", numeric.ErrInvalidBracket, a, fa, b, fb)
	}
	return State{A: a, B: b, FA: fa, FB: fb}, nil
}

// narrow keeps the half of the bracket where the sign of f changes.
func narrow(s State, c, fc float64) State {
	if s.FA*fc > 0 {
		s.A, s.FA = c, fc
	} else {
		s.B, s.FB = c, fc
	}
	return s
}

// BisectionStrategy halves the bracket around the midpoint each iteration.
type BisectionStrategy struct{}

func NewBisection() *BisectionStrategy {
	return &BisectionStrategy{}
}

func (b *BisectionStrategy) Method() Method    { return Bisection }
func (b *BisectionStrategy) Columns() []string { return bracketColumns }

func (b *BisectionStrategy) Start(p Problem) (State, error) {
	return startBracket(p)
}

func (b *BisectionStrategy) Next(p Problem, s State) (Step, error) {
	m := (s.A + s.B) / 2
	fm, err := p.F.Eval(m)
	if err != nil {
		return Step{}, err
	}
	return Step{
		Fields: []float64{s.A, s.B, s.FA, s.FB},
		X:      m,
		FX:     fm,
		Delta:  math.Abs(s.B - s.A),
		Next:   narrow(s, m, fm),
	}, nil
}

// FalsePositionStrategy replaces an endpoint with the secant line's x-intercept.
type FalsePositionStrategy struct{}

func NewFalsePosition() *FalsePositionStrategy {
	return &FalsePositionStrategy{}
}

func (f *FalsePositionStrategy) Method() Method    { return FalsePosition }
func (f *FalsePositionStrategy) Columns() []string { return bracketColumns }

func (f *FalsePositionStrategy) Start(p Problem) (State, error) {
	return startBracket(p)
}

func (f *FalsePositionStrategy) Next(p Problem, s State) (Step, error) {
	den := s.FB - s.FA
	if den == 0 {
		return Step{}, fmt.Errorf("%w: f(b)-f(a)=0 on [%g, %g]", numeric.ErrDegenerate, s.A, s.B)
	}
	c := (s.A*s.FB - s.B*s.FA) / den
	fc, err := p.F.Eval(c)
	if err != nil {
		return Step{}, err
	}
	return Step{
		Fields: []float64{s.A, s.B, s.FA, s.FB},
		X:      c,
		FX:     fc,
		Delta:  math.Abs(s.B - s.A),
		Next:   narrow(s, c, fc),
	}, nil
}
