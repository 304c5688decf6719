package roots

import (
	"fmt"
	"math"

	"github.com/san-kum/numsolve/internal/numeric"
)

// NewtonStrategy follows the tangent line: x1 = x0 - f(x0)/f'(x0).
type NewtonStrategy struct{}

func NewNewton() *NewtonStrategy {
	return &NewtonStrategy{}
}

func (n *NewtonStrategy) Method() Method { return NewtonRaphson }
func (n *NewtonStrategy) Columns() []string {
	return []string{"x0", "f(x0)", "f'(x0)"}
}

func (n *NewtonStrategy) Start(p Problem) (State, error) {
	fx, err := p.F.Eval(p.Initial.X0)
	if err != nil {
		return State{}, err
	}
	return State{A: p.Initial.X0, FA: fx}, nil
}

func (n *NewtonStrategy) Next(p Problem, s State) (Step, error) {
	x0, fx0 := s.A, s.FA
	dfx0, err := p.DF.Eval(x0)
	if err != nil {
		return Step{}, err
	}
	if dfx0 == 0 {
		return Step{}, fmt.Errorf("%w: f'(x)=0 at x=%g", numeric.ErrDegenerate, x0)
	}
	x1 := x0 - fx0/dfx0
	fx1, err := p.F.Eval(x1)
	if err != nil {
		return Step{}, err
	}
	return Step{
		Fields: []float64{x0, fx0, dfx0},
		X:      x1,
		FX:     fx1,
		Delta:  math.Abs(x1 - x0),
		Next:   State{A: x1, FA: fx1},
	}, nil
}

// SecantStrategy replaces the derivative with the slope through the last two iterates.
type SecantStrategy struct{}

func NewSecant() *SecantStrategy {
	return &SecantStrategy{}
}

func (sc *SecantStrategy) Method() Method { return Secant }
func (sc *SecantStrategy) Columns() []string {
	return []string{"x0", "x1", "f(x0)", "f(x1)"}
}

func (sc *SecantStrategy) Start(p Problem) (State, error) {
	f0, err := p.F.Eval(p.Initial.X0)
	if err != nil {
		return State{}, err
	}
	f1, err := p.F.Eval(p.Initial.X1)
	if err != nil {
		return State{}, err
	}
	return State{A: p.Initial.X0, B: p.Initial.X1, FA: f0, FB: f1}, nil
}

func (sc *SecantStrategy) Next(p Problem, s State) (Step, error) {
	x0, x1, f0, f1 := s.A, s.B, s.FA, s.FB
	den := f1 - f0
	if den == 0 {
		return Step{}, fmt.Errorf("%w: f(x1)-f(x0)=0 at x0=%g, x1=%g", numeric.ErrDegenerate, x0, x1)
	}
	x2 := x1 - f1*(x1-x0)/den
	f2, err := p.F.Eval(x2)
	if err != nil {
		return Step{}, err
	}
	return Step{
		Fields: []float64{x0, x1, f0, f1},
		X:      x2,
		FX:     f2,
		Delta:  math.Abs(x2 - x1),
		Next:   State{A: x1, B: x2, FA: f1, FB: f2},
	}, nil
}
