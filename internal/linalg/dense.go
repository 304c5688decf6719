// Package linalg solves small dense linear systems by elimination: naive and
// partially pivoted Gauss, Doolittle LU without pivoting, and the inverse and
// determinant derived from LU.
package linalg

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
)

var (
	ErrZeroPivot         = errors.New("linalg: zero pivot")
	ErrNonSquare         = errors.New("linalg: matrix is not square")
	ErrDimensionMismatch = errors.New("linalg: dimension mismatch")
	ErrBadShape          = errors.New("linalg: invalid shape")
	ErrNaNInf            = errors.New("linalg: NaN or Inf entry")
)

const (
	opNew     = "NewDense"
	opMul     = "Mul"
	opLU      = "LU"
	opGauss   = "Gauss"
	opPivot   = "GaussPivot"
	opSolveLU = "SolveLU"
	opInverse = "Inverse"
	opDet     = "Determinant"
)

func linalgErrorf(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}

// Dense is a row-major r×c matrix.
type Dense struct {
	r, c int
	data []float64
}

func NewDense(r, c int) (*Dense, error) {
	if r <= 0 || c <= 0 {
		return nil, linalgErrorf(opNew, fmt.Errorf("%dx%d: %w", r, c, ErrBadShape))
	}
	return &Dense{r: r, c: c, data: make([]float64, r*c)}, nil
}

// NewDenseFrom copies rows into a new matrix. Rows must be non-empty, of equal
// length, and finite.
func NewDenseFrom(rows [][]float64) (*Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, linalgErrorf(opNew, fmt.Errorf("empty matrix: %w", ErrBadShape))
	}
	m, err := NewDense(len(rows), len(rows[0]))
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		if len(row) != m.c {
			return nil, linalgErrorf(opNew, fmt.Errorf("row %d has %d entries, want %d: %w", i, len(row), m.c, ErrBadShape))
		}
		for j, v := range row {
			if !isFinite(v) {
				return nil, linalgErrorf(opNew, fmt.Errorf("entry (%d,%d): %w", i, j, ErrNaNInf))
			}
		}
		copy(m.Row(i), row)
	}
	return m, nil
}

func Identity(n int) *Dense {
	m := &Dense{r: n, c: n, data: make([]float64, n*n)}
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1
	}
	return m
}

func (m *Dense) Rows() int { return m.r }
func (m *Dense) Cols() int { return m.c }

func (m *Dense) At(i, j int) float64 {
	m.check(i, j)
	return m.data[i*m.c+j]
}

func (m *Dense) Set(i, j int, v float64) {
	m.check(i, j)
	m.data[i*m.c+j] = v
}

func (m *Dense) check(i, j int) {
	if i < 0 || i >= m.r || j < 0 || j >= m.c {
		panic(fmt.Sprintf("linalg: index (%d,%d) out of range for %dx%d", i, j, m.r, m.c))
	}
}

// Row returns row i as a view into the backing slice.
func (m *Dense) Row(i int) []float64 {
	return m.data[i*m.c : (i+1)*m.c]
}

func (m *Dense) Clone() *Dense {
	return &Dense{r: m.r, c: m.c, data: append([]float64(nil), m.data...)}
}

// RawRows returns a copy of the matrix as a slice of rows.
func (m *Dense) RawRows() [][]float64 {
	out := make([][]float64, m.r)
	for i := range out {
		out[i] = append([]float64(nil), m.Row(i)...)
	}
	return out
}

func (m *Dense) Square() bool { return m.r == m.c }

func (m *Dense) swapRows(i, k int) {
	if i == k {
		return
	}
	ri, rk := m.Row(i), m.Row(k)
	for j := range ri {
		ri[j], rk[j] = rk[j], ri[j]
	}
}

func (m *Dense) String() string {
	var sb strings.Builder
	for i := 0; i < m.r; i++ {
		for j, v := range m.Row(i) {
			if j > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%10.6f", v)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Mul returns a·b.
func Mul(a, b *Dense) (*Dense, error) {
	if a.c != b.r {
		return nil, linalgErrorf(opMul, fmt.Errorf("%dx%d · %dx%d: %w", a.r, a.c, b.r, b.c, ErrDimensionMismatch))
	}
	out := &Dense{r: a.r, c: b.c, data: make([]float64, a.r*b.c)}
	col := make([]float64, b.r)
	for j := 0; j < b.c; j++ {
		for k := 0; k < b.r; k++ {
			col[k] = b.data[k*b.c+j]
		}
		for i := 0; i < a.r; i++ {
			out.data[i*b.c+j] = floats.Dot(a.Row(i), col)
		}
	}
	return out, nil
}

// MulVec returns a·x.
func MulVec(a *Dense, x []float64) ([]float64, error) {
	if a.c != len(x) {
		return nil, linalgErrorf(opMul, fmt.Errorf("%dx%d · %d: %w", a.r, a.c, len(x), ErrDimensionMismatch))
	}
	out := make([]float64, a.r)
	for i := range out {
		out[i] = floats.Dot(a.Row(i), x)
	}
	return out, nil
}

// Residual returns the max-norm of a·x - b.
func Residual(a *Dense, x, b []float64) (float64, error) {
	ax, err := MulVec(a, x)
	if err != nil {
		return 0, err
	}
	if len(b) != len(ax) {
		return 0, linalgErrorf(opMul, fmt.Errorf("rhs length %d, want %d: %w", len(b), len(ax), ErrDimensionMismatch))
	}
	return floats.Distance(ax, b, inf), nil
}
