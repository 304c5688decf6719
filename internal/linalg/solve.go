package linalg

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

var inf = math.Inf(1)

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func requireSquare(op string, a *Dense) error {
	if !a.Square() {
		return linalgErrorf(op, fmt.Errorf("%dx%d: %w", a.r, a.c, ErrNonSquare))
	}
	return nil
}

func requireSystem(op string, a *Dense, b []float64) error {
	if err := requireSquare(op, a); err != nil {
		return err
	}
	if len(b) != a.r {
		return linalgErrorf(op, fmt.Errorf("rhs length %d, want %d: %w", len(b), a.r, ErrDimensionMismatch))
	}
	for i, v := range b {
		if !isFinite(v) {
			return linalgErrorf(op, fmt.Errorf("rhs entry %d: %w", i, ErrNaNInf))
		}
	}
	return nil
}

func zeroPivot(op string, i int) error {
	return linalgErrorf(op, fmt.Errorf("pivot %d: %w", i, ErrZeroPivot))
}

// eliminate clears column i below the diagonal of u. When l is non-nil the
// multipliers are stored there; when b is non-nil the same row operations are
// applied to it.
func eliminate(u, l *Dense, b []float64, i int) {
	pivotRow := u.Row(i)[i:]
	for j := i + 1; j < u.r; j++ {
		row := u.Row(j)
		factor := row[i] / pivotRow[0]
		if l != nil {
			l.Set(j, i, factor)
		}
		floats.AddScaled(row[i:], -factor, pivotRow)
		row[i] = 0
		if b != nil {
			b[j] -= factor * b[i]
		}
	}
}

// backSubstitute solves u·x = y for upper-triangular u.
func backSubstitute(op string, u *Dense, y []float64) ([]float64, error) {
	n := u.r
	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		row := u.Row(i)
		if row[i] == 0 {
			return nil, zeroPivot(op, i)
		}
		x[i] = (y[i] - floats.Dot(row[i+1:], x[i+1:])) / row[i]
	}
	return x, nil
}

// forwardSubstitute solves l·z = b for lower-triangular l.
func forwardSubstitute(op string, l *Dense, b []float64) ([]float64, error) {
	n := l.r
	z := make([]float64, n)
	for i := 0; i < n; i++ {
		row := l.Row(i)
		if row[i] == 0 {
			return nil, zeroPivot(op, i)
		}
		z[i] = (b[i] - floats.Dot(row[:i], z[:i])) / row[i]
	}
	return z, nil
}

// LU factors a into a unit lower-triangular L and an upper-triangular U with
// Doolittle elimination. No rows are exchanged: a zero pivot in any column
// that still has entries below it fails with ErrZeroPivot. A zero in the last
// diagonal entry is left in U, so a singular matrix only fails here when its
// zero lands in an elimination column: [[1,2],[2,4]] factors without error.
// Determinant and SolveLU still see that zero.
func LU(a *Dense) (l, u *Dense, err error) {
	if err := requireSquare(opLU, a); err != nil {
		return nil, nil, err
	}
	n := a.r
	u = a.Clone()
	l = Identity(n)
	for i := 0; i < n-1; i++ {
		if u.At(i, i) == 0 {
			return nil, nil, zeroPivot(opLU, i)
		}
		eliminate(u, l, nil, i)
	}
	return l, u, nil
}

// Gauss solves a·x = b by forward elimination without row exchanges followed
// by back substitution. a and b are not modified.
func Gauss(a *Dense, b []float64) ([]float64, error) {
	if err := requireSystem(opGauss, a, b); err != nil {
		return nil, err
	}
	u, y := a.Clone(), append([]float64(nil), b...)
	for i := 0; i < u.r-1; i++ {
		if u.At(i, i) == 0 {
			return nil, zeroPivot(opGauss, i)
		}
		eliminate(u, nil, y, i)
	}
	return backSubstitute(opGauss, u, y)
}

// GaussPivot solves a·x = b with partial pivoting: before eliminating column
// i the row with the largest |a[k][i]|, k >= i, is swapped into place. Ties
// keep the topmost row. a and b are not modified.
func GaussPivot(a *Dense, b []float64) ([]float64, error) {
	if err := requireSystem(opPivot, a, b); err != nil {
		return nil, err
	}
	u, y := a.Clone(), append([]float64(nil), b...)
	n := u.r
	for i := 0; i < n-1; i++ {
		best := i
		for k := i + 1; k < n; k++ {
			if math.Abs(u.At(k, i)) > math.Abs(u.At(best, i)) {
				best = k
			}
		}
		if u.At(best, i) == 0 {
			return nil, zeroPivot(opPivot, i)
		}
		u.swapRows(i, best)
		y[i], y[best] = y[best], y[i]
		eliminate(u, nil, y, i)
	}
	return backSubstitute(opPivot, u, y)
}

// SolveLU solves L·U·x = b by forward then back substitution.
func SolveLU(l, u *Dense, b []float64) ([]float64, error) {
	if err := requireSystem(opSolveLU, l, b); err != nil {
		return nil, err
	}
	if u.r != l.r || u.c != l.c {
		return nil, linalgErrorf(opSolveLU, fmt.Errorf("L is %dx%d, U is %dx%d: %w", l.r, l.c, u.r, u.c, ErrDimensionMismatch))
	}
	z, err := forwardSubstitute(opSolveLU, l, b)
	if err != nil {
		return nil, err
	}
	return backSubstitute(opSolveLU, u, z)
}

// Inverse computes a⁻¹ column by column from one LU factorization, solving
// a·xᵢ = eᵢ for each unit vector eᵢ.
func Inverse(a *Dense) (*Dense, error) {
	l, u, err := LU(a)
	if err != nil {
		return nil, linalgErrorf(opInverse, err)
	}
	n := a.r
	inv := &Dense{r: n, c: n, data: make([]float64, n*n)}
	e := make([]float64, n)
	for col := 0; col < n; col++ {
		for i := range e {
			e[i] = 0
		}
		e[col] = 1
		x, err := SolveLU(l, u, e)
		if err != nil {
			return nil, linalgErrorf(opInverse, err)
		}
		for i, v := range x {
			inv.data[i*n+col] = v
		}
	}
	return inv, nil
}

// Determinant returns the product of U's diagonal from LU(a). A matrix whose
// only zero pivot is the last one has determinant 0; a zero pivot earlier
// cannot be factored without row exchanges and fails with ErrZeroPivot.
func Determinant(a *Dense) (float64, error) {
	_, u, err := LU(a)
	if err != nil {
		return 0, linalgErrorf(opDet, err)
	}
	det := 1.0
	for i := 0; i < u.r; i++ {
		det *= u.At(i, i)
	}
	return det, nil
}
