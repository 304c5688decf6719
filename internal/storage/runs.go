package storage

import (
	"math"
	"strconv"

	"github.com/san-kum/numsolve/internal/config"
	"github.com/san-kum/numsolve/internal/linalg"
	"github.com/san-kum/numsolve/internal/ode"
	"github.com/san-kum/numsolve/internal/roots"
)

// RootRun flattens a root-finding result. Undefined relative errors are NaN.
func RootRun(cfg *config.Config, res *roots.Result) (RunMetadata, Trace) {
	meta := RunMetadata{
		Kind:     config.KindRoot,
		Method:   string(res.Method),
		Function: cfg.Function,
		Status:   res.Status.String(),
		Summary:  map[string]float64{"iterations": float64(res.Iterations())},
		Config:   cfg.Clone(),
	}
	if res.HasRoot {
		meta.Summary["root"] = res.Root
		meta.Summary["width"] = res.Width
	}

	cols := append([]string{"iteration"}, res.Columns...)
	trace := Trace{Columns: append(cols, "estimate", "f_estimate", "error_percent", "digits")}
	for _, rec := range res.Trace {
		row := []float64{float64(rec.Iteration)}
		row = append(row, rec.Fields...)
		errPct, digits := math.NaN(), math.NaN()
		if rec.Sample.Defined {
			errPct = rec.Sample.ErrorPercent
		}
		if rec.Sample.Digits >= 0 {
			digits = float64(rec.Sample.Digits)
		}
		trace.Rows = append(trace.Rows, append(row, rec.Estimate, rec.FEstimate, errPct, digits))
	}
	return meta, trace
}

// ODERun stores one or more runs of the same problem side by side, one y
// column per method. The x column follows the longest run.
func ODERun(cfg *config.Config, results []*ode.Result) (RunMetadata, Trace) {
	meta := RunMetadata{
		Kind:     config.KindODE,
		Method:   cfg.Method,
		Function: cfg.Function,
		Summary:  map[string]float64{},
		Config:   cfg.Clone(),
	}

	trace := Trace{Columns: []string{"step", "x"}}
	longest := 0
	for i, r := range results {
		trace.Columns = append(trace.Columns, r.Method)
		if len(r.Trace) > len(results[longest].Trace) {
			longest = i
		}
		if r.Status.OK() {
			meta.Summary[r.Method] = r.Final().Y
		}
	}
	if len(results) == 0 {
		return meta, trace
	}

	// one status for the file: the worst of the runs
	meta.Status = results[0].Status.String()
	for _, r := range results {
		if !r.Status.OK() {
			meta.Status = r.Status.String()
			break
		}
	}
	if len(results) == 1 {
		meta.Method = results[0].Method
	}

	for i, p := range results[longest].Trace {
		row := []float64{float64(i), p.X}
		for _, r := range results {
			if i < len(r.Trace) {
				row = append(row, r.Trace[i].Y)
			} else {
				row = append(row, math.NaN())
			}
		}
		trace.Rows = append(trace.Rows, row)
	}
	return meta, trace
}

// VectorRun stores a solution vector as (i, value) rows.
func VectorRun(cfg *config.Config, name string, x []float64) (RunMetadata, Trace) {
	meta := RunMetadata{Kind: config.KindLinear, Method: cfg.Method, Status: "done", Config: cfg.Clone()}
	trace := Trace{Columns: []string{"i", name}}
	for i, v := range x {
		trace.Rows = append(trace.Rows, []float64{float64(i + 1), v})
	}
	return meta, trace
}

// MatrixRun stores a matrix row by row. summary carries scalars such as
// the determinant.
func MatrixRun(cfg *config.Config, m *linalg.Dense, summary map[string]float64) (RunMetadata, Trace) {
	meta := RunMetadata{Kind: config.KindLinear, Method: cfg.Method, Status: "done", Summary: summary, Config: cfg.Clone()}
	trace := Trace{Columns: make([]string, m.Cols())}
	for j := range trace.Columns {
		trace.Columns[j] = "c" + strconv.Itoa(j+1)
	}
	for i := 0; i < m.Rows(); i++ {
		trace.Rows = append(trace.Rows, append([]float64(nil), m.Row(i)...))
	}
	return meta, trace
}

// FactorRun stores an LU factorization as one row per matrix row: the L
// entries followed by the U entries.
func FactorRun(cfg *config.Config, l, u *linalg.Dense) (RunMetadata, Trace) {
	meta := RunMetadata{Kind: config.KindLinear, Method: cfg.Method, Status: "done", Config: cfg.Clone()}
	n := l.Cols()
	trace := Trace{Columns: make([]string, 0, 2*n)}
	for j := 1; j <= n; j++ {
		trace.Columns = append(trace.Columns, "l"+strconv.Itoa(j))
	}
	for j := 1; j <= n; j++ {
		trace.Columns = append(trace.Columns, "u"+strconv.Itoa(j))
	}
	for i := 0; i < l.Rows(); i++ {
		row := append([]float64(nil), l.Row(i)...)
		trace.Rows = append(trace.Rows, append(row, u.Row(i)...))
	}
	return meta, trace
}
