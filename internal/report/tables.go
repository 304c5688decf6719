package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/san-kum/numsolve/internal/linalg"
	"github.com/san-kum/numsolve/internal/ode"
	"github.com/san-kum/numsolve/internal/roots"
)

func render(headers []string, rows [][]string) string {
	last := len(rows) - 1
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(border).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerCell
			case row == last:
				return lastCell
			default:
				return cell
			}
		}).
		Headers(headers...).
		Rows(rows...)
	return t.String()
}

// Table renders any header/rows pair in the shared style.
func Table(headers []string, rows [][]string) string {
	return render(headers, rows)
}

// RootHeaders names the trace columns for a root-finding result.
func RootHeaders(res *roots.Result) []string {
	h := []string{"iter"}
	h = append(h, res.Columns...)
	return append(h, "estimate", "f(estimate)", "error %", "sig digits")
}

// RootRows formats every trace record.
func RootRows(res *roots.Result) [][]string {
	rows := make([][]string, 0, len(res.Trace))
	for _, rec := range res.Trace {
		row := []string{strconv.Itoa(rec.Iteration)}
		for _, f := range rec.Fields {
			row = append(row, Num(f))
		}
		errCell := "-"
		if rec.Sample.Defined {
			errCell = strconv.FormatFloat(rec.Sample.ErrorPercent, 'f', 6, 64)
		}
		row = append(row, Num(rec.Estimate), Sci(rec.FEstimate), errCell, rec.Sample.Digits.String())
		rows = append(rows, row)
	}
	return rows
}

func RootTable(res *roots.Result) string {
	return render(RootHeaders(res), RootRows(res))
}

// RootSummary is the block printed under a root-finding table.
func RootSummary(res *roots.Result) string {
	lines := []string{
		KV("method", res.Method),
		Label.Render("status:") + " " + Status(res.Status),
		KV("iterations", res.Iterations()),
	}
	if res.HasRoot {
		lines = append(lines, KV("root", Sci(res.Root)), KV("width", Sci(res.Width)))
	} else {
		lines = append(lines, KV("root", "none"))
	}
	return strings.Join(lines, "\n")
}

func ODEHeaders() []string { return []string{"step", "x", "y"} }

func ODERows(res *ode.Result) [][]string {
	rows := make([][]string, 0, len(res.Trace))
	for _, p := range res.Trace {
		rows = append(rows, []string{strconv.Itoa(p.Index), Num(p.X), Num(p.Y)})
	}
	return rows
}

// ODECompareHeaders and ODECompareRows line several runs of the same problem
// up by step index. Runs that stopped early leave their cells blank.
func ODECompareHeaders(results []*ode.Result) []string {
	h := []string{"step", "x"}
	for _, r := range results {
		h = append(h, r.Method)
	}
	return h
}

func ODECompareRows(results []*ode.Result) [][]string {
	n, longest := 0, 0
	for i, r := range results {
		if len(r.Trace) > n {
			n, longest = len(r.Trace), i
		}
	}
	rows := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		p := results[longest].Trace[i]
		row := []string{strconv.Itoa(i), Num(p.X)}
		for _, r := range results {
			if i < len(r.Trace) {
				row = append(row, Num(r.Trace[i].Y))
			} else {
				row = append(row, "")
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// StepSizeTable shows the final y per method for each halved step size.
func StepSizeTable(cmp *ode.Comparison) string {
	headers := append([]string{"h", "steps"}, cmp.Methods...)
	rows := make([][]string, 0, len(cmp.Rows))
	for _, r := range cmp.Rows {
		row := []string{strconv.FormatFloat(r.H, 'f', 5, 64), strconv.Itoa(r.Steps)}
		for i, v := range r.Final {
			if r.Status[i].OK() {
				row = append(row, strconv.FormatFloat(v, 'f', 5, 64))
			} else {
				row = append(row, r.Status[i].String())
			}
		}
		rows = append(rows, row)
	}
	return render(headers, rows)
}

// MatrixTable renders m with 1-based row and column labels.
func MatrixTable(m *linalg.Dense) string {
	headers := []string{""}
	for j := 0; j < m.Cols(); j++ {
		headers = append(headers, fmt.Sprintf("c%d", j+1))
	}
	rows := make([][]string, m.Rows())
	for i := range rows {
		row := []string{fmt.Sprintf("r%d", i+1)}
		for _, v := range m.Row(i) {
			row = append(row, Num(v))
		}
		rows[i] = row
	}
	return plain(headers, rows)
}

// VectorTable renders x as x1 = ..., x2 = ...
func VectorTable(name string, x []float64) string {
	rows := make([][]string, len(x))
	for i, v := range x {
		rows[i] = []string{fmt.Sprintf("%s%d", name, i+1), Num(v)}
	}
	return plain([]string{"", "value"}, rows)
}

func plain(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(border).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow || col == 0 {
				return headerCell
			}
			return cell
		}).
		Headers(headers...).
		Rows(rows...)
	return t.String()
}
