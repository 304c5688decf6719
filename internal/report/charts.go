package report

import (
	"math"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/numsolve/internal/ode"
	"github.com/san-kum/numsolve/internal/roots"
)

const (
	chartWidth  = 70
	chartHeight = 12
)

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.Red, asciigraph.Blue, asciigraph.Green, asciigraph.Magenta,
	asciigraph.Cyan, asciigraph.Yellow,
}

// ConvergenceChart plots the estimate at each iteration.
func ConvergenceChart(res *roots.Result) string {
	if len(res.Trace) == 0 {
		return ""
	}
	data := make([]float64, len(res.Trace))
	for i, rec := range res.Trace {
		data[i] = rec.Estimate
	}
	return asciigraph.Plot(data,
		asciigraph.Height(chartHeight),
		asciigraph.Width(chartWidth),
		asciigraph.Precision(6),
		asciigraph.Caption("estimate per iteration ("+string(res.Method)+")"),
	)
}

// ErrorChart plots log10 of the approximate relative error. Iterations with
// no defined or a zero error are skipped.
func ErrorChart(res *roots.Result) string {
	data := make([]float64, 0, len(res.Trace))
	for _, rec := range res.Trace {
		if rec.Sample.Defined && rec.Sample.ErrorPercent > 0 {
			data = append(data, math.Log10(rec.Sample.ErrorPercent))
		}
	}
	if len(data) < 2 {
		return ""
	}
	return asciigraph.Plot(data,
		asciigraph.Height(chartHeight/2),
		asciigraph.Width(chartWidth),
		asciigraph.Caption("log10(error %)"),
	)
}

// ODEChart overlays y(x) for several runs. Runs that stopped early are
// padded with their last value so the series share one x axis.
func ODEChart(results []*ode.Result) string {
	n := 0
	for _, r := range results {
		n = max(n, len(r.Trace))
	}
	if n < 2 {
		return ""
	}

	series := make([][]float64, 0, len(results))
	legends := make([]string, 0, len(results))
	for _, r := range results {
		ys := r.Ys()
		if len(ys) == 0 {
			continue
		}
		for len(ys) < n {
			ys = append(ys, ys[len(ys)-1])
		}
		series = append(series, ys)
		legends = append(legends, r.Method)
	}

	colors := seriesColors
	if len(series) < len(colors) {
		colors = colors[:len(series)]
	}
	return asciigraph.PlotMany(series,
		asciigraph.Height(chartHeight),
		asciigraph.Width(chartWidth),
		asciigraph.Precision(4),
		asciigraph.SeriesColors(colors...),
		asciigraph.SeriesLegends(legends...),
		asciigraph.Caption("y(x)"),
	)
}
