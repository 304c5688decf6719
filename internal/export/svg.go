// Package export writes solver traces as standalone SVG charts.
package export

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/san-kum/numsolve/internal/numeric"
	"github.com/san-kum/numsolve/internal/ode"
	"github.com/san-kum/numsolve/internal/roots"
)

var palette = []string{"#00ff88", "#00ccff", "#ffaa00", "#ff66cc", "#ff4444", "#aaaaff"}

type Point struct {
	X, Y float64
}

// Series is one polyline. Marker series are drawn as dots instead.
type Series struct {
	Name   string
	Points []Point
	Marker bool
}

// ODESeries turns each run into a y(x) series.
func ODESeries(results []*ode.Result) []Series {
	out := make([]Series, 0, len(results))
	for _, r := range results {
		s := Series{Name: r.Method, Points: make([]Point, len(r.Trace))}
		for i, p := range r.Trace {
			s.Points[i] = Point{p.X, p.Y}
		}
		out = append(out, s)
	}
	return out
}

// ConvergenceSeries plots the estimate against the iteration number.
func ConvergenceSeries(res *roots.Result) Series {
	s := Series{Name: string(res.Method), Points: make([]Point, len(res.Trace))}
	for i, rec := range res.Trace {
		s.Points[i] = Point{float64(rec.Iteration), rec.Estimate}
	}
	return s
}

// FunctionSeries samples f at n+1 evenly spaced points on [a, b]. Points where
// the oracle fails are dropped.
func FunctionSeries(name string, f numeric.Func, a, b float64, n int) Series {
	if n < 1 {
		n = 1
	}
	s := Series{Name: name, Points: make([]Point, 0, n+1)}
	for i := 0; i <= n; i++ {
		x := a + (b-a)*float64(i)/float64(n)
		y, err := f.Eval(x)
		if err != nil {
			continue
		}
		s.Points = append(s.Points, Point{x, y})
	}
	return s
}

// RootMarkers marks each iteration's estimate on the x axis of a function plot.
func RootMarkers(res *roots.Result) Series {
	s := Series{Name: "estimates", Marker: true, Points: make([]Point, len(res.Trace))}
	for i, rec := range res.Trace {
		s.Points[i] = Point{rec.Estimate, rec.FEstimate}
	}
	return s
}

type bounds struct {
	minX, maxX, minY, maxY float64
}

func (b bounds) project(p Point, width, height int) (float64, float64) {
	x := (p.X - b.minX) / (b.maxX - b.minX) * float64(width)
	y := float64(height) - (p.Y-b.minY)/(b.maxY-b.minY)*float64(height)
	return x, y
}

func findBounds(series []Series) (bounds, bool) {
	b := bounds{math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)}
	found := false
	for _, s := range series {
		for _, p := range s.Points {
			if !numeric.IsFinite(p.X) || !numeric.IsFinite(p.Y) {
				continue
			}
			b.minX, b.maxX = math.Min(b.minX, p.X), math.Max(b.maxX, p.X)
			b.minY, b.maxY = math.Min(b.minY, p.Y), math.Max(b.maxY, p.Y)
			found = true
		}
	}
	if !found {
		return b, false
	}

	// Add padding
	rangeX, rangeY := b.maxX-b.minX, b.maxY-b.minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	b.minX -= rangeX * 0.05
	b.maxX += rangeX * 0.05
	b.minY -= rangeY * 0.1
	b.maxY += rangeY * 0.1
	return b, true
}

// Chart renders the series on one set of axes. It returns "" when there is
// nothing finite to draw.
func Chart(title string, series []Series, width, height int) string {
	b, ok := findBounds(series)
	if !ok {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	// y = 0 axis when it is in range
	if b.minY < 0 && b.maxY > 0 {
		_, y0 := b.project(Point{0, 0}, width, height)
		fmt.Fprintf(&sb, `<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="#444466" stroke-width="1"/>
`, y0, width, y0)
	}

	for i, s := range series {
		color := palette[i%len(palette)]
		if s.Marker {
			writeMarkers(&sb, s, b, width, height, color)
		} else {
			writePath(&sb, s, b, width, height, color)
		}
		fmt.Fprintf(&sb, `<text x="8" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>
`, 36+14*i, color, escape(s.Name))
	}

	if title != "" {
		fmt.Fprintf(&sb, `<text x="8" y="18" fill="#ffffff" font-family="monospace" font-size="14">%s</text>
`, escape(title))
	}
	sb.WriteString("</svg>\n")
	return sb.String()
}

func writePath(sb *strings.Builder, s Series, b bounds, width, height int, color string) {
	var d strings.Builder
	pen := false
	for _, p := range s.Points {
		// a non-finite point lifts the pen
		if !numeric.IsFinite(p.X) || !numeric.IsFinite(p.Y) {
			pen = false
			continue
		}
		x, y := b.project(p, width, height)
		if pen {
			fmt.Fprintf(&d, " L%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&d, " M%.1f,%.1f", x, y)
			pen = true
		}
	}
	if d.Len() == 0 {
		return
	}
	fmt.Fprintf(sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="%s"/>
`, color, strings.TrimSpace(d.String()))
}

func writeMarkers(sb *strings.Builder, s Series, b bounds, width, height int, color string) {
	fmt.Fprintf(sb, `<g fill="%s">
`, color)
	for _, p := range s.Points {
		if !numeric.IsFinite(p.X) || !numeric.IsFinite(p.Y) {
			continue
		}
		x, y := b.project(p, width, height)
		fmt.Fprintf(sb, `<circle cx="%.1f" cy="%.1f" r="3"/>
`, x, y)
	}
	sb.WriteString("</g>\n")
}

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escape(s string) string { return xmlEscaper.Replace(s) }

// WriteFile renders the chart and writes it to path.
func WriteFile(path, title string, series []Series, width, height int) error {
	svg := Chart(title, series, width, height)
	if svg == "" {
		return fmt.Errorf("export: nothing to plot for %q", title)
	}
	return os.WriteFile(path, []byte(svg), 0644)
}
