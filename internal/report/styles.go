// Package report renders solver results for the terminal: lipgloss tables,
// asciigraph charts and an interactive bubbletea trace viewer.
package report

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/numsolve/internal/numeric"
)

var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ffff"))

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	Label = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888899"))

	Value = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#00ccff")).
		Bold(true)

	KeyHint = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688")).
		Italic(true)

	statusOK = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ff88"))

	statusWarn = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffaa00"))

	statusFail = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff4444"))

	headerCell = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 1)

	cell = lipgloss.NewStyle().Padding(0, 1)

	lastCell = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("#00ff88"))

	border = lipgloss.NewStyle().Foreground(lipgloss.Color("#444466"))
)

// Status renders a status name colored by outcome.
func Status(s numeric.Status) string {
	switch s {
	case numeric.StatusConverged, numeric.StatusDone:
		return statusOK.Render(s.String())
	case numeric.StatusMaxIterations:
		return statusWarn.Render(s.String())
	default:
		return statusFail.Render(s.String())
	}
}

// KV renders one "label: value" line.
func KV(label string, value any) string {
	return Label.Render(label+":") + " " + Value.Render(fmt.Sprint(value))
}

// Num formats a float for tables.
func Num(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// Sci formats a float in short exponent form.
func Sci(v float64) string {
	return strconv.FormatFloat(v, 'g', 10, 64)
}
