package report

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

const defaultPage = 15

// Viewer is a scrollable trace table. Tab toggles to the chart, if any.
type Viewer struct {
	title     string
	headers   []string
	rows      [][]string
	chart     string
	footer    string
	offset    int
	page      int
	showChart bool
	quitting  bool
}

func NewViewer(title string, headers []string, rows [][]string) Viewer {
	return Viewer{title: title, headers: headers, rows: rows, page: defaultPage}
}

// WithChart attaches a pre-rendered chart.
func (v Viewer) WithChart(chart string) Viewer {
	v.chart = chart
	return v
}

// WithFooter attaches a summary block shown under the table.
func (v Viewer) WithFooter(footer string) Viewer {
	v.footer = footer
	return v
}

// Offset is the index of the first visible row.
func (v Viewer) Offset() int { return v.offset }

func (v Viewer) Init() tea.Cmd { return nil }

func (v Viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			v.quitting = true
			return v, tea.Quit
		case "up", "k":
			v.scroll(-1)
		case "down", "j":
			v.scroll(1)
		case "pgup", "b":
			v.scroll(-v.page)
		case "pgdown", "f", " ":
			v.scroll(v.page)
		case "home", "g":
			v.offset = 0
		case "end", "G":
			v.scroll(len(v.rows))
		case "tab":
			if v.chart != "" {
				v.showChart = !v.showChart
			}
		}
	case tea.WindowSizeMsg:
		// table chrome, title and key hints take roughly ten lines
		v.page = max(msg.Height-10, 3)
		v.scroll(0)
	}
	return v, nil
}

func (v *Viewer) scroll(delta int) {
	last := max(len(v.rows)-v.page, 0)
	v.offset = min(max(v.offset+delta, 0), last)
}

func (v Viewer) View() string {
	if v.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(Title.Render(v.title))
	b.WriteString("\n\n")

	if v.showChart {
		b.WriteString(v.chart)
	} else {
		end := min(v.offset+v.page, len(v.rows))
		b.WriteString(render(v.headers, v.rows[v.offset:end]))
		b.WriteString("\n")
		b.WriteString(Subtle.Render(fmt.Sprintf("rows %d-%d of %d", v.offset+1, end, len(v.rows))))
	}
	if v.footer != "" {
		b.WriteString("\n\n")
		b.WriteString(v.footer)
	}

	hints := "j/k scroll  pgup/pgdown page  g/G ends  q quit"
	if v.chart != "" {
		hints = "tab chart  " + hints
	}
	b.WriteString("\n\n")
	b.WriteString(KeyHint.Render(hints))
	b.WriteString("\n")
	return b.String()
}

// Run blocks until the user quits the viewer.
func (v Viewer) Run() error {
	_, err := tea.NewProgram(v).Run()
	return err
}
