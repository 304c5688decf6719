package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/numsolve/internal/batch"
	"github.com/san-kum/numsolve/internal/config"
	"github.com/san-kum/numsolve/internal/expreval"
	"github.com/san-kum/numsolve/internal/registry"
	"github.com/san-kum/numsolve/internal/report"
	"github.com/san-kum/numsolve/internal/storage"
)

func listMethods(cmd *cobra.Command, args []string) error {
	reg := registry.NewRegistry()
	groups := []struct {
		title string
		names []string
	}{
		{"root", reg.ListStrategies()},
		{"ode", append(reg.ListSteppers(), registry.All)},
		{"linear", append(reg.ListSolvers(), config.LinearLU, config.LinearInverse, config.LinearDet)},
	}

	for _, g := range groups {
		fmt.Println(report.Title.Render(g.title))
		for _, name := range g.names {
			line := "  " + name
			if aliases := reg.Aliases(name); len(aliases) > 0 {
				line += report.Subtle.Render("  (" + strings.Join(aliases, ", ") + ")")
			}
			fmt.Println(line)
		}
	}
	fmt.Println(report.Title.Render("functions"))
	fmt.Println("  " + strings.Join(expreval.Functions(), ", "))
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	kinds := config.Kinds()
	if len(args) > 0 {
		kinds = args
	}
	for _, kind := range kinds {
		presets := config.ListPresets(kind)
		if len(presets) == 0 {
			fmt.Printf("no presets for kind: %s\n", kind)
			continue
		}
		fmt.Printf("presets for %s:\n", kind)
		for _, p := range presets {
			cfg := config.GetPreset(kind, p)
			desc := cfg.Method
			if cfg.Function != "" {
				desc += ": " + cfg.Function
			}
			fmt.Printf("  %-22s %s\n", p, report.Subtle.Render(desc))
		}
	}
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	b, err := batch.Load(args[0])
	if err != nil {
		return err
	}

	opts := batch.Options{Progress: os.Stdout}
	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		opts.Store = st
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if b.Name != "" {
		fmt.Println(report.Title.Render(b.Name))
	}
	reports, err := batch.Run(ctx, b, registry.NewRegistry(), opts)

	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		note := r.RunID
		if r.Err != nil {
			note = r.Err.Error()
		}
		rows = append(rows, []string{r.Name, r.Status, summarize(r), note})
	}
	fmt.Println(report.Table([]string{"problem", "status", "result", "run id / error"}, rows))

	ok, failed := batch.Stats(reports)
	fmt.Printf("%s  %s\n", report.KV("ok", ok), report.KV("failed", failed))
	return err
}

func summarize(r batch.Report) string {
	out := r.Outcome
	switch {
	case out == nil:
		return ""
	case out.Root != nil && out.Root.HasRoot:
		return "x = " + report.Sci(out.Root.Root)
	case out.ODE != nil:
		parts := make([]string, 0, len(out.ODE))
		for _, res := range out.ODE {
			parts = append(parts, res.Method+"="+report.Num(res.Final().Y))
		}
		return strings.Join(parts, " ")
	case out.Solution != nil:
		return "x = " + formatVector(out.Solution)
	case out.Inverse != nil:
		return "inverse " + strconv.Itoa(out.Inverse.Rows()) + "x" + strconv.Itoa(out.Inverse.Cols())
	case r.Err == nil && out.Config.Method == config.LinearDet:
		return "det = " + report.Sci(out.Det)
	}
	return ""
}

func formatVector(x []float64) string {
	parts := make([]string, len(x))
	for i, v := range x {
		parts[i] = strconv.FormatFloat(v, 'g', 8, 64)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tMETHOD\tTIME\tSTATUS\tFUNCTION")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			run.ID,
			run.Kind,
			run.Method,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Status,
			run.Function,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	trace, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}

	fmt.Println(report.Title.Render(meta.ID))
	fmt.Println(report.KV("kind", meta.Kind))
	fmt.Println(report.KV("method", meta.Method))
	if meta.Function != "" {
		fmt.Println(report.KV("function", meta.Function))
	}
	fmt.Println(report.KV("status", meta.Status))
	fmt.Println(report.KV("time", meta.Timestamp.Format("2006-01-02 15:04:05")))

	keys := make([]string, 0, len(meta.Summary))
	for k := range meta.Summary {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Println(report.KV(k, report.Sci(meta.Summary[k])))
	}

	rows := make([][]string, len(trace.Rows))
	for i, row := range trace.Rows {
		cells := make([]string, len(row))
		for j, v := range row {
			if math.IsNaN(v) {
				cells[j] = "-"
			} else {
				cells[j] = strconv.FormatFloat(v, 'g', 10, 64)
			}
		}
		rows[i] = cells
	}
	fmt.Println(report.Table(trace.Columns, rows))
	return nil
}

// exportTo runs write against --output, or stdout when it is unset.
func exportTo(write func(io.Writer) error) error {
	if output == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := write(f); err != nil {
		return err
	}
	return f.Close()
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	return exportTo(func(w io.Writer) error { return st.ExportCSV(args[0], w) })
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	return exportTo(func(w io.Writer) error { return st.ExportJSON(args[0], w) })
}
