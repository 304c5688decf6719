package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/numsolve/internal/config"
	"github.com/san-kum/numsolve/internal/experiment"
	"github.com/san-kum/numsolve/internal/export"
	"github.com/san-kum/numsolve/internal/expreval"
	"github.com/san-kum/numsolve/internal/ode"
	"github.com/san-kum/numsolve/internal/registry"
	"github.com/san-kum/numsolve/internal/report"
	"github.com/san-kum/numsolve/internal/roots"
	"github.com/san-kum/numsolve/internal/storage"
)

const (
	svgWidth  = 800
	svgHeight = 500
)

// solve runs the configured problem. Ctrl-C cancels the engine between
// iterations and the partial trace is still printed.
func solve(cfg *config.Config) (*experiment.Outcome, error) {
	exp := experiment.New(cfg, registry.NewRegistry())
	if err := exp.Setup(); err != nil {
		return nil, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	out, err := exp.Run(ctx)
	fmt.Println(report.Subtle.Render(fmt.Sprintf("solved in %v", time.Since(start).Round(time.Microsecond))))
	return out, err
}

func saveOutcome(out *experiment.Outcome) error {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(out.Record())
	if err != nil {
		return err
	}
	fmt.Println(report.KV("run id", runID))
	return nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := loadProblem(cmd, config.KindRoot, args)
	if err != nil {
		return err
	}

	fmt.Println(report.Title.Render(fmt.Sprintf("%s on f(x) = %s", cfg.Method, cfg.Function)))
	out, runErr := solve(cfg)
	if out == nil || out.Root == nil {
		return runErr
	}
	res := out.Root

	if len(res.Trace) > 0 {
		fmt.Println(report.RootTable(res))
	}
	fmt.Println(report.RootSummary(res))

	if plot && len(res.Trace) > 0 {
		fmt.Println()
		fmt.Println(report.ConvergenceChart(res))
		if chart := report.ErrorChart(res); chart != "" {
			fmt.Println()
			fmt.Println(chart)
		}
	}
	if svgPath != "" && len(res.Trace) > 0 {
		if err := writeRootSVG(cfg, res); err != nil {
			return err
		}
	}
	if save {
		if err := saveOutcome(out); err != nil {
			return err
		}
	}
	if view && len(res.Trace) > 0 {
		v := report.NewViewer(string(res.Method), report.RootHeaders(res), report.RootRows(res)).
			WithChart(report.ConvergenceChart(res)).
			WithFooter(report.RootSummary(res))
		if err := v.Run(); err != nil {
			return err
		}
	}
	return runErr
}

// writeRootSVG plots f over the bracket, or over the span of the iterates for
// open methods, with every estimate marked.
func writeRootSVG(cfg *config.Config, res *roots.Result) error {
	f, err := expreval.Compile(cfg.Function)
	if err != nil {
		return err
	}

	lo, hi := cfg.Initial.A, cfg.Initial.B
	switch res.Method {
	case roots.NewtonRaphson, roots.Secant:
		lo, hi = cfg.Initial.X0, cfg.Initial.X0
		if res.Method == roots.Secant {
			lo, hi = math.Min(lo, cfg.Initial.X1), math.Max(hi, cfg.Initial.X1)
		}
		for _, rec := range res.Trace {
			lo, hi = math.Min(lo, rec.Estimate), math.Max(hi, rec.Estimate)
		}
		pad := math.Max((hi-lo)*0.25, 0.5)
		lo, hi = lo-pad, hi+pad
	}
	if lo > hi {
		lo, hi = hi, lo
	}

	series := []export.Series{
		export.FunctionSeries("f(x)", f, lo, hi, 200),
		export.RootMarkers(res),
	}
	if err := export.WriteFile(svgPath, cfg.Function, series, svgWidth, svgHeight); err != nil {
		return err
	}
	fmt.Println(report.KV("svg", svgPath))
	return nil
}

func runODE(cmd *cobra.Command, args []string) error {
	cfg, err := loadProblem(cmd, config.KindODE, args)
	if err != nil {
		return err
	}

	fmt.Println(report.Title.Render(fmt.Sprintf("%s on dy/dx = %s", cfg.Method, cfg.Function)))
	out, runErr := solve(cfg)
	if out == nil {
		return runErr
	}
	results := out.ODE
	if len(results) == 0 || results[0] == nil {
		return runErr
	}

	var headers []string
	var rows [][]string
	if len(results) == 1 {
		headers, rows = report.ODEHeaders(), report.ODERows(results[0])
	} else {
		headers, rows = report.ODECompareHeaders(results), report.ODECompareRows(results)
	}
	fmt.Println(report.Table(headers, rows))
	for _, r := range results {
		fmt.Printf("%s %s  y(%s) = %s\n", report.Label.Render(r.Method+":"), report.Status(r.Status),
			report.Num(r.Final().X), report.Value.Render(report.Sci(r.Final().Y)))
	}

	if compare > 0 {
		if err := printStepSizes(cfg); err != nil {
			return err
		}
	}
	if plot {
		fmt.Println()
		fmt.Println(report.ODEChart(results))
	}
	if svgPath != "" {
		if err := export.WriteFile(svgPath, "dy/dx = "+cfg.Function, export.ODESeries(results), svgWidth, svgHeight); err != nil {
			return err
		}
		fmt.Println(report.KV("svg", svgPath))
	}
	if save {
		if err := saveOutcome(out); err != nil {
			return err
		}
	}
	if view {
		v := report.NewViewer(cfg.Method, headers, rows).WithChart(report.ODEChart(results))
		if err := v.Run(); err != nil {
			return err
		}
	}
	return runErr
}

func printStepSizes(cfg *config.Config) error {
	f, err := expreval.Compile2(cfg.Function)
	if err != nil {
		return err
	}
	steppers, err := registry.NewRegistry().Steppers(cfg.Method)
	if err != nil {
		return err
	}
	cmp, err := ode.CompareStepSizes(context.Background(), f, steppers, cfg.ODE, compare)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Println(report.Title.Render("final y by step size"))
	fmt.Println(report.StepSizeTable(cmp))
	return nil
}

func runLinear(method string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if method != "" {
			args = []string{method}
		}
		cfg, err := loadProblem(cmd, config.KindLinear, args)
		if err != nil {
			return err
		}

		fmt.Println(report.Title.Render(cfg.Method))
		out, runErr := solve(cfg)
		if out == nil {
			return runErr
		}

		fmt.Println(report.Label.Render("A"))
		fmt.Println(report.MatrixTable(out.Matrix))
		if len(cfg.Linear.B) > 0 {
			fmt.Println(report.VectorTable("b", cfg.Linear.B))
		}
		if runErr != nil {
			fmt.Println(report.KV("status", out.Status(runErr)))
			return runErr
		}

		switch {
		case out.L != nil:
			fmt.Println(report.Label.Render("L"))
			fmt.Println(report.MatrixTable(out.L))
			fmt.Println(report.Label.Render("U"))
			fmt.Println(report.MatrixTable(out.U))
		case out.Inverse != nil:
			fmt.Println(report.Label.Render("A⁻¹"))
			fmt.Println(report.MatrixTable(out.Inverse))
		case cfg.Method == config.LinearDet:
			fmt.Println(report.KV("det(A)", report.Sci(out.Det)))
		}
		if out.Solution != nil {
			fmt.Println(report.VectorTable("x", out.Solution))
			fmt.Println(report.KV("residual", report.Sci(out.Residual)))
		}

		if save {
			return saveOutcome(out)
		}
		return nil
	}
}
