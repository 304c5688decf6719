package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/numsolve/internal/config"
)

var (
	dataDir    string
	configFile string
	preset     string

	function   string
	derivative string
	tolerance  float64
	maxIter    int
	bracketA   float64
	bracketB   float64
	x0         float64
	x1         float64

	odeX0   float64
	odeY0   float64
	stepH   float64
	steps   int
	xEnd    float64
	compare int

	matrix string
	rhs    string

	plot    bool
	svgPath string
	view    bool
	save    bool
	output  string
)

// main exits with status 1 when the selected command fails.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "numsolve",
		Short:        "numerical methods workbench: roots, ODEs and linear systems",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".numsolve", "data directory")

	rootFindCmd := &cobra.Command{
		Use:   "root [method]",
		Short: "find a root with bisection, false-position, newton-raphson or secant",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRoot,
	}
	problemFlags(rootFindCmd)
	rootFindCmd.Flags().StringVarP(&function, "function", "f", "", "f(x), e.g. \"x^3 - x - 2\"")
	rootFindCmd.Flags().StringVar(&derivative, "derivative", "", "f'(x) for newton-raphson (default: central difference)")
	rootFindCmd.Flags().Float64Var(&tolerance, "tol", config.DefaultTolerance, "stopping tolerance")
	rootFindCmd.Flags().IntVar(&maxIter, "max-iter", config.DefaultMaxIterations, "iteration cap")
	rootFindCmd.Flags().Float64Var(&bracketA, "a", 0, "left bracket endpoint")
	rootFindCmd.Flags().Float64Var(&bracketB, "b", 0, "right bracket endpoint")
	rootFindCmd.Flags().Float64Var(&x0, "x0", 0, "starting point (newton-raphson, secant)")
	rootFindCmd.Flags().Float64Var(&x1, "x1", 0, "second starting point (secant)")
	outputFlags(rootFindCmd)

	odeCmd := &cobra.Command{
		Use:   "ode [method|all]",
		Short: "integrate dy/dx = f(x, y) with euler, heun, midpoint or ralston",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runODE,
	}
	problemFlags(odeCmd)
	odeCmd.Flags().StringVarP(&function, "function", "f", "", "f(x, y), e.g. \"x + y\"")
	odeCmd.Flags().Float64Var(&odeX0, "x0", 0, "initial x")
	odeCmd.Flags().Float64Var(&odeY0, "y0", 1, "initial y")
	odeCmd.Flags().Float64Var(&stepH, "h", config.DefaultH, "step size")
	odeCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	odeCmd.Flags().Float64Var(&xEnd, "x-end", 0, "integrate up to this x instead of a step count")
	odeCmd.Flags().IntVar(&compare, "compare", 0, "also tabulate final y for this many halvings of h")
	outputFlags(odeCmd)

	linearCmd := &cobra.Command{
		Use:   "linear [gauss|pivot]",
		Short: "solve a·x = b by Gaussian elimination",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLinear(""),
	}
	luCmd := &cobra.Command{
		Use:   "lu",
		Short: "Doolittle LU factorization; solves a·x = b when b is given",
		Args:  cobra.NoArgs,
		RunE:  runLinear(config.LinearLU),
	}
	inverseCmd := &cobra.Command{
		Use:   "inverse",
		Short: "matrix inverse via LU",
		Args:  cobra.NoArgs,
		RunE:  runLinear(config.LinearInverse),
	}
	detCmd := &cobra.Command{
		Use:   "det",
		Short: "determinant via LU",
		Args:  cobra.NoArgs,
		RunE:  runLinear(config.LinearDet),
	}
	for _, c := range []*cobra.Command{linearCmd, luCmd, inverseCmd, detCmd} {
		problemFlags(c)
		c.Flags().StringVarP(&matrix, "matrix", "m", "", "matrix rows separated by ';', e.g. \"2,1;1,3\"")
		c.Flags().StringVar(&rhs, "rhs", "", "right-hand side, e.g. \"3,5\"")
		c.Flags().BoolVar(&save, "save", false, "persist the run under --data")
	}

	methodsCmd := &cobra.Command{
		Use:   "methods",
		Short: "list method names and aliases",
		Args:  cobra.NoArgs,
		RunE:  listMethods,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [kind]",
		Short: "list available presets (root, ode, linear)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	batchCmd := &cobra.Command{
		Use:   "batch [file]",
		Short: "run every problem in a YAML batch file",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}
	batchCmd.Flags().BoolVar(&save, "save", false, "persist every run under --data")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "print a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a saved trace to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a saved run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	rootCmd.AddCommand(rootFindCmd, odeCmd, linearCmd, luCmd, inverseCmd, detCmd,
		methodsCmd, presetsCmd, batchCmd, listCmd, showCmd, exportCSVCmd, exportJSONCmd)
	return rootCmd
}

func problemFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "problem file (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "start from a named preset")
}

func outputFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&plot, "plot", false, "draw an ascii chart")
	cmd.Flags().StringVar(&svgPath, "svg", "", "write an svg chart to this file")
	cmd.Flags().BoolVar(&view, "view", false, "browse the trace interactively")
	cmd.Flags().BoolVar(&save, "save", false, "persist the run under --data")
}
