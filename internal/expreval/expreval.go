// Package expreval compiles user-supplied expression text such as
// "x^3 - x - 2" or "x + y" into numeric oracles.
package expreval

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/san-kum/numsolve/internal/numeric"
)

var (
	ErrEmpty  = errors.New("expreval: empty expression")
	ErrSyntax = errors.New("expreval: invalid expression")
)

type scalarEnv struct {
	X  float64 `expr:"x"`
	Pi float64 `expr:"pi"`
	E  float64 `expr:"e"`
}

type rateEnv struct {
	X  float64 `expr:"x"`
	Y  float64 `expr:"y"`
	Pi float64 `expr:"pi"`
	E  float64 `expr:"e"`
}

type unary func(float64) float64

var unaryFuncs = map[string]unary{
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"asin":  math.Asin,
	"acos":  math.Acos,
	"atan":  math.Atan,
	"sinh":  math.Sinh,
	"cosh":  math.Cosh,
	"tanh":  math.Tanh,
	"exp":   math.Exp,
	"log":   math.Log,
	"ln":    math.Log,
	"log10": math.Log10,
	"log2":  math.Log2,
	"sqrt":  math.Sqrt,
	"cbrt":  math.Cbrt,
	"fabs":  math.Abs,
}

// Functions lists the callable names available in expressions.
func Functions() []string {
	names := make([]string, 0, len(unaryFuncs)+2)
	for name := range unaryFuncs {
		names = append(names, name)
	}
	return append(names, "pow", "atan2")
}

func options(env any) []expr.Option {
	opts := []expr.Option{expr.Env(env), expr.AsFloat64()}
	for name, fn := range unaryFuncs {
		opts = append(opts, expr.Function(name, func(params ...any) (any, error) {
			x, err := toFloat(params[0])
			if err != nil {
				return nil, err
			}
			return fn(x), nil
		}, new(func(float64) float64)))
	}
	opts = append(opts,
		expr.Function("pow", binary(math.Pow), new(func(float64, float64) float64)),
		expr.Function("atan2", binary(math.Atan2), new(func(float64, float64) float64)),
	)
	return opts
}

func binary(fn func(a, b float64) float64) func(params ...any) (any, error) {
	return func(params ...any) (any, error) {
		a, err := toFloat(params[0])
		if err != nil {
			return nil, err
		}
		b, err := toFloat(params[1])
		if err != nil {
			return nil, err
		}
		return fn(a, b), nil
	}
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("expreval: expected a number, got %T", v)
	}
}

// normalize accepts the spellings users bring from calculators and Python:
// "math.sin(x)" and "**" for powers.
func normalize(text string) string {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "math.", "")
	return strings.ReplaceAll(text, "**", "^")
}

func compile(text string, env any) (*vm.Program, error) {
	src := normalize(text)
	if src == "" {
		return nil, ErrEmpty
	}
	prog, err := expr.Compile(src, options(env)...)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrSyntax, text, err)
	}
	return prog, nil
}

func run(prog *vm.Program, env any) (float64, error) {
	out, err := expr.Run(prog, env)
	if err != nil {
		return 0, err
	}
	return toFloat(out)
}

// Compile turns text in the variable x into a scalar oracle.
func Compile(text string) (numeric.Func, error) {
	prog, err := compile(text, scalarEnv{})
	if err != nil {
		return nil, err
	}
	return func(x float64) (float64, error) {
		return run(prog, scalarEnv{X: x, Pi: math.Pi, E: math.E})
	}, nil
}

// Compile2 turns text in the variables x and y into a rate oracle.
func Compile2(text string) (numeric.Func2, error) {
	prog, err := compile(text, rateEnv{})
	if err != nil {
		return nil, err
	}
	return func(x, y float64) (float64, error) {
		return run(prog, rateEnv{X: x, Y: y, Pi: math.Pi, E: math.E})
	}, nil
}
