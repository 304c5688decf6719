// Package numeric provides the shared primitives of the numerical engines.
//
// The package defines the oracle types the engines call and the error
// taxonomy they report:
//
//   - [Func]: scalar oracle x -> f(x), used for residuals and derivatives
//   - [Func2]: bivariate rate oracle (x, y) -> dy/dx for ODE stepping
//   - [CentralDifference]: derivative oracle built from a [Func]
//   - [Status]: terminal state of one engine invocation
//
// # Example
//
//	f := numeric.Func(func(x float64) (float64, error) { return x*x - 2, nil })
//	df := numeric.CentralDifference(f, numeric.DefaultDiffStep)
//	d, _ := df.Eval(1.5)
//
// # Thread Safety
//
// Oracles are called sequentially by one engine run. Engines keep no state
// between invocations, so separate runs may proceed in parallel as long as
// the supplied oracles are themselves safe for concurrent use.
package numeric
