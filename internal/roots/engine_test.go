package roots_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/numsolve/internal/convergence"
	"github.com/san-kum/numsolve/internal/numeric"
	"github.com/san-kum/numsolve/internal/roots"
)

var (
	cubic  = numeric.Scalar(func(x float64) float64 { return x*x*x - x - 2 })
	square = numeric.Scalar(func(x float64) float64 { return x*x - 2 })
)

func settings(tol float64, max int) roots.Settings {
	return roots.Settings{Tolerance: tol, MaxIterations: max}
}

var _ = Describe("Find", func() {
	ctx := context.Background()

	Describe("bisection", func() {
		It("converges on x^3 - x - 2 over [1, 2]", func() {
			p := roots.Problem{F: cubic, Initial: roots.Initial{A: 1, B: 2}}
			res, err := roots.Find(ctx, roots.NewBisection(), p, settings(1e-6, 200))

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Status).To(Equal(numeric.StatusConverged))
			Expect(res.HasRoot).To(BeTrue())
			Expect(res.Root).To(BeNumerically("~", 1.521380, 1e-6))
			Expect(res.Width).To(BeNumerically("<", 1e-6))
			Expect(res.Iterations()).To(Equal(21))
		})

		It("terminates with |f(r)| or the bracket width below tolerance", func() {
			for _, tol := range []float64{1e-2, 1e-4, 1e-8, 1e-10} {
				p := roots.Problem{F: cubic, Initial: roots.Initial{A: 1, B: 2}}
				res, err := roots.Find(ctx, roots.NewBisection(), p, settings(tol, 200))
				Expect(err).NotTo(HaveOccurred())

				fr, _ := cubic(res.Root)
				Expect(math.Abs(fr) < tol || res.Width < tol).To(BeTrue(), "tol=%g", tol)
			}
		})

		It("records the pre-update bracket and the first sample without error", func() {
			p := roots.Problem{F: cubic, Initial: roots.Initial{A: 1, B: 2}}
			res, _ := roots.Find(ctx, roots.NewBisection(), p, settings(1e-6, 200))

			first := res.Trace[0]
			Expect(first.Iteration).To(Equal(1))
			Expect(first.Fields).To(Equal([]float64{1, 2, -2, 4}))
			Expect(first.Estimate).To(Equal(1.5))
			Expect(first.Sample.Defined).To(BeFalse())
			Expect(first.Sample.Digits).To(Equal(convergence.DigitsUnknown))

			second := res.Trace[1]
			Expect(second.Fields[0]).To(Equal(1.5))
			Expect(second.Estimate).To(Equal(1.75))
			Expect(second.Sample.ErrorPercent).To(BeNumerically("~", 0.25/1.75*100, 1e-12))
		})

		It("rejects a bracket without a sign change before iterating", func() {
			p := roots.Problem{F: cubic, Initial: roots.Initial{A: 2, B: 3}}
			res, err := roots.Find(ctx, roots.NewBisection(), p, settings(1e-6, 200))

			Expect(errors.Is(err, numeric.ErrInvalidBracket)).To(BeTrue())
			Expect(res.Status).To(Equal(numeric.StatusInvalidBracket))
			Expect(res.Trace).To(BeEmpty())
			Expect(res.HasRoot).To(BeFalse())
		})

		It("rejects an endpoint that is already a root", func() {
			four := numeric.Scalar(func(x float64) float64 { return x*x - 4 })
			p := roots.Problem{F: four, Initial: roots.Initial{A: 2, B: 3}}
			_, err := roots.Find(ctx, roots.NewBisection(), p, settings(1e-6, 200))
			Expect(err).To(MatchError(numeric.ErrInvalidBracket))
		})

		It("reports the iteration cap with the best estimate", func() {
			p := roots.Problem{F: cubic, Initial: roots.Initial{A: 1, B: 2}}
			res, err := roots.Find(ctx, roots.NewBisection(), p, settings(1e-6, 5))

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Status).To(Equal(numeric.StatusMaxIterations))
			Expect(res.Trace).To(HaveLen(5))
			Expect(res.Root).To(Equal(1.53125))
			last, ok := res.Last()
			Expect(ok).To(BeTrue())
			Expect(last.Estimate).To(Equal(res.Root))
		})

		It("propagates a failing oracle with the partial trace", func() {
			pole := numeric.Scalar(func(x float64) float64 { return 1 / (x - 1.75) })
			p := roots.Problem{F: pole, Initial: roots.Initial{A: 1, B: 2}}
			res, err := roots.Find(ctx, roots.NewBisection(), p, settings(1e-6, 50))

			Expect(errors.Is(err, numeric.ErrOracle)).To(BeTrue())
			var oe *numeric.OracleError
			Expect(errors.As(err, &oe)).To(BeTrue())
			Expect(oe.X).To(Equal(1.75))
			Expect(res.Status).To(Equal(numeric.StatusOracleError))
			Expect(res.Trace).To(HaveLen(1))
			Expect(res.HasRoot).To(BeFalse())
		})
	})

	Describe("false position", func() {
		It("converges on x^3 - x - 2 over [1, 2]", func() {
			p := roots.Problem{F: cubic, Initial: roots.Initial{A: 1, B: 2}}
			res, err := roots.Find(ctx, roots.NewFalsePosition(), p, settings(1e-6, 200))

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Status).To(Equal(numeric.StatusConverged))
			Expect(res.Root).To(BeNumerically("~", 1.5213797, 1e-6))
			Expect(math.Abs(res.Trace[len(res.Trace)-1].FEstimate)).To(BeNumerically("<", 1e-6))
		})

		It("keeps the right endpoint fixed on a convex function", func() {
			p := roots.Problem{F: cubic, Initial: roots.Initial{A: 1, B: 2}}
			res, _ := roots.Find(ctx, roots.NewFalsePosition(), p, settings(1e-6, 200))
			for _, rec := range res.Trace {
				Expect(rec.Fields[1]).To(Equal(2.0))
			}
		})

		It("degenerates when the endpoint values are equal", func() {
			s := roots.NewFalsePosition()
			_, err := s.Next(roots.Problem{F: cubic}, roots.State{A: 0, B: 1, FA: 3, FB: 3})
			Expect(errors.Is(err, numeric.ErrDegenerate)).To(BeTrue())
		})
	})

	Describe("newton-raphson", func() {
		It("converges to sqrt(2) from x0 = 1 within 10 iterations", func() {
			p := roots.Problem{F: square, Initial: roots.Initial{X0: 1}}
			res, err := roots.Find(ctx, roots.NewNewton(), p, settings(1e-6, 100))

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Status).To(Equal(numeric.StatusConverged))
			Expect(res.Root).To(BeNumerically("~", 1.41421356, 1e-8))
			Expect(res.Iterations()).To(BeNumerically("<=", 10))
		})

		It("uses a supplied derivative oracle", func() {
			calls := 0
			df := numeric.Func(func(x float64) (float64, error) {
				calls++
				return 2 * x, nil
			})
			p := roots.Problem{F: square, DF: df, Initial: roots.Initial{X0: 1}}
			res, err := roots.Find(ctx, roots.NewNewton(), p, settings(1e-6, 100))

			Expect(err).NotTo(HaveOccurred())
			Expect(calls).To(Equal(res.Iterations()))
			Expect(res.Trace[0].Fields).To(Equal([]float64{1, -1, 2}))
			Expect(res.Trace[0].Estimate).To(Equal(1.5))
		})

		It("halts as degenerate on a zero derivative", func() {
			p := roots.Problem{F: square, Initial: roots.Initial{X0: 0}}
			res, err := roots.Find(ctx, roots.NewNewton(), p, settings(1e-6, 100))

			Expect(errors.Is(err, numeric.ErrDegenerate)).To(BeTrue())
			Expect(res.Status).To(Equal(numeric.StatusDegenerate))
			Expect(res.Trace).To(BeEmpty())
			Expect(res.HasRoot).To(BeFalse())
		})

		It("drops the earlier estimate when a later derivative vanishes", func() {
			// one step from 2 lands on 1, where f' is zero
			f := numeric.Scalar(func(x float64) float64 { return (x-1)*(x-1) + 1 })
			df := numeric.Scalar(func(x float64) float64 { return 2 * (x - 1) })
			p := roots.Problem{F: f, DF: df, Initial: roots.Initial{X0: 2}}
			res, err := roots.Find(ctx, roots.NewNewton(), p, settings(1e-6, 100))

			Expect(errors.Is(err, numeric.ErrDegenerate)).To(BeTrue())
			Expect(res.Status).To(Equal(numeric.StatusDegenerate))
			Expect(res.Trace).To(HaveLen(1))
			Expect(res.Trace[0].Estimate).To(Equal(1.0))
			Expect(res.HasRoot).To(BeFalse())
			Expect(res.Root).To(BeZero())
			Expect(res.Width).To(BeZero())
		})

		It("drops the earlier estimate when the oracle fails mid-run", func() {
			calls := 0
			f := numeric.Func(func(x float64) (float64, error) {
				calls++
				if calls > 2 {
					return math.NaN(), nil
				}
				return x*x - 2, nil
			})
			p := roots.Problem{F: f, DF: numeric.Scalar(func(x float64) float64 { return 2 * x }), Initial: roots.Initial{X0: 1}}
			res, err := roots.Find(ctx, roots.NewNewton(), p, settings(1e-12, 100))

			Expect(errors.Is(err, numeric.ErrOracle)).To(BeTrue())
			Expect(res.Status).To(Equal(numeric.StatusOracleError))
			Expect(res.Trace).NotTo(BeEmpty())
			Expect(res.HasRoot).To(BeFalse())
		})

		It("converges on a root at the origin", func() {
			line := numeric.Scalar(func(x float64) float64 { return x })
			p := roots.Problem{F: line, Initial: roots.Initial{X0: 3}}
			res, err := roots.Find(ctx, roots.NewNewton(), p, settings(1e-6, 10))

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Status).To(Equal(numeric.StatusConverged))
			Expect(res.Root).To(BeNumerically("~", 0, 1e-9))
		})
	})

	Describe("secant", func() {
		It("converges to sqrt(2) from 1 and 2", func() {
			p := roots.Problem{F: square, Initial: roots.Initial{X0: 1, X1: 2}}
			res, err := roots.Find(ctx, roots.NewSecant(), p, settings(1e-6, 100))

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Status).To(Equal(numeric.StatusConverged))
			Expect(res.Root).To(BeNumerically("~", math.Sqrt2, 1e-8))
			Expect(res.Iterations()).To(Equal(5))
		})

		It("shifts the iterate window each iteration", func() {
			p := roots.Problem{F: square, Initial: roots.Initial{X0: 1, X1: 2}}
			res, _ := roots.Find(ctx, roots.NewSecant(), p, settings(1e-6, 100))
			for i := 1; i < len(res.Trace); i++ {
				Expect(res.Trace[i].Fields[0]).To(Equal(res.Trace[i-1].Fields[1]))
				Expect(res.Trace[i].Fields[1]).To(Equal(res.Trace[i-1].Estimate))
			}
		})

		It("halts as degenerate on equal function values", func() {
			p := roots.Problem{F: square, Initial: roots.Initial{X0: -1, X1: 1}}
			res, err := roots.Find(ctx, roots.NewSecant(), p, settings(1e-6, 100))

			Expect(errors.Is(err, numeric.ErrDegenerate)).To(BeTrue())
			Expect(res.Status).To(Equal(numeric.StatusDegenerate))
			Expect(res.HasRoot).To(BeFalse())
		})
	})

	Describe("shared contract", func() {
		strategies := []roots.Strategy{roots.NewBisection(), roots.NewFalsePosition(), roots.NewNewton(), roots.NewSecant()}
		p := roots.Problem{F: cubic, Initial: roots.Initial{A: 1, B: 2, X0: 1, X1: 2}}

		It("produces identical traces on repeated runs", func() {
			for _, s := range strategies {
				first, err := roots.Find(ctx, s, p, settings(1e-9, 100))
				Expect(err).NotTo(HaveOccurred())
				second, err := roots.Find(ctx, s, p, settings(1e-9, 100))
				Expect(err).NotTo(HaveOccurred())
				Expect(second.Trace).To(Equal(first.Trace), string(s.Method()))
			}
		})

		It("returns the last trace estimate as the root", func() {
			for _, s := range strategies {
				res, err := roots.Find(ctx, s, p, settings(1e-9, 100))
				Expect(err).NotTo(HaveOccurred())
				last, _ := res.Last()
				Expect(res.Root).To(Equal(last.Estimate))
				Expect(len(last.Fields)).To(Equal(len(res.Columns)))
			}
		})

		It("numbers records in iteration order", func() {
			for _, s := range strategies {
				res, _ := roots.Find(ctx, s, p, settings(1e-9, 100))
				for i, rec := range res.Trace {
					Expect(rec.Iteration).To(Equal(i + 1))
				}
			}
		})

		It("rejects invalid settings", func() {
			_, err := roots.Find(ctx, roots.NewBisection(), p, settings(0, 10))
			Expect(errors.Is(err, numeric.ErrInvalidSettings)).To(BeTrue())
			_, err = roots.Find(ctx, roots.NewBisection(), p, settings(1e-6, 0))
			Expect(errors.Is(err, numeric.ErrInvalidSettings)).To(BeTrue())
			_, err = roots.Find(ctx, roots.NewBisection(), roots.Problem{}, settings(1e-6, 10))
			Expect(errors.Is(err, numeric.ErrInvalidSettings)).To(BeTrue())
		})

		It("stops on a canceled context", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			res, err := roots.Find(cctx, roots.NewBisection(), p, settings(1e-6, 10))
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())
			Expect(res.Status).To(Equal(numeric.StatusCanceled))
		})
	})
})
