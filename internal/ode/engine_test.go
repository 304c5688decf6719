package ode_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/numsolve/internal/numeric"
	"github.com/san-kum/numsolve/internal/ode"
)

var linear = numeric.Rate(func(x, y float64) float64 { return x + y })

// exact solution of dy/dx = x + y, y(0) = 1
func exact(x float64) float64 { return 2*math.Exp(x) - x - 1 }

func allSteppers() []ode.Stepper {
	return []ode.Stepper{ode.NewEuler(), ode.NewHeun(), ode.NewMidpoint(), ode.NewRalston()}
}

var _ = Describe("Integrate", func() {
	ctx := context.Background()

	It("reproduces the Euler recurrence on dy/dx = x + y", func() {
		res, err := ode.Integrate(ctx, linear, ode.NewEuler(), ode.Settings{X0: 0, Y0: 1, H: 0.1, Steps: 2})

		Expect(err).NotTo(HaveOccurred())
		Expect(res.Status).To(Equal(numeric.StatusDone))
		Expect(res.Trace).To(HaveLen(3))
		Expect(res.Trace[0]).To(Equal(ode.Point{Index: 0, X: 0, Y: 1}))
		Expect(res.Trace[1].Y).To(BeNumerically("~", 1.1, 1e-15))

		y1 := res.Trace[1].Y
		Expect(res.Trace[2].Y).To(Equal(y1 + 0.1*(0.1+y1)))
		Expect(res.Final().Y).To(BeNumerically("~", 1.22, 1e-12))
	})

	It("takes one k1/k2 pair per step for the second-order rules", func() {
		for _, s := range allSteppers()[1:] {
			res, err := ode.Integrate(ctx, linear, s, ode.Settings{X0: 0, Y0: 1, H: 0.1, Steps: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Final().Y).To(BeNumerically("~", 1.11, 1e-12), s.Name())
			Expect(s.Order()).To(Equal(2))
			Expect(s.Stages()).To(Equal(2))
		}
	})

	It("weights the two stages per rule on a nonlinear rate", func() {
		// dy/dx = y^2 separates the rules after a single step
		sq := numeric.Rate(func(_, y float64) float64 { return y * y })
		h := 0.1
		cases := map[ode.Stepper]float64{
			ode.NewHeun():     1 + h*(0.5*1+0.5*(1+h)*(1+h)),
			ode.NewMidpoint(): 1 + h*(1+h/2)*(1+h/2),
			ode.NewRalston():  1 + h*(1.0/3+2.0/3*(1+0.75*h)*(1+0.75*h)),
		}
		for s, want := range cases {
			res, err := ode.Integrate(ctx, sq, s, ode.Settings{X0: 0, Y0: 1, H: h, Steps: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Final().Y).To(BeNumerically("~", want, 1e-14), s.Name())
		}
	})

	It("applies each rule's own stage point", func() {
		// dy/dx = x makes k2 depend only on where the second stage samples
		ramp := numeric.Rate(func(x, _ float64) float64 { return x })
		cases := map[ode.Stepper]float64{
			ode.NewEuler():    0,
			ode.NewHeun():     0.5,
			ode.NewMidpoint(): 0.5,
			ode.NewRalston():  0.5,
		}
		for s, want := range cases {
			res, err := ode.Integrate(ctx, ramp, s, ode.Settings{X0: 0, Y0: 0, H: 1, Steps: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Final().Y).To(BeNumerically("~", want, 1e-15), s.Name())
		}
	})

	It("indexes points in order with increasing x", func() {
		for _, s := range allSteppers() {
			res, err := ode.Integrate(ctx, linear, s, ode.Settings{X0: 0, Y0: 1, H: 0.05, Steps: 20})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Trace).To(HaveLen(21))
			for i := 1; i < len(res.Trace); i++ {
				Expect(res.Trace[i].Index).To(Equal(i))
				Expect(res.Trace[i].X).To(BeNumerically(">", res.Trace[i-1].X))
			}
			Expect(res.Final().X).To(BeNumerically("~", 1.0, 1e-12))
		}
	})

	It("clamps the last step onto x_end", func() {
		res, err := ode.Integrate(ctx, linear, ode.NewHeun(), ode.Settings{X0: 0, Y0: 1, H: 0.3, XEnd: 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Trace).To(HaveLen(5))
		Expect(res.Final().X).To(Equal(1.0))
		Expect(res.Trace[3].X).To(BeNumerically("~", 0.9, 1e-15))
	})

	It("does not add a sliver step when rounding lands just past x_end", func() {
		res, err := ode.Integrate(ctx, linear, ode.NewEuler(), ode.Settings{X0: 0, Y0: 1, H: 0.1, XEnd: 0.3})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Trace).To(HaveLen(4))
		Expect(res.Final().X).To(Equal(0.3))
	})

	It("converges at the order of each rule", func() {
		for _, s := range allSteppers() {
			var errs []float64
			for _, h := range []float64{0.1, 0.05, 0.025} {
				res, err := ode.Integrate(ctx, linear, s, ode.Settings{X0: 0, Y0: 1, H: h, XEnd: 1})
				Expect(err).NotTo(HaveOccurred())
				errs = append(errs, math.Abs(res.Final().Y-exact(1)))
			}
			want := math.Pow(2, float64(s.Order()))
			Expect(errs[0]/errs[1]).To(BeNumerically("~", want, 0.25*want), s.Name())
			Expect(errs[1]/errs[2]).To(BeNumerically("~", want, 0.25*want), s.Name())
		}
	})

	It("stops with the partial trace on a non-finite rate", func() {
		blowup := numeric.Rate(func(x, y float64) float64 { return 1 / (x - 0.2) })
		res, err := ode.Integrate(ctx, blowup, ode.NewEuler(), ode.Settings{X0: 0, Y0: 0, H: 0.1, Steps: 5})

		Expect(errors.Is(err, numeric.ErrNumericInstability)).To(BeTrue())
		var se *numeric.StepError
		Expect(errors.As(err, &se)).To(BeTrue())
		Expect(se.Step).To(Equal(3))
		Expect(res.Status).To(Equal(numeric.StatusNumericInstability))
		Expect(res.Trace).To(HaveLen(3))
	})

	It("stops on state overflow", func() {
		grow := numeric.Rate(func(_, y float64) float64 { return y * y })
		res, err := ode.Integrate(ctx, grow, ode.NewEuler(), ode.Settings{X0: 0, Y0: 1e200, H: 1, Steps: 3})

		Expect(errors.Is(err, numeric.ErrNumericInstability)).To(BeTrue())
		Expect(res.Status).To(Equal(numeric.StatusNumericInstability))
		Expect(res.Trace).To(HaveLen(1))
	})

	It("propagates evaluator failures as oracle errors", func() {
		boom := errors.New("domain error")
		bad := numeric.Func2(func(x, y float64) (float64, error) {
			if x > 0.12 {
				return 0, boom
			}
			return 1, nil
		})
		res, err := ode.Integrate(ctx, bad, ode.NewMidpoint(), ode.Settings{X0: 0, Y0: 0, H: 0.1, Steps: 4})

		Expect(errors.Is(err, numeric.ErrOracle)).To(BeTrue())
		Expect(errors.Is(err, boom)).To(BeTrue())
		Expect(res.Status).To(Equal(numeric.StatusOracleError))
		Expect(res.Trace).To(HaveLen(2))
	})

	It("rejects invalid settings", func() {
		bad := []ode.Settings{
			{H: 0, Steps: 1},
			{H: math.NaN(), Steps: 1},
			{H: 0.1, Steps: -1},
			{H: 0.1, XEnd: 0},
			{H: -0.1, XEnd: 1},
			{H: 1e-12, XEnd: 1},
		}
		for _, set := range bad {
			res, err := ode.Integrate(ctx, linear, ode.NewEuler(), set)
			Expect(errors.Is(err, numeric.ErrInvalidSettings)).To(BeTrue(), "%+v", set)
			Expect(res).To(BeNil())
		}
	})

	It("allows negative steps for a fixed count", func() {
		res, err := ode.Integrate(ctx, linear, ode.NewEuler(), ode.Settings{X0: 1, Y0: 1, H: -0.5, Steps: 2})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Final().X).To(Equal(0.0))
	})

	It("is deterministic", func() {
		set := ode.Settings{X0: 0, Y0: 1, H: 0.1, XEnd: 2}
		a, _ := ode.Integrate(ctx, linear, ode.NewRalston(), set)
		b, _ := ode.Integrate(ctx, linear, ode.NewRalston(), set)
		Expect(b.Trace).To(Equal(a.Trace))
	})

	It("stops on a canceled context", func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		res, err := ode.Integrate(cctx, linear, ode.NewEuler(), ode.Settings{H: 0.1, Steps: 3})
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(res.Status).To(Equal(numeric.StatusCanceled))
		Expect(res.Trace).To(HaveLen(1))
	})
})

var _ = Describe("RunAll", func() {
	It("keeps stepper order and matches single runs", func() {
		set := ode.Settings{X0: 0, Y0: 1, H: 0.1, XEnd: 1}
		results, err := ode.RunAll(context.Background(), linear, allSteppers(), set)

		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(4))
		for i, s := range allSteppers() {
			single, _ := ode.Integrate(context.Background(), linear, s, set)
			Expect(results[i].Method).To(Equal(s.Name()))
			Expect(results[i].Trace).To(Equal(single.Trace))
		}
		Expect(results[0].Final().Y).To(BeNumerically("~", 3.1874849202, 1e-9))
		Expect(results[3].Final().Y).To(BeNumerically("~", 3.42816169321645, 1e-9))
	})

	It("keeps partial results when one run is unstable", func() {
		pole := numeric.Rate(func(x, _ float64) float64 { return 1 / (x - 0.05) })
		steppers := []ode.Stepper{ode.NewEuler(), ode.NewMidpoint()}
		results, err := ode.RunAll(context.Background(), pole, steppers, ode.Settings{H: 0.1, Steps: 2})

		Expect(err).NotTo(HaveOccurred())
		Expect(results[0].Status).To(Equal(numeric.StatusDone))
		Expect(results[1].Status).To(Equal(numeric.StatusNumericInstability))
	})
})

var _ = Describe("CompareStepSizes", func() {
	It("halves the step size and shrinks the error", func() {
		cmp, err := ode.CompareStepSizes(context.Background(), linear, allSteppers(),
			ode.Settings{X0: 0, Y0: 1, H: 0.1, XEnd: 1}, 0)

		Expect(err).NotTo(HaveOccurred())
		Expect(cmp.Methods).To(Equal([]string{"euler", "heun", "midpoint", "ralston"}))
		Expect(cmp.Rows).To(HaveLen(ode.DefaultHalvings))
		Expect(cmp.Rows[4].H).To(Equal(0.1 / 16))
		Expect(cmp.Rows[4].Steps).To(Equal(160))

		for m := range cmp.Methods {
			prev := math.Inf(1)
			for _, row := range cmp.Rows {
				e := math.Abs(row.Final[m] - exact(1))
				Expect(e).To(BeNumerically("<", prev))
				prev = e
			}
		}
	})

	It("scales the step count in fixed mode", func() {
		cmp, err := ode.CompareStepSizes(context.Background(), linear, []ode.Stepper{ode.NewEuler()},
			ode.Settings{X0: 0, Y0: 1, H: 0.5, Steps: 2}, 3)

		Expect(err).NotTo(HaveOccurred())
		Expect(cmp.Rows).To(HaveLen(3))
		Expect(cmp.Rows[2].Steps).To(Equal(8))
	})
})
