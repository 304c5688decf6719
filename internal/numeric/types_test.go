package numeric

import (
	"errors"
	"math"
	"testing"
)

func TestFunc_Eval(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name    string
		f       Func
		wantErr bool
	}{
		{"finite", Scalar(func(x float64) float64 { return x * 2 }), false},
		{"NaN", Scalar(func(x float64) float64 { return math.NaN() }), true},
		{"+Inf", Scalar(func(x float64) float64 { return math.Inf(1) }), true},
		{"evaluator error", func(x float64) (float64, error) { return 0, boom }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.f.Eval(1.5)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Eval() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			if !errors.Is(err, ErrOracle) {
				t.Errorf("expected ErrOracle, got %v", err)
			}
			var oe *OracleError
			if !errors.As(err, &oe) || oe.X != 1.5 {
				t.Errorf("expected OracleError at x=1.5, got %v", err)
			}
		})
	}
}

func TestFunc_EvalKeepsEvaluatorError(t *testing.T) {
	boom := errors.New("boom")
	f := Func(func(x float64) (float64, error) { return 0, boom })
	_, err := f.Eval(0)
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped evaluator error, got %v", err)
	}
}

func TestFunc2_Eval(t *testing.T) {
	f := Rate(func(x, y float64) float64 { return x + y })
	v, err := f.Eval(1, 2)
	if err != nil || v != 3 {
		t.Fatalf("Eval(1,2) = %v, %v", v, err)
	}

	inf := Rate(func(x, y float64) float64 { return math.Inf(-1) })
	if _, err := inf.Eval(0, 0); !errors.Is(err, ErrNumericInstability) {
		t.Errorf("expected ErrNumericInstability, got %v", err)
	}

	failing := Func2(func(x, y float64) (float64, error) { return 0, errors.New("domain") })
	_, err = failing.Eval(0.5, 2)
	var oe *OracleError
	if !errors.As(err, &oe) || !oe.HasY || oe.Y != 2 {
		t.Errorf("expected OracleError with y=2, got %v", err)
	}
}

func TestCentralDifference(t *testing.T) {
	tests := []struct {
		name string
		f    func(float64) float64
		x    float64
		want float64
	}{
		{"square", func(x float64) float64 { return x*x - 2 }, 1.0, 2.0},
		{"cubic", func(x float64) float64 { return x*x*x - x - 2 }, 1.5, 3*1.5*1.5 - 1},
		{"sin", math.Sin, 0.3, math.Cos(0.3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			df := CentralDifference(Scalar(tt.f), DefaultDiffStep)
			got, err := df(tt.x)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("derivative = %.10f, want %.10f", got, tt.want)
			}
		})
	}
}

func TestCentralDifference_PropagatesOracleError(t *testing.T) {
	f := Scalar(func(x float64) float64 { return math.Log(x) })
	df := CentralDifference(f, DefaultDiffStep)
	if _, err := df(-1); !errors.Is(err, ErrOracle) {
		t.Errorf("expected ErrOracle, got %v", err)
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want Status
	}{
		{nil, StatusConverged},
		{ErrInvalidBracket, StatusInvalidBracket},
		{ErrDegenerate, StatusDegenerate},
		{&StepError{Step: 3, Wrapped: ErrNumericInstability}, StatusNumericInstability},
		{&OracleError{X: 1, Wrapped: errors.New("x")}, StatusOracleError},
	}

	for _, tt := range tests {
		if got := StatusOf(tt.err, StatusConverged); got != tt.want {
			t.Errorf("StatusOf(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestStatus_String(t *testing.T) {
	if StatusMaxIterations.String() != "max-iterations-reached" {
		t.Errorf("unexpected name %q", StatusMaxIterations.String())
	}
	if !StatusDone.OK() || StatusDegenerate.OK() {
		t.Error("OK() classification wrong")
	}
}
