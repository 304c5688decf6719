package registry

import (
	"errors"
	"testing"

	"github.com/san-kum/numsolve/internal/roots"
)

func TestGetStrategy(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		name string
		want roots.Method
	}{
		{"bisection", roots.Bisection},
		{"Bisect", roots.Bisection},
		{"false_position", roots.FalsePosition},
		{"regula-falsi", roots.FalsePosition},
		{"newton", roots.NewtonRaphson},
		{" NR ", roots.NewtonRaphson},
		{"secant", roots.Secant},
	}
	for _, tt := range tests {
		s, err := r.GetStrategy(tt.name)
		if err != nil {
			t.Fatalf("GetStrategy(%q): %v", tt.name, err)
		}
		if s.Method() != tt.want {
			t.Errorf("GetStrategy(%q) = %s, want %s", tt.name, s.Method(), tt.want)
		}
	}

	if _, err := r.GetStrategy("brent"); !errors.Is(err, ErrUnknownMethod) {
		t.Errorf("expected ErrUnknownMethod, got %v", err)
	}
}

func TestSteppers(t *testing.T) {
	r := NewRegistry()

	all, err := r.Steppers("all")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 steppers, got %d", len(all))
	}
	for i, name := range r.ListSteppers() {
		if all[i].Name() != name {
			t.Errorf("stepper %d = %s, want %s", i, all[i].Name(), name)
		}
	}

	picked, err := r.Steppers("improved-euler", "rk2")
	if err != nil {
		t.Fatal(err)
	}
	if picked[0].Name() != "heun" || picked[1].Name() != "midpoint" {
		t.Errorf("unexpected steppers %s, %s", picked[0].Name(), picked[1].Name())
	}

	if _, err := r.Steppers("euler", "rk4"); !errors.Is(err, ErrUnknownMethod) {
		t.Errorf("expected ErrUnknownMethod, got %v", err)
	}
	if !r.IsStepperSelection("ALL") || r.IsStepperSelection("bisection") {
		t.Error("IsStepperSelection mismatch")
	}
}

func TestGetSolver(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"gauss", "naive", "pivot", "partial_pivoting"} {
		if _, err := r.GetSolver(name); err != nil {
			t.Errorf("GetSolver(%q): %v", name, err)
		}
	}
	if _, err := r.GetSolver("cholesky"); !errors.Is(err, ErrUnknownMethod) {
		t.Errorf("expected ErrUnknownMethod, got %v", err)
	}
}

func TestListings(t *testing.T) {
	r := NewRegistry()
	if got := r.ListStrategies(); len(got) != 4 || got[0] != "bisection" {
		t.Errorf("ListStrategies() = %v", got)
	}
	if got := r.ListSolvers(); len(got) != 2 {
		t.Errorf("ListSolvers() = %v", got)
	}
	if got := r.Aliases("newton-raphson"); len(got) != 2 || got[0] != "newton" || got[1] != "nr" {
		t.Errorf("Aliases(newton-raphson) = %v", got)
	}
}
