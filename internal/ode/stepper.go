// Package ode integrates scalar initial-value problems dy/dx = f(x, y)
// with fixed-step explicit Runge-Kutta rules of order one and two.
package ode

import "github.com/san-kum/numsolve/internal/numeric"

// Stepper advances y by one step of size h from (x, y).
type Stepper interface {
	Name() string
	Order() int
	Stages() int
	Step(f numeric.Func2, x, y, h float64) (float64, error)
}

// twoStage is the explicit two-stage family: k2 is sampled at x + c*h along
// the k1 direction and the update weights k1 and k2 by w1 and w2.
type twoStage struct {
	name   string
	c      float64
	w1, w2 float64
}

func (s *twoStage) Name() string { return s.name }
func (s *twoStage) Order() int   { return 2 }
func (s *twoStage) Stages() int  { return 2 }

func (s *twoStage) Step(f numeric.Func2, x, y, h float64) (float64, error) {
	k1, err := f.Eval(x, y)
	if err != nil {
		return k1, err
	}
	k2, err := f.Eval(x+s.c*h, y+s.c*h*k1)
	if err != nil {
		return k2, err
	}
	return y + h*(s.w1*k1+s.w2*k2), nil
}

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }
func (e *Euler) Order() int   { return 1 }
func (e *Euler) Stages() int  { return 1 }

func (e *Euler) Step(f numeric.Func2, x, y, h float64) (float64, error) {
	k1, err := f.Eval(x, y)
	if err != nil {
		return k1, err
	}
	return y + h*k1, nil
}

// Heun averages the slopes at both ends of the step (trapezoid).
type Heun struct{ twoStage }

func NewHeun() *Heun {
	return &Heun{twoStage{name: "heun", c: 1, w1: 0.5, w2: 0.5}}
}

// Midpoint uses the slope at the half step only.
type Midpoint struct{ twoStage }

func NewMidpoint() *Midpoint {
	return &Midpoint{twoStage{name: "midpoint", c: 0.5, w2: 1}}
}

// Ralston samples at 3/4 of the step, minimising the truncation error bound.
type Ralston struct{ twoStage }

func NewRalston() *Ralston {
	return &Ralston{twoStage{name: "ralston", c: 0.75, w1: 1.0 / 3, w2: 2.0 / 3}}
}
