package dynamo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// State is an ordered vector of compartment values.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// HasNegative reports whether any compartment dropped below zero.
func (s State) HasNegative() bool {
	for _, v := range s {
		if v < 0 {
			return true
		}
	}
	return false
}

// Sum returns the total mass held by the state.
func (s State) Sum() float64 {
	if len(s) == 0 {
		return 0
	}
	return floats.Sum(s)
}

// Add returns s+other; missing trailing values of other count as zero.
func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

// ClampNonNegative sets negative compartments to zero in place.
func (s State) ClampNonNegative() {
	for i, v := range s {
		if v < 0 {
			s[i] = 0
		}
	}
}

// System is an autonomous or time-dependent ODE right-hand side dX/dt = f(X, t).
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

type Integrator interface {
	Step(sys System, x State, t float64, dt float64) State
}

type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x State, t float64)
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

type Config struct {
	Dt            float64
	Horizon       int
	Clamp         bool
	ValidateState bool
}

// DefaultConfig is one-day steps over a forty day horizon.
func DefaultConfig() Config {
	return Config{
		Dt:      1.0,
		Horizon: 40,
	}
}

func (c Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, c.Dt)
	}
	if c.Horizon <= 0 {
		return fmt.Errorf("%w: horizon must be positive, got %d", ErrInvalidConfig, c.Horizon)
	}
	return nil
}

// Trajectory is the full output of one run: States[i] is the state at Times[i].
type Trajectory struct {
	States  []State
	Times   []float64
	Metrics map[string]float64
}

func (tr *Trajectory) Len() int {
	if tr == nil {
		return 0
	}
	return len(tr.States)
}

// Series returns the values of compartment idx across the trajectory.
func (tr *Trajectory) Series(idx int) []float64 {
	out := make([]float64, tr.Len())
	for i := range out {
		if idx < len(tr.States[i]) {
			out[i] = tr.States[i][idx]
		}
	}
	return out
}

// Final returns the last state, or nil for an empty trajectory.
func (tr *Trajectory) Final() State {
	if tr.Len() == 0 {
		return nil
	}
	return tr.States[len(tr.States)-1]
}
