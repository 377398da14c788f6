package integrators

import "github.com/san-kum/episim/internal/dynamo"

// Euler is the explicit forward Euler scheme: one derivative evaluation per step.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys dynamo.System, x dynamo.State, t float64, dt float64) dynamo.State {
	return x.Add(sys.Derive(x, t).Scale(dt))
}
