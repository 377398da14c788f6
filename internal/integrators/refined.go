package integrators

import "github.com/san-kum/episim/internal/dynamo"

// Refined splits every step into Substeps equal Euler substeps. The recorded
// trajectory keeps the caller's step size.
type Refined struct {
	Substeps int
	euler    Euler
}

func NewRefined(substeps int) *Refined {
	if substeps < 1 {
		substeps = 1
	}
	return &Refined{Substeps: substeps}
}

func (r *Refined) Step(sys dynamo.System, x dynamo.State, t float64, dt float64) dynamo.State {
	n := r.Substeps
	if n < 1 {
		n = 1
	}
	h := dt / float64(n)
	for i := 0; i < n; i++ {
		x = r.euler.Step(sys, x, t+float64(i)*h, h)
	}
	return x
}
