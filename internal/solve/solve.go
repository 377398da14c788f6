package solve

import (
	"context"

	"github.com/san-kum/episim/internal/dynamo"
	"github.com/san-kum/episim/internal/integrators"
	"github.com/san-kum/episim/internal/models"
)

const (
	DefaultHorizon      = 40
	DefaultRumorHorizon = 15
	// StepSize is one day.
	StepSize = 1.0
)

// Initial is the day-0 population split.
type Initial struct {
	N  float64
	I0 float64
	R0 float64
}

func (in Initial) State() dynamo.State {
	return dynamo.State{in.N - in.I0 - in.R0, in.I0, in.R0}
}

// Options tunes the generic driver. Horizon is required; every other zero
// value means plain forward Euler, unclamped and unvalidated.
type Options struct {
	Horizon    int
	Integrator dynamo.Integrator
	Clamp      bool
	Validate   bool
	Metrics    []dynamo.Metric
	Observers  []dynamo.Observer
}

// Run integrates model from in over opts.Horizon days.
func Run(ctx context.Context, model models.Epidemic, in Initial, opts Options) (*dynamo.Trajectory, error) {
	integ := opts.Integrator
	if integ == nil {
		integ = integrators.NewEuler()
	}

	s := dynamo.New(model, integ)
	for _, m := range opts.Metrics {
		s.AddMetric(m)
	}
	for _, o := range opts.Observers {
		s.AddObserver(o)
	}

	cfg := dynamo.Config{
		Dt:            StepSize,
		Horizon:       opts.Horizon,
		Clamp:         opts.Clamp,
		ValidateState: opts.Validate,
	}
	return s.Run(ctx, in.State(), cfg)
}

// Columns splits a trajectory into the aligned S, I, R and time series.
func Columns(tr *dynamo.Trajectory) (s, i, r, t []float64) {
	t = make([]float64, tr.Len())
	if tr.Len() > 0 {
		copy(t, tr.Times)
	}
	return tr.Series(models.S), tr.Series(models.I), tr.Series(models.R), t
}

// HorizonFor is the default horizon of the named model.
func HorizonFor(model string) int {
	if model == "rumor" {
		return DefaultRumorHorizon
	}
	return DefaultHorizon
}

func horizonOr(h, def int) int {
	if h == 0 {
		return def
	}
	return h
}
