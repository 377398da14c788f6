package dynamo

import (
	"context"
	"fmt"
)

type Simulator struct {
	sys        System
	integrator Integrator
	metrics    []Metric
	observers  []Observer
}

func New(sys System, integrator Integrator) *Simulator {
	return &Simulator{
		sys:        sys,
		integrator: integrator,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run advances x0 cfg.Horizon times and returns Horizon+1 states, day 0 included.
// Only a bad config or a cancelled context produce an error; numeric
// degeneracy is recorded as-is unless cfg.ValidateState is set.
func (s *Simulator) Run(ctx context.Context, x0 State, cfg Config) (*Trajectory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if dim := s.sys.StateDim(); len(x0) != dim {
		return nil, fmt.Errorf("%w: state has %d values, system expects %d", ErrDimensionMismatch, len(x0), dim)
	}

	tr := &Trajectory{
		States:  make([]State, 0, cfg.Horizon+1),
		Times:   make([]float64, 0, cfg.Horizon+1),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := x0.Clone()
	s.record(tr, x, 0)

	for i := 0; i < cfg.Horizon; i++ {
		select {
		case <-ctx.Done():
			return tr, ctx.Err()
		default:
		}

		t := float64(i) * cfg.Dt
		next := s.integrator.Step(s.sys, x, t, cfg.Dt)
		if cfg.Clamp {
			next.ClampNonNegative()
		}

		if cfg.ValidateState && !next.IsValid() {
			s.collect(tr)
			return tr, &SimulationError{Step: i + 1, Time: t + cfg.Dt, State: next.Clone(), Wrapped: ErrInvalidState}
		}

		x = next
		s.record(tr, x, float64(i+1)*cfg.Dt)
	}

	s.collect(tr)
	return tr, nil
}

func (s *Simulator) record(tr *Trajectory, x State, t float64) {
	tr.States = append(tr.States, x.Clone())
	tr.Times = append(tr.Times, t)
	for _, m := range s.metrics {
		m.Observe(x, t)
	}
	for _, obs := range s.observers {
		obs.OnStep(x, t)
	}
}

func (s *Simulator) collect(tr *Trajectory) {
	for _, m := range s.metrics {
		tr.Metrics[m.Name()] = m.Value()
	}
}
