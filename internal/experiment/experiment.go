package experiment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/san-kum/episim/internal/config"
	"github.com/san-kum/episim/internal/dynamo"
	"github.com/san-kum/episim/internal/metrics"
	"github.com/san-kum/episim/internal/solve"
)

// Result is one finished run together with everything needed to report it.
type Result struct {
	ID         string
	Model      string
	Labels     [3]string
	Population config.Population
	Params     map[string]float64
	Trajectory *dynamo.Trajectory
	Summary    metrics.Summary
}

// Degenerate reports whether the run produced negative or non-finite states.
func (r *Result) Degenerate() bool {
	m := r.Trajectory.Metrics
	return m["negative_states"] > 0 || m["non_finite_states"] > 0
}

type Experiment struct {
	cfg       *config.Config
	registry  *Registry
	observers []dynamo.Observer
}

func New(cfg *config.Config, registry *Registry) *Experiment {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Experiment{cfg: cfg, registry: registry}
}

// AddObserver attaches an observer to every subsequent Run.
func (e *Experiment) AddObserver(o dynamo.Observer) {
	e.observers = append(e.observers, o)
}

func (e *Experiment) Config() *config.Config { return e.cfg }

func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	cfg := e.cfg
	if err := cfg.Check(); err != nil {
		return nil, err
	}

	params, err := cfg.Params()
	if err != nil {
		return nil, err
	}
	model, err := e.registry.GetModel(cfg.Model, params)
	if err != nil {
		return nil, err
	}
	integ, err := e.registry.GetIntegrator(cfg.Integrator, cfg.Substeps)
	if err != nil {
		return nil, err
	}

	horizon := cfg.Horizon
	if horizon == 0 {
		horizon = solve.HorizonFor(cfg.Model)
	}

	logrus.Debugf("running %s model (%s) for %d days with %v", cfg.Model, integratorName(cfg), horizon, params)

	in := solve.Initial{N: cfg.Population.N, I0: cfg.Population.I0, R0: cfg.Population.R0}
	tr, err := solve.Run(ctx, model, in, solve.Options{
		Horizon:    horizon,
		Integrator: integ,
		Clamp:      cfg.Clamp,
		Validate:   cfg.Validate,
		Metrics:    e.registry.DefaultMetrics(),
		Observers:  e.observers,
	})
	if err != nil {
		return nil, fmt.Errorf("%s run: %w", cfg.Model, err)
	}

	res := &Result{
		ID:         uuid.NewString(),
		Model:      model.Name(),
		Labels:     model.Labels(),
		Population: cfg.Population,
		Params:     params,
		Trajectory: tr,
		Summary:    metrics.Summarize(model, cfg.Population.N, tr),
	}

	if res.Degenerate() {
		logrus.Warnf("%s run degenerated: %.0f negative and %.0f non-finite states; try --clamp or the refined integrator",
			cfg.Model, tr.Metrics["negative_states"], tr.Metrics["non_finite_states"])
	}
	logrus.Debugf("%s run %s: peak %.1f on day %.0f, %d affected",
		cfg.Model, res.ID, res.Summary.PeakValue, res.Summary.PeakDay, res.Summary.TotalAffected)

	return res, nil
}

// Compare runs the rumor scenario once per factor with k scaled by it.
func Compare(ctx context.Context, cfg *config.Config, registry *Registry, factors ...float64) ([]*Result, error) {
	if cfg.Model != "rumor" {
		return nil, fmt.Errorf("compare needs the rumor model, got %s", cfg.Model)
	}
	if len(factors) == 0 {
		factors = []float64{1, 2}
	}

	base, err := cfg.Params()
	if err != nil {
		return nil, err
	}

	out := make([]*Result, 0, len(factors))
	for _, f := range factors {
		scenario := cfg.Clone()
		scenario.SetRate("k", base["k"]*f)
		res, err := New(scenario, registry).Run(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

func integratorName(cfg *config.Config) string {
	switch cfg.Integrator {
	case "":
		return "euler"
	case "refined":
		return fmt.Sprintf("refined x%d", cfg.Substeps)
	default:
		return cfg.Integrator
	}
}
