package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/episim/internal/dynamo"
	"github.com/san-kum/episim/internal/integrators"
	"github.com/san-kum/episim/internal/metrics"
	"github.com/san-kum/episim/internal/models"
)

type Registry struct {
	models      map[string]func() models.Epidemic
	integrators map[string]func(substeps int) dynamo.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		models:      make(map[string]func() models.Epidemic),
		integrators: make(map[string]func(int) dynamo.Integrator),
	}

	r.models["classic"] = func() models.Epidemic { return models.NewClassicSIR(0, 0) }
	r.models["rumor"] = func() models.Epidemic { return models.NewRumorSIR(0, 0) }
	r.models["extended"] = func() models.Epidemic { return models.NewExtendedSIR(0, 0, 0) }

	r.integrators["euler"] = func(int) dynamo.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func(int) dynamo.Integrator { return integrators.NewRK4() }
	r.integrators["refined"] = func(n int) dynamo.Integrator { return integrators.NewRefined(n) }

	return r
}

// GetModel builds a fresh model and applies params by name. Rates not named
// in params stay at zero.
func (r *Registry) GetModel(name string, params map[string]float64) (models.Epidemic, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	m := fn()
	for k, v := range params {
		if err := m.SetParam(k, v); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// GetIntegrator resolves an integrator by name; an empty name means euler.
// substeps only matters for refined.
func (r *Registry) GetIntegrator(name string, substeps int) (dynamo.Integrator, error) {
	if name == "" {
		name = "euler"
	}
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(substeps), nil
}

func (r *Registry) ListModels() []string {
	return sortedKeys(r.models)
}

func (r *Registry) ListIntegrators() []string {
	return sortedKeys(r.integrators)
}

// ModelInfo describes a registered model without running it.
type ModelInfo struct {
	Name   string    `json:"name"`
	Labels [3]string `json:"labels"`
	Params []string  `json:"params"`
}

func (r *Registry) Describe(name string) (ModelInfo, error) {
	m, err := r.GetModel(name, nil)
	if err != nil {
		return ModelInfo{}, err
	}
	return ModelInfo{
		Name:   m.Name(),
		Labels: m.Labels(),
		Params: sortedKeys(m.GetParams()),
	}, nil
}

func (r *Registry) DefaultMetrics() []dynamo.Metric {
	return metrics.Default()
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
