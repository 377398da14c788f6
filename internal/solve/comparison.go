package solve

import (
	"context"
	"fmt"

	"github.com/san-kum/episim/internal/dynamo"
	"github.com/san-kum/episim/internal/integrators"
)

// Scenario is one labelled run of a comparison.
type Scenario struct {
	Label      string
	Params     RumorParams
	Trajectory *dynamo.Trajectory
}

// RumorComparison runs the rumor model once per factor with k scaled by that
// factor. Without factors it compares the current k against twice k.
// Scenarios are independent and run concurrently; the result keeps factor order.
func RumorComparison(p RumorParams, factors ...float64) ([]Scenario, error) {
	if len(factors) == 0 {
		factors = []float64{1, 2}
	}

	out := make([]Scenario, len(factors))
	batch := dynamo.NewBatch(0)
	for i, f := range factors {
		sp := p
		sp.K = p.K * f
		out[i] = Scenario{Label: fmt.Sprintf("k = %.3f (x%g)", sp.K, f), Params: sp}

		batch.Add(dynamo.Job{
			Name:   out[i].Label,
			Sim:    dynamo.New(sp.Model(), integrators.NewEuler()),
			X0:     sp.Initial().State(),
			Config: dynamo.Config{Dt: StepSize, Horizon: horizonOr(sp.Horizon, DefaultRumorHorizon)},
		})
	}

	trs, err := batch.Run(context.Background())
	if err != nil {
		return nil, fmt.Errorf("rumor comparison: %w", err)
	}
	for i, tr := range trs {
		out[i].Trajectory = tr
	}
	return out, nil
}
