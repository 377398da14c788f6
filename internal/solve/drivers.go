package solve

import (
	"context"

	"github.com/san-kum/episim/internal/dynamo"
	"github.com/san-kum/episim/internal/models"
)

// SIRParams configures the classic model. A zero Horizon means DefaultHorizon.
type SIRParams struct {
	N, I0, R0 float64
	Beta, K   float64
	Horizon   int
}

func (p SIRParams) Model() *models.ClassicSIR { return models.NewClassicSIR(p.Beta, p.K) }
func (p SIRParams) Initial() Initial          { return Initial{N: p.N, I0: p.I0, R0: p.R0} }

// SIR runs the classic disease model.
func SIR(p SIRParams) (*dynamo.Trajectory, error) {
	return Run(context.Background(), p.Model(), p.Initial(), Options{Horizon: horizonOr(p.Horizon, DefaultHorizon)})
}

// RumorParams configures the rumor model. A zero Horizon means DefaultRumorHorizon.
type RumorParams struct {
	N, I0, R0 float64
	B, K      float64
	Horizon   int
}

func (p RumorParams) Model() *models.RumorSIR { return models.NewRumorSIR(p.B, p.K) }
func (p RumorParams) Initial() Initial        { return Initial{N: p.N, I0: p.I0, R0: p.R0} }

// Rumor runs the rumor model.
func Rumor(p RumorParams) (*dynamo.Trajectory, error) {
	return Run(context.Background(), p.Model(), p.Initial(), Options{Horizon: horizonOr(p.Horizon, DefaultRumorHorizon)})
}

// ExtendedParams configures the immunization model. A zero Horizon means DefaultHorizon.
type ExtendedParams struct {
	N, I0, R0          float64
	Beta, Gamma, Alpha float64
	Horizon            int
}

func (p ExtendedParams) Model() *models.ExtendedSIR {
	return models.NewExtendedSIR(p.Beta, p.Gamma, p.Alpha)
}
func (p ExtendedParams) Initial() Initial { return Initial{N: p.N, I0: p.I0, R0: p.R0} }

// Extended runs the immunization model.
func Extended(p ExtendedParams) (*dynamo.Trajectory, error) {
	return Run(context.Background(), p.Model(), p.Initial(), Options{Horizon: horizonOr(p.Horizon, DefaultHorizon)})
}
