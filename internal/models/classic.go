package models

import (
	"fmt"

	"github.com/san-kum/episim/internal/dynamo"
)

// ClassicSIR is the Kermack-McKendrick model with mass-action infection.
type ClassicSIR struct {
	Beta float64 // infection rate per contact
	K    float64 // recovery rate per day
}

func NewClassicSIR(beta, k float64) *ClassicSIR {
	return &ClassicSIR{Beta: beta, K: k}
}

func (m *ClassicSIR) Name() string  { return "classic" }
func (m *ClassicSIR) StateDim() int { return 3 }

func (m *ClassicSIR) Labels() [3]string {
	return [3]string{"susceptible", "infected", "recovered"}
}

func (m *ClassicSIR) Derive(x dynamo.State, _ float64) dynamo.State {
	infection := m.Beta * x[S] * x[I]
	recovery := m.K * x[I]
	return dynamo.State{-infection, infection - recovery, recovery}
}

func (m *ClassicSIR) ReproductionNumber(n float64) float64 { return m.Beta * n / m.K }
func (m *ClassicSIR) Threshold() float64                   { return m.K / m.Beta }

func (m *ClassicSIR) GetParams() map[string]float64 {
	return map[string]float64{"beta": m.Beta, "k": m.K}
}

func (m *ClassicSIR) SetParam(name string, v float64) error {
	switch name {
	case "beta":
		m.Beta = v
	case "k":
		m.K = v
	default:
		return fmt.Errorf("%w: %s has no %q", dynamo.ErrUnknownParam, m.Name(), name)
	}
	return nil
}
