package models

import (
	"fmt"

	"github.com/san-kum/episim/internal/dynamo"
)

// ExtendedSIR adds preventive immunization: a fraction alpha of S moves
// straight to R every day without passing through I.
type ExtendedSIR struct {
	Beta  float64 // recruitment rate
	Gamma float64 // abandonment rate
	Alpha float64 // immunization rate
}

func NewExtendedSIR(beta, gamma, alpha float64) *ExtendedSIR {
	return &ExtendedSIR{Beta: beta, Gamma: gamma, Alpha: alpha}
}

func (m *ExtendedSIR) Name() string  { return "extended" }
func (m *ExtendedSIR) StateDim() int { return 3 }

func (m *ExtendedSIR) Labels() [3]string {
	return [3]string{"vulnerable", "members", "immune"}
}

func (m *ExtendedSIR) Derive(x dynamo.State, _ float64) dynamo.State {
	recruit := m.Beta * x[S] * x[I]
	immunize := m.Alpha * x[S]
	leave := m.Gamma * x[I]
	return dynamo.State{-recruit - immunize, recruit - leave, leave + immunize}
}

// ReproductionNumber is the effective value: immunization adds a removal channel.
func (m *ExtendedSIR) ReproductionNumber(n float64) float64 {
	return m.Beta * n / (m.Gamma + m.Alpha)
}

func (m *ExtendedSIR) Threshold() float64 { return m.Gamma / m.Beta }

// RemovalRates returns the two ways out of S and I besides infection.
func (m *ExtendedSIR) RemovalRates() (gamma, alpha float64) { return m.Gamma, m.Alpha }

func (m *ExtendedSIR) GetParams() map[string]float64 {
	return map[string]float64{"beta": m.Beta, "gamma": m.Gamma, "alpha": m.Alpha}
}

func (m *ExtendedSIR) SetParam(name string, v float64) error {
	switch name {
	case "beta":
		m.Beta = v
	case "gamma":
		m.Gamma = v
	case "alpha":
		m.Alpha = v
	default:
		return fmt.Errorf("%w: %s has no %q", dynamo.ErrUnknownParam, m.Name(), name)
	}
	return nil
}
