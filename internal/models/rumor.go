package models

import (
	"fmt"

	"github.com/san-kum/episim/internal/dynamo"
)

// RumorSIR models a rumor in a closed group. S have not heard or do not
// believe it, I believe and spread it, R are rational people who debunk it.
// Believers are converted on contact with R, so the I->R flow is kIR.
type RumorSIR struct {
	B float64 // propagation rate
	K float64 // debunking rate per believer-rational contact
}

func NewRumorSIR(b, k float64) *RumorSIR {
	return &RumorSIR{B: b, K: k}
}

func (m *RumorSIR) Name() string  { return "rumor" }
func (m *RumorSIR) StateDim() int { return 3 }

func (m *RumorSIR) Labels() [3]string {
	return [3]string{"unconvinced", "believers", "debunkers"}
}

func (m *RumorSIR) Derive(x dynamo.State, _ float64) dynamo.State {
	spread := m.B * x[S] * x[I]
	debunk := m.K * x[I] * x[R]
	return dynamo.State{-spread, spread - debunk, debunk}
}

// ReproductionNumber uses the same b*N/k ratio as the classic model.
func (m *RumorSIR) ReproductionNumber(n float64) float64 { return m.B * n / m.K }
func (m *RumorSIR) Threshold() float64                   { return m.K / m.B }

// TotalAffected truncates the difference, not each term: everyone who heard
// the rumor, whether still believing or already debunking it.
func (m *RumorSIR) TotalAffected(n, finalSusceptible float64) int {
	return int(n - finalSusceptible)
}

func (m *RumorSIR) GetParams() map[string]float64 {
	return map[string]float64{"b": m.B, "k": m.K}
}

func (m *RumorSIR) SetParam(name string, v float64) error {
	switch name {
	case "b":
		m.B = v
	case "k":
		m.K = v
	default:
		return fmt.Errorf("%w: %s has no %q", dynamo.ErrUnknownParam, m.Name(), name)
	}
	return nil
}
