package metrics

import (
	"math"

	"github.com/san-kum/episim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

const (
	susceptible = 0
	infected    = 1
)

// Peak returns the day and value of the first maximum of I.
func Peak(tr *dynamo.Trajectory) (day, value float64) {
	if tr.Len() == 0 {
		return 0, 0
	}
	series := tr.Series(infected)
	idx := floats.MaxIdx(series)
	return tr.Times[idx], series[idx]
}

func FinalSusceptible(tr *dynamo.Trajectory) float64 {
	if tr.Len() == 0 {
		return 0
	}
	return tr.Final()[susceptible]
}

func FinalInfected(tr *dynamo.Trajectory) float64 {
	if tr.Len() == 0 {
		return 0
	}
	return tr.Final()[infected]
}

// TotalAffected is the cumulative attack size N - S(final) as a head count.
// Both terms are truncated before subtracting; models that count the other
// way implement AffectedCounter.
func TotalAffected(n float64, tr *dynamo.Trajectory) int {
	return int(n) - int(FinalSusceptible(tr))
}

// AffectedCounter overrides how Summarize turns N and S(final) into a count.
type AffectedCounter interface {
	TotalAffected(n, finalSusceptible float64) int
}

// AttackRate is TotalAffected as a percentage of n.
func AttackRate(n float64, tr *dynamo.Trajectory) float64 {
	return float64(TotalAffected(n, tr)) / n * 100
}

// BasicReproduction is beta*N/k. A zero k yields Inf, not an error.
func BasicReproduction(beta, n, k float64) float64 {
	return beta * n / k
}

// EffectiveReproduction is beta*N/(gamma+alpha).
func EffectiveReproduction(beta, n, gamma, alpha float64) float64 {
	return beta * n / (gamma + alpha)
}

// CriticalThreshold is the susceptible level removal/beta below which I declines.
func CriticalThreshold(removal, beta float64) float64 {
	return removal / beta
}

// ImmunizationEffect is the share of removal due to immunization, in percent.
func ImmunizationEffect(gamma, alpha float64) float64 {
	return alpha / (gamma + alpha) * 100
}

// Reproducer is the closed-form part of a model that Summarize needs.
type Reproducer interface {
	ReproductionNumber(n float64) float64
	Threshold() float64
}

// Immunizer is implemented by models with a direct S to R flow.
type Immunizer interface {
	RemovalRates() (gamma, alpha float64)
}

type Summary struct {
	PeakDay          float64 `json:"peak_day"`
	PeakValue        float64 `json:"peak_value"`
	FinalSusceptible float64 `json:"final_susceptible"`
	FinalInfected    float64 `json:"final_infected"`
	TotalAffected    int     `json:"total_affected"`
	AttackRate       float64 `json:"attack_rate"`
	R0               float64 `json:"r0"`
	Threshold        float64 `json:"threshold"`

	// ImmunizationEffect is zero for models without an immunization flow.
	ImmunizationEffect float64 `json:"immunization_effect,omitempty"`
}

// Summarize derives every scalar metric from a finished trajectory.
// Nothing is cached; call it again after a new run.
func Summarize(m Reproducer, n float64, tr *dynamo.Trajectory) Summary {
	day, value := Peak(tr)
	s := Summary{
		PeakDay:          day,
		PeakValue:        value,
		FinalSusceptible: FinalSusceptible(tr),
		FinalInfected:    FinalInfected(tr),
		TotalAffected:    TotalAffected(n, tr),
		AttackRate:       AttackRate(n, tr),
		R0:               m.ReproductionNumber(n),
		Threshold:        m.Threshold(),
	}
	if ac, ok := m.(AffectedCounter); ok {
		s.TotalAffected = ac.TotalAffected(n, s.FinalSusceptible)
		s.AttackRate = float64(s.TotalAffected) / n * 100
	}
	if im, ok := m.(Immunizer); ok {
		s.ImmunizationEffect = ImmunizationEffect(im.RemovalRates())
	}
	return s
}

// Growing reports whether the outbreak can take off at all.
func (s Summary) Growing() bool { return s.R0 > 1 }

// Degenerate reports whether any scalar is NaN or infinite.
func (s Summary) Degenerate() bool {
	for _, v := range []float64{s.PeakDay, s.PeakValue, s.FinalSusceptible, s.FinalInfected, s.R0} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	return false
}
