package export

import (
	"encoding/json"
	"io"
	"math"
	"time"

	"github.com/san-kum/episim/internal/config"
	"github.com/san-kum/episim/internal/experiment"
	"github.com/san-kum/episim/internal/metrics"
	"github.com/san-kum/episim/internal/models"
)

// Float encodes NaN and infinities as JSON null.
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

func floatsOf(vs []float64) []Float {
	out := make([]Float, len(vs))
	for i, v := range vs {
		out[i] = Float(v)
	}
	return out
}

type Series struct {
	Label  string  `json:"label"`
	Values []Float `json:"values"`
}

type Summary struct {
	PeakDay            Float `json:"peak_day"`
	PeakValue          Float `json:"peak_value"`
	FinalSusceptible   Float `json:"final_susceptible"`
	FinalInfected      Float `json:"final_infected"`
	TotalAffected      int   `json:"total_affected"`
	AttackRate         Float `json:"attack_rate"`
	R0                 Float `json:"r0"`
	Threshold          Float `json:"threshold"`
	ImmunizationEffect Float `json:"immunization_effect,omitempty"`
}

func NewSummary(s metrics.Summary) Summary {
	return Summary{
		PeakDay:            Float(s.PeakDay),
		PeakValue:          Float(s.PeakValue),
		FinalSusceptible:   Float(s.FinalSusceptible),
		FinalInfected:      Float(s.FinalInfected),
		TotalAffected:      s.TotalAffected,
		AttackRate:         Float(s.AttackRate),
		R0:                 Float(s.R0),
		Threshold:          Float(s.Threshold),
		ImmunizationEffect: Float(s.ImmunizationEffect),
	}
}

// Document is the JSON form of a finished run.
type Document struct {
	ID          string             `json:"id"`
	Model       string             `json:"model"`
	GeneratedAt time.Time          `json:"generated_at"`
	Population  config.Population  `json:"population"`
	Params      map[string]Float   `json:"params"`
	Days        []Float            `json:"days"`
	Series      []Series           `json:"series"`
	Summary     Summary            `json:"summary"`
	Diagnostics map[string]Float   `json:"diagnostics"`
}

func NewDocument(res *experiment.Result) Document {
	tr := res.Trajectory
	doc := Document{
		ID:          res.ID,
		Model:       res.Model,
		GeneratedAt: time.Now().UTC(),
		Population:  res.Population,
		Params:      make(map[string]Float, len(res.Params)),
		Days:        floatsOf(tr.Times),
		Summary:     NewSummary(res.Summary),
		Diagnostics: make(map[string]Float, len(tr.Metrics)),
	}
	for idx := models.S; idx <= models.R; idx++ {
		doc.Series = append(doc.Series, Series{Label: res.Labels[idx], Values: floatsOf(tr.Series(idx))})
	}
	for k, v := range res.Params {
		doc.Params[k] = Float(v)
	}
	for k, v := range tr.Metrics {
		doc.Diagnostics[k] = Float(v)
	}
	return doc
}

func WriteJSON(w io.Writer, res *experiment.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewDocument(res))
}
