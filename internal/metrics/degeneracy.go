package metrics

import "github.com/san-kum/episim/internal/dynamo"

// Negativity counts states holding a negative compartment.
type Negativity struct {
	name       string
	violations int
}

func NewNegativity() *Negativity {
	return &Negativity{name: "negative_states"}
}

func (n *Negativity) Name() string { return n.name }

func (n *Negativity) Observe(x dynamo.State, t float64) {
	if x.HasNegative() {
		n.violations++
	}
}

func (n *Negativity) Value() float64 { return float64(n.violations) }
func (n *Negativity) Reset()         { n.violations = 0 }

// NonFinite counts states holding NaN or Inf.
type NonFinite struct {
	name  string
	count int
}

func NewNonFinite() *NonFinite {
	return &NonFinite{name: "non_finite_states"}
}

func (n *NonFinite) Name() string { return n.name }

func (n *NonFinite) Observe(x dynamo.State, t float64) {
	if !x.IsValid() {
		n.count++
	}
}

func (n *NonFinite) Value() float64 { return float64(n.count) }
func (n *NonFinite) Reset()         { n.count = 0 }

// Default returns a fresh set of the degeneracy observers.
func Default() []dynamo.Metric {
	return []dynamo.Metric{NewConservationDrift(), NewNegativity(), NewNonFinite()}
}
