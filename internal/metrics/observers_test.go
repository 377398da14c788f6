package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/episim/internal/dynamo"
	"github.com/stretchr/testify/assert"
)

func TestConservationDrift(t *testing.T) {
	m := NewConservationDrift()
	assert.Equal(t, "conservation_drift", m.Name())

	m.Observe(dynamo.State{90, 10, 0}, 0)
	m.Observe(dynamo.State{80, 15, 5}, 1)
	assert.Zero(t, m.Value())

	m.Observe(dynamo.State{80, 15, 7}, 2)
	assert.InDelta(t, 0.02, m.Value(), 1e-12)

	m.Observe(dynamo.State{80, 15, 5}, 3)
	assert.InDelta(t, 0.02, m.Value(), 1e-12, "drift keeps its maximum")

	m.Reset()
	assert.Zero(t, m.Value())
}

func TestConservationDrift_NaNSticks(t *testing.T) {
	m := NewConservationDrift()
	m.Observe(dynamo.State{1, 1, 1}, 0)
	m.Observe(dynamo.State{math.NaN(), 1, 1}, 1)
	m.Observe(dynamo.State{1, 1, 1}, 2)
	assert.True(t, math.IsNaN(m.Value()))
}

func TestNegativity(t *testing.T) {
	m := NewNegativity()
	m.Observe(dynamo.State{1, 2, 3}, 0)
	m.Observe(dynamo.State{-1, 2, 3}, 1)
	m.Observe(dynamo.State{-1, -2, 3}, 2)
	assert.Equal(t, 2.0, m.Value())

	m.Reset()
	assert.Zero(t, m.Value())
}

func TestNonFinite(t *testing.T) {
	m := NewNonFinite()
	m.Observe(dynamo.State{1, 2, 3}, 0)
	m.Observe(dynamo.State{math.Inf(1), 2, 3}, 1)
	assert.Equal(t, 1.0, m.Value())
}

func TestDefault(t *testing.T) {
	names := map[string]bool{}
	for _, m := range Default() {
		names[m.Name()] = true
	}
	assert.Equal(t, map[string]bool{
		"conservation_drift": true,
		"negative_states":    true,
		"non_finite_states":  true,
	}, names)
}
