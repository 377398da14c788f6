package experiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/episim/internal/dynamo"
	"github.com/san-kum/episim/internal/integrators"
)

func TestRegistryModels(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{"classic", "extended", "rumor"}, r.ListModels())
	assert.Equal(t, []string{"euler", "refined", "rk4"}, r.ListIntegrators())

	m, err := r.GetModel("extended", map[string]float64{"beta": 0.1, "gamma": 0.2, "alpha": 0.3})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"beta": 0.1, "gamma": 0.2, "alpha": 0.3}, m.GetParams())
}

func TestRegistryFreshInstances(t *testing.T) {
	r := NewRegistry()
	a, err := r.GetModel("classic", map[string]float64{"k": 1})
	require.NoError(t, err)
	b, err := r.GetModel("classic", nil)
	require.NoError(t, err)

	assert.Equal(t, 1.0, a.GetParams()["k"])
	assert.Equal(t, 0.0, b.GetParams()["k"])
}

func TestRegistryErrors(t *testing.T) {
	r := NewRegistry()

	_, err := r.GetModel("pendulum", nil)
	assert.EqualError(t, err, "unknown model: pendulum")

	_, err = r.GetModel("rumor", map[string]float64{"beta": 1})
	assert.ErrorIs(t, err, dynamo.ErrUnknownParam)

	_, err = r.GetIntegrator("verlet", 0)
	assert.EqualError(t, err, "unknown integrator: verlet")
}

func TestRegistryIntegrators(t *testing.T) {
	r := NewRegistry()

	integ, err := r.GetIntegrator("", 0)
	require.NoError(t, err)
	assert.IsType(t, &integrators.Euler{}, integ)

	integ, err = r.GetIntegrator("refined", 8)
	require.NoError(t, err)
	require.IsType(t, &integrators.Refined{}, integ)
	assert.Equal(t, 8, integ.(*integrators.Refined).Substeps)
}

func TestRegistryDescribe(t *testing.T) {
	info, err := NewRegistry().Describe("rumor")
	require.NoError(t, err)
	assert.Equal(t, "rumor", info.Name)
	assert.Equal(t, []string{"b", "k"}, info.Params)
	assert.Equal(t, "believers", info.Labels[1])
}
