package sweep

import (
	"context"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/episim/internal/config"
	"github.com/san-kum/episim/internal/metrics"
)

func TestMain(m *testing.M) {
	if os.Getenv("DEBUG_TESTS") == "" {
		logrus.SetLevel(logrus.WarnLevel)
	}
	os.Exit(m.Run())
}

func TestGridSingleParam(t *testing.T) {
	g := NewGrid(config.GetPreset("classic", "swine_flu"), []string{"k"}, [][]float64{{0.2, 0.4, 0.8}})
	g.SetLimit(2)

	points, err := g.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, points, 3)

	for i, k := range []float64{0.2, 0.4, 0.8} {
		assert.Equal(t, k, points[i].Params["k"])
		assert.False(t, points[i].Degenerate)
	}
	assert.Greater(t, points[0].Summary.TotalAffected, points[1].Summary.TotalAffected)
	assert.Greater(t, points[1].Summary.TotalAffected, points[2].Summary.TotalAffected)

	best, v, err := Best(points, "affected")
	require.NoError(t, err)
	assert.Equal(t, 0.8, best.Params["k"])
	assert.Equal(t, float64(points[2].Summary.TotalAffected), v)
}

func TestGridOrder(t *testing.T) {
	g := NewGrid(config.GetPreset("classic", "swine_flu"),
		[]string{"beta", "k"},
		[][]float64{{1e-4, 2e-4}, {0.3, 0.4, 0.5}})
	assert.Equal(t, 6, g.Size())

	points, err := g.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, points, 6)

	assert.Equal(t, map[string]float64{"beta": 1e-4, "k": 0.3}, points[0].Params)
	assert.Equal(t, map[string]float64{"beta": 1e-4, "k": 0.5}, points[2].Params)
	assert.Equal(t, map[string]float64{"beta": 2e-4, "k": 0.3}, points[3].Params)
}

func TestGridEmpty(t *testing.T) {
	g := NewGrid(config.DefaultConfig(), nil, nil)
	assert.Equal(t, 0, g.Size())

	points, err := g.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestGridErrors(t *testing.T) {
	_, err := NewGrid(config.DefaultConfig(), []string{"k"}, nil).Run(context.Background())
	assert.Error(t, err)

	_, err = NewGrid(config.DefaultConfig(), []string{"gamma"}, [][]float64{{1}}).Run(context.Background())
	assert.Error(t, err)
}

func TestBest(t *testing.T) {
	points := []Point{
		{Params: map[string]float64{"k": 1}, Summary: metrics.Summary{PeakValue: 50}},
		{Params: map[string]float64{"k": 2}, Summary: metrics.Summary{PeakValue: 10}, Degenerate: true},
		{Params: map[string]float64{"k": 3}, Summary: metrics.Summary{PeakValue: 20}},
	}

	best, v, err := Best(points, "peak")
	require.NoError(t, err)
	assert.Equal(t, 3.0, best.Params["k"])
	assert.Equal(t, 20.0, v)

	_, _, err = Best(points, "cost")
	assert.Error(t, err)

	_, _, err = Best(points[1:2], "peak")
	assert.Error(t, err)

	assert.Contains(t, Objectives(), "peak")
}
