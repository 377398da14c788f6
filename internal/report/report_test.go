package report

import (
	"bytes"
	"context"
	"math"
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/episim/internal/config"
	"github.com/san-kum/episim/internal/experiment"
)

func TestMain(m *testing.M) {
	if os.Getenv("DEBUG_TESTS") == "" {
		logrus.SetLevel(logrus.WarnLevel)
	}
	os.Exit(m.Run())
}

func run(t *testing.T, model, preset string) *experiment.Result {
	t.Helper()
	res, err := experiment.New(config.GetPreset(model, preset), nil).Run(context.Background())
	require.NoError(t, err)
	return res
}

func TestInterpretationClassic(t *testing.T) {
	res := run(t, "classic", "swine_flu")
	md := Interpretation(res)

	assert.Contains(t, md, "k/β ≈ 2855")
	assert.Contains(t, md, "R0 = 2.50 > 1")
	assert.Contains(t, md, "## Conclusion")
}

func TestInterpretationClassicContained(t *testing.T) {
	res := run(t, "classic", "contained")
	assert.Contains(t, Interpretation(res), "R0 = 0.20 < 1")
}

func TestInterpretationRumor(t *testing.T) {
	res := run(t, "rumor", "slow_debunk")
	md := Interpretation(res)

	assert.Contains(t, md, "believers on day 10")
	assert.Contains(t, md, "Key factor")
}

func TestInterpretationExtended(t *testing.T) {
	res := run(t, "extended", "cult")
	md := Interpretation(res)

	assert.Contains(t, md, "the group dies out")
	assert.Contains(t, md, "Immunization effect: **11.1%**")
	assert.Contains(t, md, "(grows)")
}

func TestCards(t *testing.T) {
	res := run(t, "extended", "cult")
	out := Cards(res)

	assert.Contains(t, out, "effective R0")
	assert.Contains(t, out, "immunization effect")
	assert.Contains(t, out, "308")
}

func TestPlot(t *testing.T) {
	res := run(t, "classic", "swine_flu")
	out := Plot(res, 60, 10)

	assert.Contains(t, out, "population by day")
	assert.Contains(t, out, "infected")
	assert.GreaterOrEqual(t, strings.Count(out, "\n"), 10)
}

func TestPlot_AllNaN(t *testing.T) {
	res := run(t, "classic", "swine_flu")
	for _, x := range res.Trajectory.States {
		for i := range x {
			x[i] = math.NaN()
		}
	}
	assert.Contains(t, Plot(res, 40, 5), "nothing to plot")
}

func TestComparison(t *testing.T) {
	results, err := experiment.Compare(context.Background(), config.GetPreset("rumor", "slow_debunk"), nil)
	require.NoError(t, err)
	names := []string{"k", "2k"}

	table := ComparisonTable(results, names)
	assert.Equal(t, 4, strings.Count(table, "\n"))
	assert.Contains(t, table, "| 2k |")

	assert.Contains(t, ComparisonPlot(results, names, 40, 8), "believers by day")
}

func TestWritePlain(t *testing.T) {
	res := run(t, "rumor", "exam_cancel")

	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Plain = true
	require.NoError(t, Write(&buf, res, opts))

	out := buf.String()
	assert.Contains(t, out, "rumor model, N = 275, 15 days")
	assert.Contains(t, out, "warning:")
	assert.Contains(t, out, "## Interpretation")
}

func TestMarkdown(t *testing.T) {
	out, err := Markdown("## Conclusion\n\nThe outbreak fades.\n", 60, "notty")
	require.NoError(t, err)
	assert.Contains(t, out, "Conclusion")
	assert.Contains(t, out, "outbreak fades")
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "▁▅█", Sparkline([]float64{0, 0.6, 1}, 3))
	assert.Equal(t, "▁ █", Sparkline([]float64{0, math.NaN(), 1}, 3))
	assert.Equal(t, "────", Sparkline(nil, 4))
	assert.Len(t, []rune(Sparkline([]float64{1, 2, 3, 4, 5, 6, 7, 8}, 4)), 4)
}

func TestR0Style(t *testing.T) {
	assert.Equal(t, lipgloss.Color("#ff4444"), R0Style(2.5).GetForeground())
	assert.Equal(t, lipgloss.Color("#ffcc00"), R0Style(1.2).GetForeground())
	assert.Equal(t, lipgloss.Color("#00ff88"), R0Style(1.0).GetForeground())
}
