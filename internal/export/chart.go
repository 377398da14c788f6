package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/san-kum/episim/internal/experiment"
	"github.com/san-kum/episim/internal/models"
)

const (
	ChartWidth  = 1024
	ChartHeight = 512
)

var compartmentColors = [3]drawing.Color{
	drawing.ColorFromHex("1f77b4"),
	drawing.ColorFromHex("d62728"),
	drawing.ColorFromHex("2ca02c"),
}

// ChartFormat picks the go-chart renderer from a name or file extension.
func ChartFormat(name string) (chart.RendererProvider, error) {
	switch strings.TrimPrefix(strings.ToLower(name), ".") {
	case "png", "":
		return chart.PNG, nil
	case "svg":
		return chart.SVG, nil
	default:
		return nil, fmt.Errorf("unknown chart format: %s", name)
	}
}

// RenderChart plots S, I and R over time with the infection peak annotated.
func RenderChart(w io.Writer, res *experiment.Result, format chart.RendererProvider) error {
	tr := res.Trajectory
	if !plottable(tr.States) {
		return fmt.Errorf("chart: %s run has non-finite values", res.Model)
	}

	series := make([]chart.Series, 0, 4)
	for idx := models.S; idx <= models.R; idx++ {
		series = append(series, chart.ContinuousSeries{
			Name:    res.Labels[idx],
			XValues: tr.Times,
			YValues: tr.Series(idx),
			Style:   chart.Style{StrokeColor: compartmentColors[idx], StrokeWidth: 3.0},
		})
	}
	series = append(series, chart.AnnotationSeries{
		Annotations: []chart.Value2{{
			XValue: res.Summary.PeakDay,
			YValue: res.Summary.PeakValue,
			Label:  fmt.Sprintf("peak day %.0f: %.0f", res.Summary.PeakDay, res.Summary.PeakValue),
		}},
	})

	graph := newGraph(fmt.Sprintf("%s model, N = %.0f", res.Model, res.Population.N), "population", series)
	return graph.Render(format, w)
}

// RenderComparison overlays the second compartment of several runs, one
// dashed line style per run after the first.
func RenderComparison(w io.Writer, results []*experiment.Result, labels []string, format chart.RendererProvider) error {
	if len(results) == 0 {
		return fmt.Errorf("chart: nothing to compare")
	}

	series := make([]chart.Series, 0, len(results))
	for i, res := range results {
		if !plottable(res.Trajectory.States) {
			return fmt.Errorf("chart: %s run has non-finite values", res.Model)
		}
		name := res.Labels[models.I]
		if i < len(labels) {
			name = labels[i]
		}
		style := chart.Style{StrokeColor: compartmentColors[models.I], StrokeWidth: 3.0}
		if i > 0 {
			style.StrokeColor = compartmentColors[(i+1)%len(compartmentColors)]
			style.StrokeDashArray = []float64{6.0, 4.0}
		}
		series = append(series, chart.ContinuousSeries{
			Name:    name,
			XValues: res.Trajectory.Times,
			YValues: res.Trajectory.Series(models.I),
			Style:   style,
		})
	}

	graph := newGraph(results[0].Labels[models.I]+" over time", results[0].Labels[models.I], series)
	return graph.Render(format, w)
}

func newGraph(title, yName string, series []chart.Series) chart.Chart {
	graph := chart.Chart{
		Title:  title,
		Width:  ChartWidth,
		Height: ChartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:  "day",
			Style: chart.Style{FontSize: 10.0},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%d", int(v.(float64)))
			},
		},
		YAxis: chart.YAxis{
			Name:  yName,
			Style: chart.Style{FontSize: 10.0},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph
}

func plottable[S ~[]float64](states []S) bool {
	for _, x := range states {
		for _, v := range x {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}
