package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/episim/internal/experiment"
	"github.com/san-kum/episim/internal/metrics"
	"github.com/san-kum/episim/internal/models"
)

type Options struct {
	Width  int
	Height int
	// Style is a glamour style name; empty means auto-detect from the terminal.
	Style string
	// Plain skips glamour and prints the interpretation as raw markdown.
	Plain bool
}

func DefaultOptions() Options {
	return Options{Width: 80, Height: 12}
}

// Write prints the full report of one run: metric cards, a plot of all
// three compartments and the interpretation.
func Write(w io.Writer, res *experiment.Result, opts Options) error {
	fmt.Fprintln(w, Title.Render(fmt.Sprintf("%s model, N = %.0f, %d days", res.Model, res.Population.N, res.Trajectory.Len()-1)))
	fmt.Fprintln(w, Cards(res))
	fmt.Fprintln(w, Plot(res, opts.Width, opts.Height))
	fmt.Fprintln(w)

	if res.Degenerate() {
		fmt.Fprintln(w, Warning.Render(fmt.Sprintf("warning: %.0f states went negative and %.0f were not finite; the one-day step is too coarse for these rates",
			res.Trajectory.Metrics["negative_states"], res.Trajectory.Metrics["non_finite_states"])))
		fmt.Fprintln(w)
	}

	md := Interpretation(res)
	if opts.Plain {
		_, err := fmt.Fprintln(w, md)
		return err
	}
	out, err := Markdown(md, opts.Width, opts.Style)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, out)
	return err
}

// Cards lays out the headline metrics side by side.
func Cards(res *experiment.Result) string {
	s := res.Summary
	labels := res.Labels

	cards := []string{
		Card(fmt.Sprintf("%d", int(s.PeakValue)), "peak "+labels[models.I], fmt.Sprintf("day %.0f", s.PeakDay), MetricValue),
		Card(fmt.Sprintf("%d", s.TotalAffected), "total affected", fmt.Sprintf("%.1f%% of the population", s.AttackRate), MetricValue),
		Card(fmt.Sprintf("%.2f", s.R0), r0Label(res.Model), growthLabel(s), R0Style(s.R0)),
		Card(fmt.Sprintf("%.0f", s.Threshold), "critical threshold", labels[models.S]+" level", MetricValue),
	}
	if res.Model == "extended" {
		cards = append(cards, Card(fmt.Sprintf("%.1f%%", s.ImmunizationEffect), "immunization effect", "growth reduction", MetricValue))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

// Plot draws all three compartments in one ascii chart.
func Plot(res *experiment.Result, width, height int) string {
	tr := res.Trajectory
	data := [][]float64{
		plottable(tr.Series(models.S)),
		plottable(tr.Series(models.I)),
		plottable(tr.Series(models.R)),
	}
	if !anyFinite(data...) {
		return Subtle.Render("(nothing to plot: every value is NaN or infinite)")
	}

	return asciigraph.PlotMany(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(0),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Red, asciigraph.Green),
		asciigraph.SeriesLegends(labels(res)...),
		asciigraph.Caption("population by day"),
	)
}

// ComparisonPlot overlays the second compartment of several runs.
func ComparisonPlot(results []*experiment.Result, names []string, width, height int) string {
	data := make([][]float64, 0, len(results))
	for _, res := range results {
		data = append(data, plottable(res.Trajectory.Series(models.I)))
	}
	if len(data) == 0 || !anyFinite(data...) {
		return Subtle.Render("(nothing to plot)")
	}

	colors := []asciigraph.AnsiColor{asciigraph.Red, asciigraph.Blue, asciigraph.Green, asciigraph.Yellow}
	opts := []asciigraph.Option{
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(0),
		asciigraph.SeriesColors(colors[:min(len(data), len(colors))]...),
		asciigraph.Caption(results[0].Labels[models.I] + " by day"),
	}
	if len(names) == len(data) {
		opts = append(opts, asciigraph.SeriesLegends(names...))
	}
	return asciigraph.PlotMany(data, opts...)
}

// ComparisonTable is the per-scenario markdown summary of a rumor comparison.
func ComparisonTable(results []*experiment.Result, names []string) string {
	var sb strings.Builder
	sb.WriteString("| scenario | peak | peak day | total affected | share |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	for i, res := range results {
		name := res.Model
		if i < len(names) {
			name = names[i]
		}
		s := res.Summary
		fmt.Fprintf(&sb, "| %s | %d | %.0f | %d | %.1f%% |\n", name, int(s.PeakValue), s.PeakDay, s.TotalAffected, s.AttackRate)
	}
	return sb.String()
}

// Markdown renders md for the terminal with glamour.
func Markdown(md string, width int, style string) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("markdown renderer: %w", err)
	}
	return r.Render(md)
}

func r0Label(model string) string {
	if model == "extended" {
		return "effective R0"
	}
	return "R0"
}

func growthLabel(s metrics.Summary) string {
	if s.Growing() {
		return "growing"
	}
	return "under control"
}

func labels(res *experiment.Result) []string {
	return []string{res.Labels[models.S], res.Labels[models.I], res.Labels[models.R]}
}

// plottable maps infinities to NaN, which asciigraph leaves blank.
func plottable(vs []float64) []float64 {
	for i, v := range vs {
		if math.IsInf(v, 0) {
			vs[i] = math.NaN()
		}
	}
	return vs
}

func anyFinite(series ...[]float64) bool {
	for _, vs := range series {
		for _, v := range vs {
			if !math.IsNaN(v) {
				return true
			}
		}
	}
	return false
}
