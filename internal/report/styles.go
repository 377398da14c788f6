package report

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(0, 2)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ffff"))

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	MetricValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ccff")).
			Bold(true)

	MetricLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899"))

	// R0 colouring: above 1.5 spreading fast, above 1 spreading, else dying out.
	R0High   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff4444"))
	R0Medium = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffcc00"))
	R0Low    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff88"))

	Warning = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#ffaa00"))

	card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(0, 1).
		Width(22)
)

// R0Style picks the colour band for a reproduction number.
func R0Style(r0 float64) lipgloss.Style {
	switch {
	case r0 > 1.5:
		return R0High
	case r0 > 1:
		return R0Medium
	default:
		return R0Low
	}
}

// Card renders one metric: the value, its label and a short subtitle.
func Card(value, label, subtitle string, valueStyle lipgloss.Style) string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		valueStyle.Render(value),
		MetricLabel.Render(label),
		Subtle.Render(subtitle),
	)
	return card.Render(body)
}

// Sparkline renders values as a one-line bar chart, sampled down to width.
// Non-finite values render as a gap.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	rng := hi - lo
	if rng == 0 || math.IsInf(rng, 0) {
		rng = 1
	}

	step := len(values) / width
	if step < 1 {
		step = 1
	}

	var sb strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		v := values[i*step]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			sb.WriteRune(' ')
			continue
		}
		idx := int((v - lo) / rng * float64(len(chars)-1))
		idx = min(max(idx, 0), len(chars)-1)
		sb.WriteRune(chars[idx])
	}
	return sb.String()
}

func Separator(width int) string {
	mid := width / 2
	left := strings.Repeat("─", max(mid-3, 0))
	right := strings.Repeat("─", max(width-mid-3, 0))
	return Subtle.Render(left + " ◆ " + right)
}
