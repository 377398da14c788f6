package tui

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/san-kum/episim/internal/dynamo"
)

const (
	barWidth    = 40
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// LiveRenderer is a dynamo.Observer that draws one frame per simulated day,
// paced at frameRate frames per second. A frameRate of zero draws every
// frame immediately, one per line, without clearing the screen.
type LiveRenderer struct {
	w         io.Writer
	labels    [3]string
	n         float64
	frameRate int
	lastFrame time.Time
}

func NewLiveRenderer(w io.Writer, labels [3]string, n float64, frameRate int) *LiveRenderer {
	return &LiveRenderer{w: w, labels: labels, n: n, frameRate: frameRate}
}

func (r *LiveRenderer) OnStep(x dynamo.State, t float64) {
	if r.frameRate > 0 {
		frame := time.Second / time.Duration(r.frameRate)
		if wait := frame - time.Since(r.lastFrame); !r.lastFrame.IsZero() && wait > 0 {
			time.Sleep(wait)
		}
		r.lastFrame = time.Now()
		fmt.Fprint(r.w, clearScreen)
	}
	fmt.Fprint(r.w, r.frame(x, t))
}

func (r *LiveRenderer) frame(x dynamo.State, t float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", cyan.Render(fmt.Sprintf("day %3.0f", t)))
	styles := []func(...string) string{blue.Render, red.Render, green.Render}
	for i, label := range r.labels {
		if i >= len(x) {
			break
		}
		fmt.Fprintf(&b, "  %-12s %s %s\n", label, styles[i](bar(x[i], r.n, barWidth)), dim.Render(fmt.Sprintf("%10.1f", x[i])))
	}
	return b.String()
}

func (r *LiveRenderer) Start() {
	if r.frameRate > 0 {
		fmt.Fprint(r.w, hideCursor)
	}
}

func (r *LiveRenderer) Stop() {
	if r.frameRate > 0 {
		fmt.Fprint(r.w, showCursor)
	}
}

// bar fills width cells in proportion to v/total, clamped to the bar.
func bar(v, total float64, width int) string {
	frac := 0.0
	if total > 0 && !math.IsNaN(v) {
		frac = math.Max(0, math.Min(1, v/total))
	}
	filled := int(math.Round(frac * float64(width)))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
