package sweep

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/episim/internal/config"
	"github.com/san-kum/episim/internal/experiment"
	"github.com/san-kum/episim/internal/metrics"
)

// Grid runs the base scenario once for every combination of rate values.
type Grid struct {
	base       *config.Config
	registry   *experiment.Registry
	paramNames []string
	ranges     [][]float64
	limit      int
}

func NewGrid(base *config.Config, params []string, ranges [][]float64) *Grid {
	return &Grid{
		base:       base,
		registry:   experiment.NewRegistry(),
		paramNames: params,
		ranges:     ranges,
	}
}

// SetLimit caps the number of concurrent runs; n <= 0 means no cap.
func (g *Grid) SetLimit(n int) { g.limit = n }

// Point is one evaluated combination.
type Point struct {
	Params     map[string]float64 `json:"params"`
	Summary    metrics.Summary    `json:"summary"`
	Degenerate bool               `json:"degenerate"`
}

// Size is the number of combinations the grid will run.
func (g *Grid) Size() int {
	if len(g.paramNames) == 0 {
		return 0
	}
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Run evaluates every combination concurrently. Points come back in grid
// order, the last parameter varying fastest.
func (g *Grid) Run(ctx context.Context) ([]Point, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, fmt.Errorf("sweep: %d params but %d value lists", len(g.paramNames), len(g.ranges))
	}

	combos := make([]map[string]float64, 0, g.Size())
	if len(g.paramNames) > 0 {
		g.enumerate(0, make(map[string]float64), &combos)
	}
	logrus.Debugf("sweeping %s over %d combinations", g.base.Model, len(combos))

	points := make([]Point, len(combos))
	eg, ctx := errgroup.WithContext(ctx)
	if g.limit > 0 {
		eg.SetLimit(g.limit)
	}

	for i, combo := range combos {
		i, combo := i, combo
		eg.Go(func() error {
			cfg := g.base.Clone()
			for name, v := range combo {
				cfg.SetRate(name, v)
			}
			res, err := experiment.New(cfg, g.registry).Run(ctx)
			if err != nil {
				return fmt.Errorf("sweep %v: %w", combo, err)
			}
			points[i] = Point{Params: combo, Summary: res.Summary, Degenerate: res.Degenerate()}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return points, nil
}

func (g *Grid) enumerate(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		*out = append(*out, current)
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[paramName] = val
		g.enumerate(depth+1, next, out)
	}
}

var objectives = map[string]func(metrics.Summary) float64{
	"peak":     func(s metrics.Summary) float64 { return s.PeakValue },
	"peak_day": func(s metrics.Summary) float64 { return s.PeakDay },
	"affected": func(s metrics.Summary) float64 { return float64(s.TotalAffected) },
	"final":    func(s metrics.Summary) float64 { return s.FinalInfected },
	"r0":       func(s metrics.Summary) float64 { return s.R0 },
}

// Objectives lists the names accepted by Best.
func Objectives() []string {
	names := make([]string, 0, len(objectives))
	for name := range objectives {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Best returns the point minimising the named objective. Degenerate points
// and NaN objectives are skipped.
func Best(points []Point, objective string) (Point, float64, error) {
	fn, ok := objectives[objective]
	if !ok {
		return Point{}, 0, fmt.Errorf("unknown objective: %s", objective)
	}

	best := math.Inf(1)
	var bestPoint Point
	found := false
	for _, p := range points {
		if p.Degenerate {
			continue
		}
		v := fn(p.Summary)
		if math.IsNaN(v) {
			continue
		}
		if !found || v < best {
			best, bestPoint, found = v, p, true
		}
	}
	if !found {
		return Point{}, 0, fmt.Errorf("no usable point among %d", len(points))
	}
	return bestPoint, best, nil
}
