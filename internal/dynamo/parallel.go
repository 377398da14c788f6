package dynamo

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Job is one independent run inside a Batch. Each job needs its own Simulator.
type Job struct {
	Name   string
	Sim    *Simulator
	X0     State
	Config Config
}

type Batch struct {
	jobs  []Job
	limit int
}

// NewBatch runs at most limit jobs at a time; limit <= 0 means no limit.
func NewBatch(limit int, jobs ...Job) *Batch {
	return &Batch{jobs: jobs, limit: limit}
}

func (b *Batch) Add(j Job) { b.jobs = append(b.jobs, j) }

func (b *Batch) Len() int { return len(b.jobs) }

// Run returns trajectories in job order. The first failing job cancels the rest.
func (b *Batch) Run(ctx context.Context) ([]*Trajectory, error) {
	results := make([]*Trajectory, len(b.jobs))

	g, ctx := errgroup.WithContext(ctx)
	if b.limit > 0 {
		g.SetLimit(b.limit)
	}

	for i, job := range b.jobs {
		i, job := i, job
		g.Go(func() error {
			tr, err := job.Sim.Run(ctx, job.X0, job.Config)
			if err != nil {
				return err
			}
			results[i] = tr
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
