package swarm

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Evaluator computes the fitness of every particle's position and personal
// best. Implementations only read swarm state; all writes happen later in
// UpdateBests.
type Evaluator interface {
	Evaluate(ctx context.Context, s *Swarm) (current, personalBest []float64, err error)
}

// Sequential evaluates particles one after another on the calling goroutine.
type Sequential struct{}

func (Sequential) Evaluate(ctx context.Context, s *Swarm) ([]float64, []float64, error) {
	current := make([]float64, len(s.particles))
	best := make([]float64, len(s.particles))
	for i := range s.particles {
		current[i] = s.scorer.Fitness(s.particles[i].Position)
		best[i] = s.scorer.Fitness(s.particles[i].PersonalBest)
	}
	return current, best, ctx.Err()
}

// Parallel evaluates particles on up to Workers goroutines (GOMAXPROCS when
// Workers <= 0). Each goroutine writes only its own slots, so results are
// identical to Sequential for a pure objective.
type Parallel struct {
	Workers int
}

func (e Parallel) Evaluate(ctx context.Context, s *Swarm) ([]float64, []float64, error) {
	workers := e.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	current := make([]float64, len(s.particles))
	best := make([]float64, len(s.particles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range s.particles {
		pos, pb := s.particles[i].Position, s.particles[i].PersonalBest
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			current[i] = s.scorer.Fitness(pos)
			best[i] = s.scorer.Fitness(pb)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return current, best, nil
}

// NewEvaluator picks Parallel when parallel is set and Sequential otherwise.
func NewEvaluator(parallel bool, workers int) Evaluator {
	if parallel {
		return Parallel{Workers: workers}
	}
	return Sequential{}
}
