package optimizer

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/optimize"

	"github.com/GoSim-25-26J-441/swarm-core/internal/objective"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/vector"
)

// Refinement is a Nelder-Mead search on the raw objective started from the
// swarm's global best.
type Refinement struct {
	Position  vector.Vector
	Objective float64
	Evals     int
	Status    string
}

// Refine polishes start with Nelder-Mead for at most maxIterations major
// iterations. If the search ends worse than start, start is reported.
func Refine(ctx context.Context, fn objective.Function, start vector.Vector, maxIterations int) (*Refinement, error) {
	if maxIterations <= 0 {
		return nil, errors.New("refine iterations must be positive")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return fn.Evaluate(vector.Of(x...))
		},
	}
	settings := &optimize.Settings{
		MajorIterations: maxIterations,
	}

	startValue := fn.Evaluate(start)
	result, err := optimize.Minimize(problem, start.Coords(), settings, &optimize.NelderMead{})
	if result == nil {
		return nil, fmt.Errorf("nelder-mead failed: %w", err)
	}

	ref := &Refinement{
		Position:  vector.Of(result.X...),
		Objective: result.F,
		Evals:     result.Stats.FuncEvaluations,
		Status:    result.Status.String(),
	}
	if !(ref.Objective <= startValue) {
		ref.Position = start
		ref.Objective = startValue
	}
	return ref, nil
}
