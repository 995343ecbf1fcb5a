package objective

import (
	"fmt"
	"math"

	"github.com/GoSim-25-26J-441/swarm-core/pkg/vector"
)

// Direction fixes how raw objective values are turned into fitness and
// which fitness is better. One Direction is applied to every comparison in a
// run, personal and global bests alike.
type Direction string

const (
	// DirectionMaximizeReciprocal ranks by fitness = 1/f, larger is better.
	DirectionMaximizeReciprocal Direction = "maximize_reciprocal"
	// DirectionMinimize ranks by fitness = f, smaller is better.
	DirectionMinimize Direction = "minimize"
)

// ReciprocalSentinel is the fitness assigned to a raw objective value of
// exactly zero (or below) under DirectionMaximizeReciprocal, in place of 1/0.
const ReciprocalSentinel = math.MaxFloat64

// ParseDirection validates a direction name. The empty string selects
// DirectionMaximizeReciprocal.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case "", DirectionMaximizeReciprocal:
		return DirectionMaximizeReciprocal, nil
	case DirectionMinimize:
		return DirectionMinimize, nil
	default:
		return "", fmt.Errorf("unknown direction %q (must be %s or %s)", s, DirectionMaximizeReciprocal, DirectionMinimize)
	}
}

// Scorer ranks positions for one objective under one Direction.
type Scorer struct {
	fn  Function
	dir Direction
}

// NewScorer pairs fn with dir.
func NewScorer(fn Function, dir Direction) (*Scorer, error) {
	if fn == nil {
		return nil, fmt.Errorf("objective function is required")
	}
	d, err := ParseDirection(string(dir))
	if err != nil {
		return nil, err
	}
	return &Scorer{fn: fn, dir: d}, nil
}

// Function returns the underlying objective.
func (s *Scorer) Function() Function { return s.fn }

// Direction returns the ranking direction.
func (s *Scorer) Direction() Direction { return s.dir }

// Fitness evaluates the objective at x and converts it to fitness.
func (s *Scorer) Fitness(x vector.Vector) float64 {
	return s.FitnessOf(s.fn.Evaluate(x))
}

// FitnessOf converts a raw objective value to fitness.
func (s *Scorer) FitnessOf(raw float64) float64 {
	if s.dir == DirectionMinimize {
		return raw
	}
	if raw <= 0 {
		return ReciprocalSentinel
	}
	return 1 / raw
}

// Objective converts a fitness back to the raw objective value. The
// reciprocal sentinel maps to 0.
func (s *Scorer) Objective(fitness float64) float64 {
	if s.dir == DirectionMinimize {
		return fitness
	}
	if fitness == ReciprocalSentinel {
		return 0
	}
	return 1 / fitness
}

// Better reports whether fitness a is strictly better than b. Ties and NaN
// never count as an improvement.
func (s *Scorer) Better(a, b float64) bool {
	if s.dir == DirectionMinimize {
		return a < b
	}
	return a > b
}
