// Package objective defines the scalar functions the swarm optimizes and the
// fitness convention used to rank positions.
package objective

import (
	"fmt"
	"sort"

	"github.com/GoSim-25-26J-441/swarm-core/pkg/vector"
)

// Function evaluates a scalar cost at a point. Implementations must be pure
// and deterministic; the swarm shares one Function across all evaluations.
type Function interface {
	// Evaluate computes the raw objective value at x.
	Evaluate(x vector.Vector) float64

	// Name returns the registry name of the function.
	Name() string

	// Dim returns the required dimension, or 0 if any dimension is accepted.
	Dim() int
}

// ObjectiveType names a built-in objective function
type ObjectiveType string

const (
	ObjectiveHimmelblau ObjectiveType = "himmelblau"
	ObjectiveSphere     ObjectiveType = "sphere"
	ObjectiveRosenbrock ObjectiveType = "rosenbrock"
	ObjectiveRastrigin  ObjectiveType = "rastrigin"
	ObjectiveAckley     ObjectiveType = "ackley"
)

var registry = map[ObjectiveType]func() Function{
	ObjectiveHimmelblau: func() Function { return Himmelblau{} },
	ObjectiveSphere:     func() Function { return Sphere{} },
	ObjectiveRosenbrock: func() Function { return Rosenbrock{} },
	ObjectiveRastrigin:  func() Function { return Rastrigin{} },
	ObjectiveAckley:     func() Function { return Ackley{} },
}

// New creates an objective function from its registry name.
func New(name string) (Function, error) {
	ctor, ok := registry[ObjectiveType(name)]
	if !ok {
		return nil, &UnknownObjectiveError{ObjectiveType: name}
	}
	return ctor(), nil
}

// Names lists the registered objective names in sorted order.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, string(name))
	}
	sort.Strings(out)
	return out
}

// MinDimensioner is implemented by dimension-generic functions that are
// degenerate below some dimension.
type MinDimensioner interface {
	MinDim() int
}

// CheckDim reports whether fn can be evaluated in dim dimensions.
func CheckDim(fn Function, dim int) error {
	if want := fn.Dim(); want != 0 && want != dim {
		return &DimensionError{Objective: fn.Name(), Want: want, Got: dim}
	}
	if m, ok := fn.(MinDimensioner); ok && dim < m.MinDim() {
		return &DimensionError{Objective: fn.Name(), Want: m.MinDim(), Got: dim, AtLeast: true}
	}
	return nil
}

// UnknownObjectiveError indicates an unknown objective type
type UnknownObjectiveError struct {
	ObjectiveType string
}

func (e *UnknownObjectiveError) Error() string {
	return "unknown objective type: " + e.ObjectiveType
}

// DimensionError indicates a search space whose dimension the objective
// cannot accept.
type DimensionError struct {
	Objective string
	Want, Got int
	// AtLeast marks Want as a lower bound rather than an exact dimension.
	AtLeast bool
}

func (e *DimensionError) Error() string {
	if e.AtLeast {
		return fmt.Sprintf("objective %s requires at least %d dimensions, got %d", e.Objective, e.Want, e.Got)
	}
	return fmt.Sprintf("objective %s requires %d dimensions, got %d", e.Objective, e.Want, e.Got)
}
