package objective

import (
	"math"

	"github.com/GoSim-25-26J-441/swarm-core/pkg/vector"
)

// HimmelblauMinima are the four global minimizers of the Himmelblau function,
// where it evaluates to zero (the last three to about six decimals).
var HimmelblauMinima = []vector.Vector{
	vector.Of(3.0, 2.0),
	vector.Of(-2.805118, 3.131312),
	vector.Of(-3.779310, -3.283186),
	vector.Of(3.584428, -1.848126),
}

// Himmelblau is f(x, y) = (x² + y − 11)² + (x + y² − 7)².
type Himmelblau struct{}

func (Himmelblau) Name() string { return string(ObjectiveHimmelblau) }
func (Himmelblau) Dim() int     { return 2 }

func (Himmelblau) Evaluate(p vector.Vector) float64 {
	x, y := p.At(0), p.At(1)
	a := x*x + y - 11
	b := x + y*y - 7
	return a*a + b*b
}

// Sphere is the sum of squared coordinates, minimum 0 at the origin.
type Sphere struct{}

func (Sphere) Name() string { return string(ObjectiveSphere) }
func (Sphere) Dim() int     { return 0 }

func (Sphere) Evaluate(p vector.Vector) float64 {
	s := 0.0
	for i := 0; i < p.Dim(); i++ {
		s += p.At(i) * p.At(i)
	}
	return s
}

// Rosenbrock is the banana function, minimum 0 at (1, ..., 1). It sums over
// consecutive coordinate pairs, so one dimension would make it constant.
type Rosenbrock struct{}

func (Rosenbrock) Name() string { return string(ObjectiveRosenbrock) }
func (Rosenbrock) Dim() int     { return 0 }
func (Rosenbrock) MinDim() int  { return 2 }

func (Rosenbrock) Evaluate(p vector.Vector) float64 {
	s := 0.0
	for i := 0; i < p.Dim()-1; i++ {
		x, next := p.At(i), p.At(i+1)
		s += 100*(next-x*x)*(next-x*x) + (1-x)*(1-x)
	}
	return s
}

// Rastrigin is highly multi-modal with minimum 0 at the origin.
type Rastrigin struct{}

func (Rastrigin) Name() string { return string(ObjectiveRastrigin) }
func (Rastrigin) Dim() int     { return 0 }

func (Rastrigin) Evaluate(p vector.Vector) float64 {
	s := 10 * float64(p.Dim())
	for i := 0; i < p.Dim(); i++ {
		x := p.At(i)
		s += x*x - 10*math.Cos(2*math.Pi*x)
	}
	return s
}

// Ackley has a nearly flat outer region and minimum 0 at the origin.
type Ackley struct{}

func (Ackley) Name() string { return string(ObjectiveAckley) }
func (Ackley) Dim() int     { return 0 }

func (Ackley) Evaluate(p vector.Vector) float64 {
	n := float64(p.Dim())
	if n == 0 {
		return 0
	}
	sumSq, sumCos := 0.0, 0.0
	for i := 0; i < p.Dim(); i++ {
		x := p.At(i)
		sumSq += x * x
		sumCos += math.Cos(2 * math.Pi * x)
	}
	v := -20*math.Exp(-0.2*math.Sqrt(sumSq/n)) - math.Exp(sumCos/n) + 20 + math.E
	// Rounding can dip a few ulps below zero near the optimum.
	return math.Max(v, 0)
}
