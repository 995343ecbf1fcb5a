// Package vector provides a fixed-dimension, immutable point in R^D used for
// particle positions and velocities.
package vector

import (
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Vector is an immutable ordered tuple of float64 coordinates. The zero value
// is the empty (zero-dimensional) vector. All arithmetic returns a new Vector.
type Vector struct {
	c []float64
}

// New returns the zero vector of the given dimension.
func New(dim int) Vector {
	if dim < 0 {
		panic(fmt.Sprintf("vector: negative dimension %d", dim))
	}
	return Vector{c: make([]float64, dim)}
}

// Of returns a vector holding a copy of the given coordinates.
func Of(coords ...float64) Vector {
	c := make([]float64, len(coords))
	copy(c, coords)
	return Vector{c: c}
}

// Fill returns a vector of dimension dim with every coordinate set to v.
func Fill(dim int, v float64) Vector {
	out := New(dim)
	for i := range out.c {
		out.c[i] = v
	}
	return out
}

// Dim returns the number of coordinates.
func (v Vector) Dim() int {
	return len(v.c)
}

// At returns coordinate i.
func (v Vector) At(i int) float64 {
	return v.c[i]
}

// Coords returns a copy of the coordinates.
func (v Vector) Coords() []float64 {
	out := make([]float64, len(v.c))
	copy(out, v.c)
	return out
}

// Clone returns a copy that shares no storage with v.
func (v Vector) Clone() Vector {
	return Of(v.c...)
}

// Apply returns a copy of v with fn applied to every coordinate.
func (v Vector) Apply(fn func(float64) float64) Vector {
	out := New(v.Dim())
	for i, x := range v.c {
		out.c[i] = fn(x)
	}
	return out
}

// Add returns v + o.
func (v Vector) Add(o Vector) Vector {
	mustMatch("add", v, o)
	out := New(v.Dim())
	floats.AddTo(out.c, v.c, o.c)
	return out
}

// Sub returns v - o.
func (v Vector) Sub(o Vector) Vector {
	mustMatch("subtract", v, o)
	out := New(v.Dim())
	floats.SubTo(out.c, v.c, o.c)
	return out
}

// Scale returns s * v.
func (v Vector) Scale(s float64) Vector {
	out := New(v.Dim())
	floats.ScaleTo(out.c, s, v.c)
	return out
}

// Norm returns the Euclidean length of v.
func (v Vector) Norm() float64 {
	if len(v.c) == 0 {
		return 0
	}
	return floats.Norm(v.c, 2)
}

// Distance returns the Euclidean distance between v and o.
func (v Vector) Distance(o Vector) float64 {
	mustMatch("measure distance between", v, o)
	if len(v.c) == 0 {
		return 0
	}
	return floats.Distance(v.c, o.c, 2)
}

// Equal reports whether v and o have the same dimension and bit-identical
// coordinates.
func (v Vector) Equal(o Vector) bool {
	return floats.Equal(v.c, o.c)
}

// Mean returns the centroid of vs. All vectors must share a dimension.
func Mean(vs []Vector) Vector {
	if len(vs) == 0 {
		return Vector{}
	}
	sum := New(vs[0].Dim())
	for _, v := range vs {
		mustMatch("average", sum, v)
		floats.Add(sum.c, v.c)
	}
	floats.Scale(1/float64(len(vs)), sum.c)
	return sum
}

func (v Vector) String() string {
	parts := make([]string, len(v.c))
	for i, x := range v.c {
		parts[i] = strconv.FormatFloat(x, 'g', -1, 64)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func mustMatch(op string, a, b Vector) {
	if len(a.c) != len(b.c) {
		panic(fmt.Sprintf("vector: cannot %s vectors of different dimensions: %d != %d", op, len(a.c), len(b.c)))
	}
}
