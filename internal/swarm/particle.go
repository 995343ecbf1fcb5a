// Package swarm implements the particle swarm: particle state, personal and
// global best tracking, and the inertia-weighted velocity/position update.
package swarm

import (
	"fmt"

	"github.com/GoSim-25-26J-441/swarm-core/pkg/vector"
)

// Source supplies uniform random numbers in [0, 1). It is injected so runs can
// be replayed; *utils.RandSource and *utils.SequenceSource satisfy it.
type Source interface {
	Float64() float64
}

// Particle is one candidate solution. Position and Velocity change every
// iteration; PersonalBest only moves to a strictly better position.
type Particle struct {
	Position     vector.Vector
	Velocity     vector.Vector
	PersonalBest vector.Vector
}

func newParticle(pos, vel vector.Vector) Particle {
	if pos.Dim() != vel.Dim() {
		panic(fmt.Sprintf("position and velocity have different dimensions: %d != %d", pos.Dim(), vel.Dim()))
	}
	return Particle{
		Position:     pos,
		Velocity:     vel,
		PersonalBest: pos.Clone(),
	}
}

func (p Particle) String() string {
	return fmt.Sprintf("x=%v v=%v pb=%v", p.Position, p.Velocity, p.PersonalBest)
}
