package swarm

import (
	"fmt"
	"strings"

	"github.com/GoSim-25-26J-441/swarm-core/internal/objective"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/vector"
)

// Swarm owns its particles and the global best. It is not safe for concurrent
// mutation; the optimizer drives it from a single goroutine.
type Swarm struct {
	particles     []Particle
	globalBest    vector.Vector
	globalFitness float64
	scorer        *objective.Scorer
}

// Initialize creates a swarm of p.NParticles particles with positions drawn
// uniformly from [XMin, XMax] and velocities from the symmetric range scaled
// by Alpha/DeltaT. Each particle consumes Dim position draws followed by Dim
// velocity draws from src. The global best starts at p.Seed.
func Initialize(p InitParams, scorer *objective.Scorer, src Source) (*Swarm, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if scorer == nil {
		return nil, invalid("scorer is required")
	}
	if src == nil {
		return nil, invalid("random source is required")
	}
	if err := objective.CheckDim(scorer.Function(), p.Dim); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}

	seed := p.Seed
	if seed.Dim() == 0 {
		seed = vector.Fill(p.Dim, p.XMax)
	}

	span := p.XMax - p.XMin
	particles := make([]Particle, p.NParticles)
	for i := range particles {
		pos := make([]float64, p.Dim)
		for j := range pos {
			pos[j] = p.XMin + src.Float64()*span
		}
		vel := make([]float64, p.Dim)
		for j := range vel {
			vel[j] = p.Alpha / p.DeltaT * (-span/2 + src.Float64()*span)
		}
		particles[i] = newParticle(vector.Of(pos...), vector.Of(vel...))
	}

	return &Swarm{
		particles:     particles,
		globalBest:    seed.Clone(),
		globalFitness: scorer.Fitness(seed),
		scorer:        scorer,
	}, nil
}

// Len returns the number of particles.
func (s *Swarm) Len() int {
	return len(s.particles)
}

// Particle returns a copy of particle i.
func (s *Swarm) Particle(i int) Particle {
	return s.particles[i]
}

// Particles returns a snapshot of all particles in index order. Vectors are
// immutable, so the snapshot is unaffected by later iterations.
func (s *Swarm) Particles() []Particle {
	out := make([]Particle, len(s.particles))
	copy(out, s.particles)
	return out
}

// GlobalBest returns the best position found so far.
func (s *Swarm) GlobalBest() vector.Vector {
	return s.globalBest
}

// GlobalFitness returns the cached fitness of GlobalBest.
func (s *Swarm) GlobalFitness() float64 {
	return s.globalFitness
}

// Scorer returns the fitness convention the swarm ranks by.
func (s *Swarm) Scorer() *objective.Scorer {
	return s.scorer
}

func (s *Swarm) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "global best %v (fitness %g)\n", s.globalBest, s.globalFitness)
	for i, p := range s.particles {
		fmt.Fprintf(&b, "  %02d: %v\n", i, p)
	}
	return b.String()
}
