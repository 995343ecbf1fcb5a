package swarm

import (
	"github.com/GoSim-25-26J-441/swarm-core/pkg/utils"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/vector"
)

// Diversity is the mean Euclidean distance of particle positions from their
// centroid.
func (s *Swarm) Diversity() float64 {
	if len(s.particles) == 0 {
		return 0
	}
	positions := make([]vector.Vector, len(s.particles))
	for i, p := range s.particles {
		positions[i] = p.Position
	}
	centroid := vector.Mean(positions)
	distances := make([]float64, len(positions))
	for i, pos := range positions {
		distances[i] = pos.Distance(centroid)
	}
	return utils.Mean(distances)
}

// MeanSpeed is the mean Euclidean norm of particle velocities.
func (s *Swarm) MeanSpeed() float64 {
	if len(s.particles) == 0 {
		return 0
	}
	speeds := make([]float64, len(s.particles))
	for i, p := range s.particles {
		speeds[i] = p.Velocity.Norm()
	}
	return utils.Mean(speeds)
}
