package swarm

import "fmt"

// Improvement summarizes one best-tracking pass.
type Improvement struct {
	// Personal counts particles whose personal best moved.
	Personal int
	// Global is true when the global best moved at least once.
	Global bool
	// GlobalIndex is the last particle that moved the global best, or -1.
	GlobalIndex int
}

// UpdateBests applies one best-tracking pass. current[i] and personalBest[i]
// are the fitness of particle i's position and personal best.
//
// Particles are visited in index order. A personal best moves only when the
// current fitness is strictly better. The global best is then compared with
// the particle's (possibly just moved) personal best, always against the
// latest global fitness, so a later particle must beat an improvement made
// earlier in the same pass and the last strict improver wins.
func (s *Swarm) UpdateBests(current, personalBest []float64) (Improvement, error) {
	if len(current) != len(s.particles) || len(personalBest) != len(s.particles) {
		return Improvement{}, fmt.Errorf("fitness slices have %d and %d entries, want %d",
			len(current), len(personalBest), len(s.particles))
	}

	imp := Improvement{GlobalIndex: -1}
	for i := range s.particles {
		p := &s.particles[i]
		pbFitness := personalBest[i]
		if s.scorer.Better(current[i], pbFitness) {
			p.PersonalBest = p.Position.Clone()
			pbFitness = current[i]
			imp.Personal++
		}
		if s.scorer.Better(pbFitness, s.globalFitness) {
			s.globalBest = p.PersonalBest.Clone()
			s.globalFitness = s.scorer.Fitness(s.globalBest)
			imp.Global = true
			imp.GlobalIndex = i
		}
	}
	return imp, nil
}
