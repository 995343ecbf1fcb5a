package optimizer

import (
	"fmt"

	"github.com/GoSim-25-26J-441/swarm-core/internal/objective"
	"github.com/GoSim-25-26J-441/swarm-core/internal/swarm"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/config"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/vector"
)

// SettingsFromParams converts configuration options into run settings.
func SettingsFromParams(p *config.Params) (Settings, error) {
	clamp, err := swarm.ParseClampPolicy(p.Clamp)
	if err != nil {
		return Settings{}, err
	}
	var seed vector.Vector
	if len(p.SeedPoint) > 0 {
		seed = vector.Of(p.SeedPoint...)
	}
	s := Settings{
		Init: swarm.InitParams{
			NParticles: p.NParticles,
			Dim:        p.Dimensions,
			XMin:       p.XMin,
			XMax:       p.XMax,
			Alpha:      p.Alpha,
			DeltaT:     p.DeltaT,
			Seed:       seed,
		},
		Step: swarm.StepParams{
			C1:          p.C1,
			C2:          p.C2,
			VMax:        p.VMax,
			DeltaT:      p.DeltaT,
			Beta:        p.Beta,
			WLowerBound: p.WLowerBound,
			Clamp:       clamp,
		},
		W:                p.W,
		Threshold:        p.Threshold,
		Iterations:       p.Iterations,
		StallIterations:  p.StallIterations,
		RecordHistory:    p.RecordHistory,
		Refine:           p.Refine,
		RefineIterations: p.RefineIterations,
	}
	return s, s.Validate()
}

// ScorerFromParams resolves the objective and direction named by p.
func ScorerFromParams(p *config.Params) (*objective.Scorer, error) {
	fn, err := objective.New(p.Objective)
	if err != nil {
		return nil, err
	}
	dir, err := objective.ParseDirection(p.Direction)
	if err != nil {
		return nil, err
	}
	return objective.NewScorer(fn, dir)
}

// NewFromConfig builds an optimizer from validated configuration options.
// The evaluator follows p.ParallelEval and p.Workers unless opts override it.
func NewFromConfig(p *config.Params, src swarm.Source, opts ...Option) (*Optimizer, error) {
	if p == nil {
		return nil, fmt.Errorf("params are required")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	scorer, err := ScorerFromParams(p)
	if err != nil {
		return nil, err
	}
	settings, err := SettingsFromParams(p)
	if err != nil {
		return nil, err
	}
	opts = append([]Option{WithEvaluator(swarm.NewEvaluator(p.ParallelEval, p.Workers))}, opts...)
	return New(settings, scorer, src, opts...)
}
