package optimizer

import (
	"fmt"
	"strings"
)

// ConvergenceStrategy defines how to detect convergence
type ConvergenceStrategy interface {
	// CheckConvergence checks if optimization has converged based on history.
	// The last entry of history is the iteration being checked.
	CheckConvergence(history []OptimizationStep) (bool, string)
	// Name returns the name of the convergence strategy
	Name() string
}

// ThresholdStrategy converges when the raw objective value of the global best
// drops strictly below a threshold.
type ThresholdStrategy struct {
	threshold float64
}

// NewThresholdStrategy creates a threshold convergence strategy
func NewThresholdStrategy(threshold float64) *ThresholdStrategy {
	return &ThresholdStrategy{threshold: threshold}
}

func (s *ThresholdStrategy) Name() string {
	return "threshold"
}

func (s *ThresholdStrategy) CheckConvergence(history []OptimizationStep) (bool, string) {
	if len(history) == 0 {
		return false, ""
	}
	last := history[len(history)-1]
	if last.BestObjective < s.threshold {
		return true, fmt.Sprintf("objective %g below threshold %g", last.BestObjective, s.threshold)
	}
	return false, ""
}

// StallStrategy converges when the global best has not moved for a number of
// consecutive iterations.
type StallStrategy struct {
	iterations int
}

// NewStallStrategy creates a stall convergence strategy
func NewStallStrategy(iterations int) *StallStrategy {
	return &StallStrategy{iterations: iterations}
}

func (s *StallStrategy) Name() string {
	return "stall"
}

func (s *StallStrategy) CheckConvergence(history []OptimizationStep) (bool, string) {
	if s.iterations <= 0 || len(history) < s.iterations {
		return false, ""
	}
	stalled := 0
	for i := len(history) - 1; i >= 0 && !history[i].Improved; i-- {
		stalled++
	}
	if stalled >= s.iterations {
		return true, fmt.Sprintf("no improvement for %d iterations", stalled)
	}
	return false, ""
}

// CombinedStrategy converges as soon as any of its strategies does. The
// first one to fire, in order, supplies the reason.
type CombinedStrategy struct {
	strategies []ConvergenceStrategy
}

// NewCombinedStrategy creates a strategy that combines several. Nil entries
// are skipped.
func NewCombinedStrategy(strategies ...ConvergenceStrategy) *CombinedStrategy {
	cs := &CombinedStrategy{}
	for _, s := range strategies {
		if s != nil {
			cs.strategies = append(cs.strategies, s)
		}
	}
	return cs
}

func (s *CombinedStrategy) Name() string {
	names := make([]string, len(s.strategies))
	for i, st := range s.strategies {
		names[i] = st.Name()
	}
	return "combined(" + strings.Join(names, ",") + ")"
}

func (s *CombinedStrategy) CheckConvergence(history []OptimizationStep) (bool, string) {
	for _, st := range s.strategies {
		if ok, reason := st.CheckConvergence(history); ok {
			return true, st.Name() + ": " + reason
		}
	}
	return false, ""
}

func defaultStrategy(s Settings) ConvergenceStrategy {
	threshold := NewThresholdStrategy(s.Threshold)
	if s.StallIterations > 0 {
		return NewCombinedStrategy(threshold, NewStallStrategy(s.StallIterations))
	}
	return NewCombinedStrategy(threshold)
}
