// Package optimizer drives a swarm through the evaluate, best-tracking,
// convergence check and update cycle until it converges, exhausts its
// iteration budget or is cancelled.
package optimizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/GoSim-25-26J-441/swarm-core/internal/metrics"
	"github.com/GoSim-25-26J-441/swarm-core/internal/objective"
	"github.com/GoSim-25-26J-441/swarm-core/internal/swarm"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/logger"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/vector"
)

// State is the terminal (or current) state of a run.
type State string

const (
	StateRunning   State = "running"
	StateConverged State = "converged"
	StateExhausted State = "exhausted"
	StateCancelled State = "cancelled"
)

// Settings holds everything a run needs besides the objective and the
// random source.
type Settings struct {
	Init swarm.InitParams
	Step swarm.StepParams
	// W is the initial inertia weight.
	W          float64
	Threshold  float64
	Iterations int
	// StallIterations stops the run once the global best has not moved for
	// this many iterations. Zero disables it.
	StallIterations int
	RecordHistory   bool

	Refine           bool
	RefineIterations int
}

// Validate checks settings that the swarm does not check itself.
func (s Settings) Validate() error {
	if err := s.Init.Validate(); err != nil {
		return err
	}
	if err := s.Step.Validate(); err != nil {
		return err
	}
	if s.Step.DeltaT != s.Init.DeltaT {
		return fmt.Errorf("%w: init and step delta_t differ (%g != %g)", swarm.ErrInvalidParams, s.Init.DeltaT, s.Step.DeltaT)
	}
	if s.Iterations < 0 {
		return fmt.Errorf("%w: iterations cannot be negative, got %d", swarm.ErrInvalidParams, s.Iterations)
	}
	if s.Threshold < 0 {
		return fmt.Errorf("%w: threshold cannot be negative, got %g", swarm.ErrInvalidParams, s.Threshold)
	}
	if s.StallIterations < 0 {
		return fmt.Errorf("%w: stall_iterations cannot be negative, got %d", swarm.ErrInvalidParams, s.StallIterations)
	}
	if s.Refine && s.RefineIterations <= 0 {
		return fmt.Errorf("%w: refine_iterations must be positive, got %d", swarm.ErrInvalidParams, s.RefineIterations)
	}
	return nil
}

// OptimizationStep is the state of the search after the best-tracking phase
// of one iteration.
type OptimizationStep struct {
	Iteration     int     `json:"iteration"`
	BestFitness   float64 `json:"best_fitness"`
	BestObjective float64 `json:"best_objective"`
	// Inertia is the weight the update of this iteration uses.
	Inertia  float64 `json:"inertia"`
	Improved bool    `json:"improved"`
}

// Result is the outcome of a run. The PSO answer is Position; Refined, when
// present, is a local search started from it and never replaces it.
type Result struct {
	State     State
	Position  vector.Vector
	Fitness   float64
	Objective float64
	// Iterations counts evaluation passes performed.
	Iterations int
	// ConvergedAt is the iteration at which the run converged, or -1.
	ConvergedAt       int
	ConvergenceReason string
	FinalInertia      float64
	History           []OptimizationStep
	Refined           *Refinement
}

// Observer is notified after the best-tracking phase of every iteration. It
// runs on the optimizer goroutine and must not modify the swarm.
type Observer func(step OptimizationStep, s *swarm.Swarm)

// Optimizer runs PSO for one objective.
type Optimizer struct {
	settings  Settings
	scorer    *objective.Scorer
	src       swarm.Source
	evaluator swarm.Evaluator
	strategy  ConvergenceStrategy
	logger    *slog.Logger
	observers []Observer
}

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithEvaluator replaces the sequential fitness evaluator.
func WithEvaluator(e swarm.Evaluator) Option {
	return func(o *Optimizer) { o.evaluator = e }
}

// WithLogger sets the logger; the package default logger is used otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(o *Optimizer) { o.logger = l }
}

// WithObserver adds an iteration observer.
func WithObserver(obs Observer) Option {
	return func(o *Optimizer) { o.observers = append(o.observers, obs) }
}

// WithMetrics records per-iteration swarm metrics into c under labels.
func WithMetrics(c *metrics.Collector, labels map[string]string) Option {
	return WithObserver(func(step OptimizationStep, s *swarm.Swarm) {
		metrics.RecordSample(c, metrics.Sample{
			Iteration:     step.Iteration,
			BestObjective: step.BestObjective,
			Inertia:       step.Inertia,
			Diversity:     s.Diversity(),
			MeanSpeed:     s.MeanSpeed(),
		}, labels)
	})
}

// WithConvergence replaces the strategy built from Settings. The threshold
// criterion is always kept.
func WithConvergence(cs ConvergenceStrategy) Option {
	return func(o *Optimizer) {
		o.strategy = NewCombinedStrategy(NewThresholdStrategy(o.settings.Threshold), cs)
	}
}

// New creates an optimizer. src supplies every random draw of the run, so a
// deterministic src gives a bit-identical run.
func New(settings Settings, scorer *objective.Scorer, src swarm.Source, opts ...Option) (*Optimizer, error) {
	if scorer == nil {
		return nil, errors.New("scorer is required")
	}
	if src == nil {
		return nil, errors.New("random source is required")
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if err := objective.CheckDim(scorer.Function(), settings.Init.Dim); err != nil {
		return nil, fmt.Errorf("%w: %w", swarm.ErrInvalidParams, err)
	}

	o := &Optimizer{
		settings:  settings,
		scorer:    scorer,
		src:       src,
		evaluator: swarm.Sequential{},
		strategy:  defaultStrategy(settings),
		logger:    logger.Default,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Settings returns the settings the optimizer was built with.
func (o *Optimizer) Settings() Settings {
	return o.settings
}

// Run executes the optimization. When ctx ends between iterations the
// partial result is returned in StateCancelled together with ctx.Err().
func (o *Optimizer) Run(ctx context.Context) (*Result, error) {
	s, err := swarm.Initialize(o.settings.Init, o.scorer, o.src)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize swarm: %w", err)
	}

	log := o.logger.With("objective", o.scorer.Function().Name())
	log.Info("optimization started",
		"particles", s.Len(),
		"dimensions", o.settings.Init.Dim,
		"iterations", o.settings.Iterations,
		"direction", o.scorer.Direction())

	w := o.settings.W
	res := &Result{State: StateRunning, ConvergedAt: -1}
	history := make([]OptimizationStep, 0, min(o.settings.Iterations, 4096))

	for iter := 0; iter < o.settings.Iterations; iter++ {
		if err := ctx.Err(); err != nil {
			return o.finish(ctx, log, s, res, StateCancelled, iter, w, history), err
		}

		current, personal, err := o.evaluator.Evaluate(ctx, s)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return o.finish(ctx, log, s, res, StateCancelled, iter, w, history), ctxErr
			}
			return nil, fmt.Errorf("failed to evaluate swarm at iteration %d: %w", iter, err)
		}
		imp, err := s.UpdateBests(current, personal)
		if err != nil {
			return nil, fmt.Errorf("failed to update bests at iteration %d: %w", iter, err)
		}

		step := OptimizationStep{
			Iteration:     iter,
			BestFitness:   s.GlobalFitness(),
			BestObjective: o.scorer.Objective(s.GlobalFitness()),
			Inertia:       w,
			Improved:      imp.Global,
		}
		if imp.Global {
			log.Debug("new global best",
				"iteration", iter,
				"particle", imp.GlobalIndex,
				"position", s.GlobalBest().String(),
				"objective", step.BestObjective)
		}
		history = append(history, step)
		for _, obs := range o.observers {
			obs(step, s)
		}

		if ok, reason := o.strategy.CheckConvergence(history); ok {
			log.Info("early exit", "iteration", iter, "reason", reason)
			res.ConvergedAt = iter
			res.ConvergenceReason = reason
			return o.finish(ctx, log, s, res, StateConverged, iter+1, w, history), nil
		}

		w = s.Step(o.settings.Step, w, o.src)
	}

	return o.finish(ctx, log, s, res, StateExhausted, o.settings.Iterations, w, history), nil
}

func (o *Optimizer) finish(ctx context.Context, log *slog.Logger, s *swarm.Swarm, res *Result, state State, iterations int, w float64, history []OptimizationStep) *Result {
	res.State = state
	res.Position = s.GlobalBest()
	res.Fitness = s.GlobalFitness()
	res.Objective = o.scorer.Objective(res.Fitness)
	res.Iterations = iterations
	res.FinalInertia = w
	if o.settings.RecordHistory {
		res.History = history
	}

	if o.settings.Refine && state != StateCancelled {
		ref, err := Refine(ctx, o.scorer.Function(), res.Position, o.settings.RefineIterations)
		if err != nil {
			log.Warn("refinement failed", "error", err)
		} else {
			res.Refined = ref
		}
	}

	log.Info("optimization finished",
		"state", state,
		"iterations", iterations,
		"position", res.Position.String(),
		"objective", res.Objective,
		"final_inertia", w)
	return res
}
