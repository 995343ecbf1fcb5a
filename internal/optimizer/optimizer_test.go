package optimizer

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/GoSim-25-26J-441/swarm-core/internal/metrics"
	"github.com/GoSim-25-26J-441/swarm-core/internal/objective"
	"github.com/GoSim-25-26J-441/swarm-core/internal/swarm"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/config"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/logger"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/utils"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/vector"
)

// flat evaluates to 1 everywhere, so no position is ever strictly better.
type flat struct{}

func (flat) Name() string                   { return "flat" }
func (flat) Dim() int                       { return 0 }
func (flat) Evaluate(vector.Vector) float64 { return 1 }

func quietParams() config.Params {
	p := config.DefaultParams()
	p.RNGSeed = 7
	return p
}

func newOptimizer(t *testing.T, p config.Params, opts ...Option) *Optimizer {
	t.Helper()
	opts = append([]Option{WithLogger(logger.Discard())}, opts...)
	o, err := NewFromConfig(&p, utils.NewRandSource(p.RNGSeed), opts...)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	return o
}

// A swarm seeded at a root of Himmelblau converges on the first check,
// before any particle is moved.
func TestRunConvergesAtIterationZeroWhenSeededAtRoot(t *testing.T) {
	p := quietParams()
	p.SeedPoint = []float64{3, 2}

	res, err := newOptimizer(t, p).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.State != StateConverged {
		t.Fatalf("state = %s, want %s", res.State, StateConverged)
	}
	if res.ConvergedAt != 0 || res.Iterations != 1 {
		t.Fatalf("converged at %d after %d iterations, want 0 after 1", res.ConvergedAt, res.Iterations)
	}
	if !res.Position.Equal(vector.Of(3, 2)) {
		t.Fatalf("position = %v, want (3, 2)", res.Position)
	}
	if res.Fitness != objective.ReciprocalSentinel || res.Objective != 0 {
		t.Fatalf("fitness/objective = %g/%g, want sentinel/0", res.Fitness, res.Objective)
	}
	if res.FinalInertia != p.W {
		t.Fatalf("inertia changed before any update: %g", res.FinalInertia)
	}
	if !strings.Contains(res.ConvergenceReason, "threshold") {
		t.Fatalf("unexpected reason %q", res.ConvergenceReason)
	}
}

func TestRunZeroIterationsIsExhausted(t *testing.T) {
	p := quietParams()
	p.Iterations = 0

	res, err := newOptimizer(t, p).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.State != StateExhausted || res.Iterations != 0 || res.ConvergedAt != -1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if !res.Position.Equal(vector.Of(5, 5)) {
		t.Fatalf("position = %v, want the seeded corner (5, 5)", res.Position)
	}
	if res.Objective != 890 {
		t.Fatalf("objective = %g, want 890", res.Objective)
	}
}

func TestRunExhaustsBudget(t *testing.T) {
	p := quietParams()
	p.Iterations = 25
	p.Threshold = 0
	p.RecordHistory = true

	res, err := newOptimizer(t, p).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.State != StateExhausted || res.Iterations != 25 || len(res.History) != 25 {
		t.Fatalf("state %s after %d iterations with %d history entries", res.State, res.Iterations, len(res.History))
	}

	w := p.W
	for i, step := range res.History {
		if step.Iteration != i {
			t.Fatalf("history[%d].Iteration = %d", i, step.Iteration)
		}
		if step.Inertia != w {
			t.Fatalf("history[%d].Inertia = %g, want %g", i, step.Inertia, w)
		}
		w = swarm.DecayInertia(w, p.Beta, p.WLowerBound)
		if i > 0 && step.BestObjective > res.History[i-1].BestObjective {
			t.Fatalf("global best regressed at iteration %d: %g > %g", i, step.BestObjective, res.History[i-1].BestObjective)
		}
	}
	if res.FinalInertia != w {
		t.Fatalf("final inertia = %g, want %g", res.FinalInertia, w)
	}
	if res.Objective != res.History[len(res.History)-1].BestObjective {
		t.Fatalf("result objective %g differs from last history entry", res.Objective)
	}
}

func TestRunHistoryOmittedByDefault(t *testing.T) {
	p := quietParams()
	p.Iterations = 5
	res, err := newOptimizer(t, p).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.History != nil {
		t.Fatalf("expected no history, got %d entries", len(res.History))
	}
}

func TestRunIsDeterministic(t *testing.T) {
	p := quietParams()
	p.Iterations = 200
	p.RecordHistory = true

	a, err := newOptimizer(t, p).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	b, err := newOptimizer(t, p).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("runs with the same seed differ (-a +b):\n%s", diff)
	}
}

func TestRunParallelMatchesSequential(t *testing.T) {
	p := quietParams()
	p.Iterations = 100
	p.RecordHistory = true

	seq, err := newOptimizer(t, p).Run(context.Background())
	if err != nil {
		t.Fatalf("sequential Run: %v", err)
	}
	p.ParallelEval = true
	p.Workers = 4
	par, err := newOptimizer(t, p).Run(context.Background())
	if err != nil {
		t.Fatalf("parallel Run: %v", err)
	}
	if diff := cmp.Diff(seq, par); diff != "" {
		t.Fatalf("parallel run differs (-seq +par):\n%s", diff)
	}
}

func TestRunFindsHimmelblauRoot(t *testing.T) {
	p := quietParams()
	p.Direction = string(objective.DirectionMinimize)
	p.Clamp = string(swarm.ClampSymmetric)
	p.C1, p.C2 = 1.49618, 1.49618
	p.W, p.Beta, p.WLowerBound = 0.7298, 1, 0
	p.VMax = 2
	p.Iterations = 20000

	res, err := newOptimizer(t, p).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.State != StateConverged {
		t.Fatalf("state = %s after %d iterations (objective %g)", res.State, res.Iterations, res.Objective)
	}
	if res.Objective >= p.Threshold {
		t.Fatalf("objective %g not below threshold", res.Objective)
	}
	nearest := math.Inf(1)
	for _, root := range objective.HimmelblauMinima {
		nearest = math.Min(nearest, res.Position.Distance(root))
	}
	if nearest > 0.05 {
		t.Fatalf("position %v is %g away from the nearest root", res.Position, nearest)
	}
}

func TestRunStallConverges(t *testing.T) {
	settings, err := SettingsFromParams(func() *config.Params {
		p := quietParams()
		p.StallIterations = 5
		return &p
	}())
	if err != nil {
		t.Fatalf("SettingsFromParams: %v", err)
	}
	scorer, err := objective.NewScorer(flat{}, objective.DirectionMaximizeReciprocal)
	if err != nil {
		t.Fatalf("NewScorer: %v", err)
	}
	o, err := New(settings, scorer, utils.NewRandSource(1), WithLogger(logger.Discard()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.State != StateConverged || res.ConvergedAt != 4 || res.Iterations != 5 {
		t.Fatalf("unexpected result: state %s, converged at %d, %d iterations", res.State, res.ConvergedAt, res.Iterations)
	}
	if !strings.HasPrefix(res.ConvergenceReason, "stall") {
		t.Fatalf("unexpected reason %q", res.ConvergenceReason)
	}
}

func TestRunCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := newOptimizer(t, quietParams()).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if res == nil || res.State != StateCancelled || res.Iterations != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
	if !res.Position.Equal(vector.Of(5, 5)) {
		t.Fatalf("position = %v, want the seed", res.Position)
	}
}

func TestRunCancelledMidway(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := quietParams()
	p.Threshold = 0
	o := newOptimizer(t, p, WithObserver(func(step OptimizationStep, _ *swarm.Swarm) {
		if step.Iteration == 3 {
			cancel()
		}
	}))

	res, err := o.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if res.State != StateCancelled || res.Iterations != 4 || res.ConvergedAt != -1 {
		t.Fatalf("unexpected result: state %s after %d iterations", res.State, res.Iterations)
	}
}

func TestRunRecordsMetrics(t *testing.T) {
	p := quietParams()
	p.Iterations = 10
	p.Threshold = 0

	c := metrics.NewCollector()
	labels := metrics.CreateRunLabels("test")
	if _, err := newOptimizer(t, p, WithMetrics(c, labels)).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	rm := metrics.ConvertToRunMetrics(c, labels)
	if rm.Iterations != 10 {
		t.Fatalf("expected 10 recorded iterations, got %d", rm.Iterations)
	}
	if rm.Inertia.Max != p.W {
		t.Fatalf("expected max inertia %g, got %g", p.W, rm.Inertia.Max)
	}
	// Samples are taken before the update of their iteration, so only the
	// first one can carry unclamped initial velocities.
	points := c.GetSeries(metrics.MetricMeanSpeed, labels)
	limit := p.VMax * math.Sqrt(float64(p.Dimensions))
	for _, pt := range points[1:] {
		if pt.Value > limit+1e-12 {
			t.Fatalf("mean speed %g at iteration %d exceeds the clamp", pt.Value, pt.Iteration)
		}
	}
}

func TestRunWithRefinement(t *testing.T) {
	p := quietParams()
	p.Iterations = 50
	p.Threshold = 0
	p.Refine = true

	res, err := newOptimizer(t, p).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Refined == nil {
		t.Fatalf("expected a refinement")
	}
	if res.Refined.Objective > res.Objective*(1+1e-12) {
		t.Fatalf("refinement %g is worse than the swarm result %g", res.Refined.Objective, res.Objective)
	}
}

func TestNewFromConfigErrors(t *testing.T) {
	p := quietParams()
	p.Objective = "nope"
	_, err := NewFromConfig(&p, utils.NewRandSource(1))
	var unknown *objective.UnknownObjectiveError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownObjectiveError, got %v", err)
	}

	p = quietParams()
	p.Dimensions = 3
	if _, err := NewFromConfig(&p, utils.NewRandSource(1)); !errors.Is(err, swarm.ErrInvalidParams) {
		t.Fatalf("expected ErrInvalidParams for himmelblau in 3 dimensions, got %v", err)
	}

	p = quietParams()
	p.Objective = "rosenbrock"
	p.Dimensions = 1
	var dimErr *objective.DimensionError
	if _, err := NewFromConfig(&p, utils.NewRandSource(1)); !errors.Is(err, swarm.ErrInvalidParams) || !errors.As(err, &dimErr) {
		t.Fatalf("expected DimensionError for rosenbrock in 1 dimension, got %v", err)
	}

	p = quietParams()
	p.NParticles = 0
	var vErr *config.ValidationError
	if _, err := NewFromConfig(&p, utils.NewRandSource(1)); !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	if _, err := NewFromConfig(nil, utils.NewRandSource(1)); err == nil {
		t.Fatalf("expected error for nil params")
	}
}

func TestSettingsValidate(t *testing.T) {
	settings, err := SettingsFromParams(func() *config.Params { p := quietParams(); return &p }())
	if err != nil {
		t.Fatalf("SettingsFromParams: %v", err)
	}

	bad := settings
	bad.Step.DeltaT = 2
	if err := bad.Validate(); !errors.Is(err, swarm.ErrInvalidParams) {
		t.Fatalf("expected ErrInvalidParams for mismatched delta_t, got %v", err)
	}
	bad = settings
	bad.Iterations = -1
	if err := bad.Validate(); !errors.Is(err, swarm.ErrInvalidParams) {
		t.Fatalf("expected ErrInvalidParams for negative iterations, got %v", err)
	}
}
