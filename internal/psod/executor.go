package psod

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/swarm-core/internal/metrics"
	"github.com/GoSim-25-26J-441/swarm-core/internal/optimizer"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/logger"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/models"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/utils"
)

// RunExecutor manages asynchronous run execution and per-run cancellation.
// At most maxConcurrent optimizations execute at once; started runs beyond
// that wait in the running state for a free slot.
type RunExecutor struct {
	store   *RunStore
	archive Archive
	slots   chan struct{}
	logger  *slog.Logger

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup
}

// NewRunExecutor creates an executor. archive may be nil.
func NewRunExecutor(store *RunStore, archive Archive, maxConcurrent int) *RunExecutor {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &RunExecutor{
		store:   store,
		archive: archive,
		slots:   make(chan struct{}, maxConcurrent),
		logger:  logger.Default,
		cancels: make(map[string]context.CancelFunc),
	}
}

// SetLogger replaces the executor logger.
func (e *RunExecutor) SetLogger(l *slog.Logger) {
	e.logger = l
}

// Start begins executing a run asynchronously.
// Returns the updated run state (running) or an error.
//
// The status change and the registration of the run's cancel function happen
// under e.mu, the same lock Stop holds, so a concurrent Stop either sees a
// pending run or finds the cancel function.
func (e *RunExecutor) Start(runID string) (*RunRecord, error) {
	if runID == "" {
		return nil, ErrRunIDMissing
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	rec, ok := e.store.Get(runID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	switch {
	case rec.Run.Status == models.RunStatusRunning:
		return rec, nil
	case rec.Run.Status.IsTerminal():
		return nil, fmt.Errorf("%w: %s", ErrRunTerminal, runID)
	}

	updated, err := e.store.SetStatus(runID, models.RunStatusRunning, "")
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.cancels[runID] = cancel
	e.wg.Add(1)
	go e.runOptimization(ctx, runID)
	return updated, nil
}

// Stop requests cancellation for a run and marks it cancelled. Stopping a
// pending run cancels it without ever executing it.
func (e *RunExecutor) Stop(runID string) (*RunRecord, error) {
	if runID == "" {
		return nil, ErrRunIDMissing
	}

	e.mu.Lock()
	updated, err := e.store.SetStatus(runID, models.RunStatusCancelled, "")
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	cancel, ok := e.cancels[runID]
	e.mu.Unlock()

	if ok {
		cancel()
	} else {
		e.archiveRun(runID)
	}
	return updated, nil
}

// Shutdown cancels every active run and waits for them to finish or for ctx
// to end.
func (e *RunExecutor) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	for _, cancel := range e.cancels {
		cancel()
	}
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks until every started run has finished.
func (e *RunExecutor) Wait() {
	e.wg.Wait()
}

func (e *RunExecutor) cleanup(runID string) {
	e.mu.Lock()
	if cancel, ok := e.cancels[runID]; ok {
		cancel()
		delete(e.cancels, runID)
	}
	e.mu.Unlock()
}

func (e *RunExecutor) fail(runID string, err error) {
	e.logger.Error("run failed", "run_id", runID, "error", err)
	if _, setErr := e.store.SetStatus(runID, models.RunStatusFailed, err.Error()); setErr != nil {
		e.logger.Error("failed to set failed status", "run_id", runID, "error", setErr)
	}
	e.archiveRun(runID)
}

func (e *RunExecutor) runOptimization(ctx context.Context, runID string) {
	defer e.wg.Done()
	defer e.cleanup(runID)

	select {
	case e.slots <- struct{}{}:
		defer func() { <-e.slots }()
	case <-ctx.Done():
		e.logger.Info("run cancelled before execution", "run_id", runID)
		if _, err := e.store.SetStatus(runID, models.RunStatusCancelled, ""); err != nil && !errors.Is(err, ErrRunTerminal) {
			e.logger.Error("failed to set cancelled status", "run_id", runID, "error", err)
		}
		e.archiveRun(runID)
		return
	}

	rec, ok := e.store.Get(runID)
	if !ok {
		e.logger.Error("run not found", "run_id", runID)
		return
	}

	src := utils.NewRandSource(rec.Params.RNGSeed)
	if err := e.store.SetMetadata(runID, "rng_seed", strconv.FormatInt(src.Seed(), 10)); err != nil {
		e.logger.Warn("failed to record seed", "run_id", runID, "error", err)
	}

	labels := metrics.CreateRunLabels(runID)
	rec.Collector.Start()
	opt, err := optimizer.NewFromConfig(rec.Params, src,
		optimizer.WithLogger(e.logger.With("run_id", runID)),
		optimizer.WithMetrics(rec.Collector, labels))
	if err != nil {
		e.fail(runID, fmt.Errorf("invalid params: %w", err))
		return
	}

	e.logger.Info("starting optimization", "run_id", runID, "objective", rec.Params.Objective)
	res, err := opt.Run(ctx)
	rec.Collector.Stop()
	if err != nil && !errors.Is(err, context.Canceled) {
		e.fail(runID, err)
		return
	}

	if setErr := e.store.SetResult(runID, resultToModel(res), metrics.ConvertToRunMetrics(rec.Collector, labels)); setErr != nil {
		e.logger.Error("failed to store result", "run_id", runID, "error", setErr)
	}

	final := models.RunStatusCompleted
	if res.State == optimizer.StateCancelled {
		final = models.RunStatusCancelled
	}
	if _, err := e.store.SetStatus(runID, final, ""); err != nil && !errors.Is(err, ErrRunTerminal) {
		e.logger.Error("failed to set final status", "run_id", runID, "error", err)
	}
	e.logger.Info("run finished", "run_id", runID,
		"state", res.State,
		"iterations", res.Iterations,
		"objective", res.Objective)
	e.archiveRun(runID)
}

// archiveRun writes the terminal state of a run to the archive, if any.
func (e *RunExecutor) archiveRun(runID string) {
	if e.archive == nil {
		return
	}
	rec, ok := e.store.Get(runID)
	if !ok {
		return
	}
	ar, err := archivedRun(rec)
	if err != nil {
		e.logger.Error("failed to build archive entry", "run_id", runID, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.archive.Save(ctx, ar); err != nil {
		e.logger.Error("failed to archive run", "run_id", runID, "error", err)
	}
}

func archivedRun(rec *RunRecord) (*models.ArchivedRun, error) {
	params, err := rec.Params.ToYAML()
	if err != nil {
		return nil, err
	}
	ar := &models.ArchivedRun{
		ID:          rec.Run.ID,
		Objective:   rec.Run.Objective,
		Status:      rec.Run.Status,
		State:       string(optimizer.StateCancelled),
		Position:    []float64{},
		ConvergedAt: -1,
		Params:      string(params),
	}
	if rec.Run.Status == models.RunStatusFailed {
		ar.State = "failed"
	}
	if r := rec.Run.Result; r != nil {
		ar.State = r.State
		ar.Position = r.Position
		ar.Value = r.Objective
		ar.Iterations = r.Iterations
		ar.ConvergedAt = r.ConvergedAt
	}
	return ar, nil
}

func resultToModel(res *optimizer.Result) *models.RunResult {
	out := &models.RunResult{
		State:             string(res.State),
		Position:          res.Position.Coords(),
		Fitness:           res.Fitness,
		Objective:         res.Objective,
		Iterations:        res.Iterations,
		ConvergedAt:       res.ConvergedAt,
		ConvergenceReason: res.ConvergenceReason,
		FinalInertia:      res.FinalInertia,
	}
	if res.Refined != nil {
		out.Refined = &models.RefinedResult{
			Position:  res.Refined.Position.Coords(),
			Objective: res.Refined.Objective,
			Evals:     res.Refined.Evals,
		}
	}
	return out
}
