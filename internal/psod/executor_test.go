package psod

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/GoSim-25-26J-441/swarm-core/pkg/models"
)

func TestExecutorRunsToCompletion(t *testing.T) {
	store, executor, archive := newTestExecutor(t, true)
	if _, err := store.Create("quick", quickParams()); err != nil {
		t.Fatalf("Create: %v", err)
	}

	rec, err := executor.Start("quick")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if rec.Run.Status != models.RunStatusRunning {
		t.Fatalf("expected running, got %s", rec.Run.Status)
	}

	rec = waitForStatus(t, store, "quick", models.RunStatusCompleted)
	executor.Wait()
	rec, _ = store.Get("quick")

	res := rec.Run.Result
	if res == nil {
		t.Fatalf("expected a result")
	}
	if res.State != "converged" || res.ConvergedAt != 0 || res.Objective != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
	if rec.Run.Metrics == nil || rec.Run.Metrics.Iterations != 1 {
		t.Fatalf("unexpected metrics %+v", rec.Run.Metrics)
	}
	if rec.Run.Metadata["rng_seed"] != "1" {
		t.Fatalf("expected effective seed in metadata, got %v", rec.Run.Metadata)
	}

	ar, err := archive.Get(context.Background(), "quick")
	if err != nil {
		t.Fatalf("archive.Get: %v", err)
	}
	if ar.Status != models.RunStatusCompleted || ar.State != "converged" || ar.Value != 0 {
		t.Fatalf("unexpected archived run %+v", ar)
	}
	if len(ar.Position) != 2 || ar.Position[0] != 3 || ar.Position[1] != 2 {
		t.Fatalf("unexpected archived position %v", ar.Position)
	}
}

func TestExecutorStartErrors(t *testing.T) {
	store, executor, _ := newTestExecutor(t, false)

	if _, err := executor.Start(""); !errors.Is(err, ErrRunIDMissing) {
		t.Fatalf("expected ErrRunIDMissing, got %v", err)
	}
	if _, err := executor.Start("missing"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}

	if _, err := store.Create("done", quickParams()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := executor.Start("done"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitForStatus(t, store, "done", models.RunStatusCompleted)
	if _, err := executor.Start("done"); !errors.Is(err, ErrRunTerminal) {
		t.Fatalf("expected ErrRunTerminal, got %v", err)
	}
}

func TestExecutorStopRunningRun(t *testing.T) {
	store, executor, archive := newTestExecutor(t, true)
	if _, err := store.Create("long", endlessParams()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := executor.Start("long"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	rec, err := executor.Stop("long")
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if rec.Run.Status != models.RunStatusCancelled {
		t.Fatalf("expected cancelled, got %s", rec.Run.Status)
	}
	executor.Wait()

	rec, _ = store.Get("long")
	if rec.Run.Status != models.RunStatusCancelled {
		t.Fatalf("status changed after stop: %s", rec.Run.Status)
	}
	if rec.Run.Result == nil || rec.Run.Result.State != "cancelled" || rec.Run.Result.ConvergedAt != -1 {
		t.Fatalf("expected partial cancelled result, got %+v", rec.Run.Result)
	}

	ar, err := archive.Get(context.Background(), "long")
	if err != nil {
		t.Fatalf("archive.Get: %v", err)
	}
	if ar.Status != models.RunStatusCancelled {
		t.Fatalf("archived status = %s", ar.Status)
	}

	if _, err := executor.Stop("long"); !errors.Is(err, ErrRunTerminal) {
		t.Fatalf("expected ErrRunTerminal stopping a cancelled run, got %v", err)
	}
}

func TestExecutorStopPendingRun(t *testing.T) {
	store, executor, archive := newTestExecutor(t, true)
	if _, err := store.Create("pending", quickParams()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := executor.Stop("pending"); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if _, err := executor.Start("pending"); !errors.Is(err, ErrRunTerminal) {
		t.Fatalf("expected ErrRunTerminal, got %v", err)
	}
	ar, err := archive.Get(context.Background(), "pending")
	if err != nil {
		t.Fatalf("archive.Get: %v", err)
	}
	if ar.State != "cancelled" || ar.Iterations != 0 || ar.ConvergedAt != -1 {
		t.Fatalf("unexpected archived run %+v", ar)
	}
	if _, err := executor.Stop("missing"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestExecutorBoundsConcurrency(t *testing.T) {
	store, executor, _ := newTestExecutor(t, false)
	for _, id := range []string{"a", "b", "c"} {
		if _, err := store.Create(id, endlessParams()); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if _, err := executor.Start(id); err != nil {
			t.Fatalf("Start %s: %v", id, err)
		}
	}

	time.Sleep(50 * time.Millisecond)
	if n := len(executor.slots); n != 2 {
		t.Fatalf("expected 2 occupied slots, got %d", n)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := executor.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	for _, id := range []string{"a", "b", "c"} {
		rec, _ := store.Get(id)
		if rec.Run.Status != models.RunStatusCancelled {
			t.Fatalf("run %s status = %s after shutdown", id, rec.Run.Status)
		}
	}
}

func TestExecutorFailsInvalidParams(t *testing.T) {
	store, executor, _ := newTestExecutor(t, false)
	p := quickParams()
	p.Dimensions = 3
	p.SeedPoint = nil
	if _, err := store.Create("bad", p); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := executor.Start("bad"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	rec := waitForStatus(t, store, "bad", models.RunStatusFailed)
	if rec.Run.Error == "" {
		t.Fatalf("expected error message")
	}
}

func TestExecutorConcurrentStartStopNeverLeaksARun(t *testing.T) {
	store, executor, _ := newTestExecutor(t, false)

	const runs = 200
	for i := 0; i < runs; i++ {
		if _, err := store.Create(fmt.Sprintf("race-%d", i), endlessParams()); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	var wg sync.WaitGroup
	for i := 0; i < runs; i++ {
		id := fmt.Sprintf("race-%d", i)
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := executor.Start(id); err != nil && !errors.Is(err, ErrRunTerminal) {
				t.Errorf("Start %s: %v", id, err)
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := executor.Stop(id); err != nil {
				t.Errorf("Stop %s: %v", id, err)
			}
		}()
	}
	wg.Wait()

	// Every run was stopped, so no optimization may keep running.
	done := make(chan struct{})
	go func() {
		executor.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatalf("a stopped run kept executing")
	}

	for i := 0; i < runs; i++ {
		rec, ok := store.Get(fmt.Sprintf("race-%d", i))
		if !ok || rec.Run.Status != models.RunStatusCancelled {
			t.Fatalf("run %d: expected cancelled, got %+v", i, rec)
		}
	}
	executor.mu.Lock()
	left := len(executor.cancels)
	executor.mu.Unlock()
	if left != 0 {
		t.Fatalf("expected no registered cancel functions, got %d", left)
	}
}
