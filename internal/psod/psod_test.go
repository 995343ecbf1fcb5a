package psod

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/GoSim-25-26J-441/swarm-core/pkg/config"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/logger"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/models"
)

// quickParams converge on the first check: the seed is a Himmelblau root.
func quickParams() *config.Params {
	p := config.DefaultParams()
	p.SeedPoint = []float64{3, 2}
	p.RNGSeed = 1
	return &p
}

// endlessParams never converge and run far longer than any test.
func endlessParams() *config.Params {
	p := config.DefaultParams()
	p.Threshold = 0
	p.Iterations = 1 << 30
	p.RNGSeed = 1
	return &p
}

func newTestExecutor(t *testing.T, withArchive bool) (*RunStore, *RunExecutor, Archive) {
	t.Helper()
	store := NewRunStore()
	var archive Archive
	if withArchive {
		a, err := NewSQLiteArchive(filepath.Join(t.TempDir(), "archive.db"))
		if err != nil {
			t.Fatalf("NewSQLiteArchive: %v", err)
		}
		t.Cleanup(func() { _ = a.Close() })
		archive = a
	}
	executor := NewRunExecutor(store, archive, 2)
	executor.SetLogger(logger.Discard())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = executor.Shutdown(ctx)
	})
	return store, executor, archive
}

func waitForStatus(t *testing.T, store *RunStore, runID string, want models.RunStatus) *RunRecord {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		rec, ok := store.Get(runID)
		if !ok {
			t.Fatalf("run %s disappeared", runID)
		}
		if rec.Run.Status == want {
			return rec
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("run %s did not reach %s", runID, want)
	return nil
}
