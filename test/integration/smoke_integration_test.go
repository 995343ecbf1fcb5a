//go:build integration
// +build integration

package integration_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/GoSim-25-26J-441/swarm-core/internal/optimizer"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/config"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/logger"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/utils"
)

func TestIntegration_ConfigLoadSmoke(t *testing.T) {
	cfgPath := filepath.Join("..", "..", "config", "config.yaml")

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		t.Fatalf("LoadConfig(%s) failed: %v", cfgPath, err)
	}
	if cfg == nil {
		t.Fatalf("LoadConfig(%s) returned nil config", cfgPath)
	}
	if cfg.Optimization.Objective != "himmelblau" {
		t.Fatalf("expected himmelblau objective, got %q", cfg.Optimization.Objective)
	}
	if cfg.Server.MaxConcurrentRuns <= 0 {
		t.Fatalf("expected positive max_concurrent_runs, got %d", cfg.Server.MaxConcurrentRuns)
	}
}

func TestIntegration_OptimizerRunFromConfigSmoke(t *testing.T) {
	cfgPath := filepath.Join("..", "..", "config", "config.yaml")
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		t.Fatalf("LoadConfig(%s) failed: %v", cfgPath, err)
	}

	p := cfg.Optimization
	p.Iterations = 200
	p.RNGSeed = 42
	p.RecordHistory = true

	opt, err := optimizer.NewFromConfig(&p, utils.NewRandSource(p.RNGSeed), optimizer.WithLogger(logger.Discard()))
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}
	res, err := opt.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.State != optimizer.StateConverged && res.State != optimizer.StateExhausted {
		t.Fatalf("unexpected terminal state %s", res.State)
	}
	if res.Iterations == 0 || res.Iterations > p.Iterations {
		t.Fatalf("iterations %d outside (0, %d]", res.Iterations, p.Iterations)
	}
	if len(res.History) != res.Iterations {
		t.Fatalf("history has %d steps, want %d", len(res.History), res.Iterations)
	}
	for i := 1; i < len(res.History); i++ {
		if res.History[i].BestFitness < res.History[i-1].BestFitness {
			t.Fatalf("best fitness decreased at iteration %d", i)
		}
		if res.History[i].Inertia > res.History[i-1].Inertia {
			t.Fatalf("inertia increased at iteration %d", i)
		}
	}
	if res.Position.Dim() != p.Dimensions {
		t.Fatalf("position has %d dimensions, want %d", res.Position.Dim(), p.Dimensions)
	}
}
