package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/GoSim-25-26J-441/swarm-core/internal/optimizer"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/config"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/logger"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/utils"
)

func main() {
	var configPath string
	var objectiveName string
	var seed int64
	var iterations int
	var logLevel string
	var history bool
	var refine bool

	flag.StringVar(&configPath, "config", "", "path to a YAML configuration file")
	flag.StringVar(&objectiveName, "objective", "", "objective function (overrides config)")
	flag.Int64Var(&seed, "seed", 0, "random seed; 0 picks one from the clock")
	flag.IntVar(&iterations, "iterations", -1, "iteration budget (overrides config)")
	flag.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flag.BoolVar(&history, "history", false, "print the per-iteration history")
	flag.BoolVar(&refine, "refine", false, "polish the result with Nelder-Mead")
	flag.Parse()

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	p := cfg.Optimization
	if objectiveName != "" {
		p.Objective = objectiveName
	}
	if seed != 0 {
		p.RNGSeed = seed
	}
	if iterations >= 0 {
		p.Iterations = iterations
	}
	if history {
		p.RecordHistory = true
	}
	if refine {
		p.Refine = true
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	logger.SetDefault(logger.NewText(cfg.LogLevel, os.Stderr))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src := utils.NewRandSource(p.RNGSeed)
	opt, err := optimizer.NewFromConfig(&p, src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	res, err := opt.Run(ctx)
	if res != nil {
		printReport(os.Stdout, &p, src.Seed(), res)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printReport(w io.Writer, p *config.Params, seed int64, res *optimizer.Result) {
	fmt.Fprintf(w, "objective:      %s (%s, %d dimensions)\n", p.Objective, p.Direction, p.Dimensions)
	fmt.Fprintf(w, "seed:           %d\n", seed)
	fmt.Fprintf(w, "state:          %s\n", res.State)
	fmt.Fprintf(w, "iterations:     %d\n", res.Iterations)
	if res.ConvergedAt >= 0 {
		fmt.Fprintf(w, "converged at:   %d (%s)\n", res.ConvergedAt, res.ConvergenceReason)
	} else {
		fmt.Fprintf(w, "converged at:   never\n")
	}
	fmt.Fprintf(w, "best position:  %v\n", res.Position.Coords())
	fmt.Fprintf(w, "best fitness:   %g\n", res.Fitness)
	fmt.Fprintf(w, "best objective: %g\n", res.Objective)
	fmt.Fprintf(w, "final inertia:  %g\n", res.FinalInertia)

	if res.Refined != nil {
		fmt.Fprintf(w, "refined:        %v objective %g after %d evaluations (%s)\n",
			res.Refined.Position.Coords(), res.Refined.Objective, res.Refined.Evals, res.Refined.Status)
	}

	if len(res.History) > 0 {
		fmt.Fprintln(w, "\niteration  best_objective  inertia  improved")
		for _, h := range res.History {
			fmt.Fprintf(w, "%9d  %14g  %7.4f  %v\n", h.Iteration, h.BestObjective, h.Inertia, h.Improved)
		}
	}
}
