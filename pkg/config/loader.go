package config

import (
	"fmt"
	"math"
	"os"
)

// ValidationError reports the option that made a configuration unusable.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// LoadConfig loads and parses a configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := ParseConfigYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// validateConfig performs validation on the configuration
func validateConfig(cfg *Config) error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return invalid("log_level", "invalid value %q (must be debug, info, warn, or error)", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return invalid("log_format", "invalid value %q (must be json or text)", cfg.LogFormat)
	}

	if err := cfg.Optimization.Validate(); err != nil {
		return fmt.Errorf("optimization validation failed: %w", err)
	}
	if err := validateServer(&cfg.Server); err != nil {
		return fmt.Errorf("server validation failed: %w", err)
	}
	return nil
}

// Validate checks every option of a run. It runs before any particle is
// created so that bad input never reaches the arithmetic.
func (p *Params) Validate() error {
	if p.Objective == "" {
		return invalid("objective", "cannot be empty")
	}
	switch p.Direction {
	case "maximize_reciprocal", "minimize":
	default:
		return invalid("direction", "invalid value %q (must be maximize_reciprocal or minimize)", p.Direction)
	}
	switch p.Clamp {
	case "positive", "symmetric":
	default:
		return invalid("clamp", "invalid value %q (must be positive or symmetric)", p.Clamp)
	}

	if p.Dimensions <= 0 {
		return invalid("dimensions", "must be positive, got %d", p.Dimensions)
	}
	if p.NParticles <= 0 {
		return invalid("n_particles", "must be positive, got %d", p.NParticles)
	}
	for name, v := range map[string]float64{
		"x_min": p.XMin, "x_max": p.XMax, "c1": p.C1, "c2": p.C2, "alpha": p.Alpha,
		"w": p.W, "threshold": p.Threshold,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return invalid(name, "must be finite")
		}
	}
	if p.XMax <= p.XMin {
		return invalid("x_max", "must be greater than x_min (%g <= %g)", p.XMax, p.XMin)
	}
	if !(p.DeltaT > 0) || math.IsInf(p.DeltaT, 0) {
		return invalid("delta_t", "must be positive, got %g", p.DeltaT)
	}
	if p.VMax < 0 || math.IsNaN(p.VMax) || math.IsInf(p.VMax, 0) {
		return invalid("v_max", "cannot be negative, got %g", p.VMax)
	}
	if !(p.Beta > 0) || p.Beta > 1 {
		return invalid("beta", "must be in (0, 1], got %g", p.Beta)
	}
	if p.WLowerBound < 0 || math.IsNaN(p.WLowerBound) || math.IsInf(p.WLowerBound, 0) {
		return invalid("w_lower_bound", "cannot be negative, got %g", p.WLowerBound)
	}
	if p.Threshold < 0 {
		return invalid("threshold", "cannot be negative, got %g", p.Threshold)
	}
	if p.Iterations < 0 {
		return invalid("iterations", "cannot be negative, got %d", p.Iterations)
	}
	if p.StallIterations < 0 {
		return invalid("stall_iterations", "cannot be negative, got %d", p.StallIterations)
	}
	if len(p.SeedPoint) != 0 && len(p.SeedPoint) != p.Dimensions {
		return invalid("seed_point", "has %d coordinates, want %d", len(p.SeedPoint), p.Dimensions)
	}
	if p.Workers < 0 {
		return invalid("workers", "cannot be negative, got %d", p.Workers)
	}
	if p.Refine && p.RefineIterations <= 0 {
		return invalid("refine_iterations", "must be positive when refine is enabled, got %d", p.RefineIterations)
	}
	return nil
}

func validateServer(s *Server) error {
	if s.HTTPAddr == "" && s.GRPCAddr == "" {
		return invalid("server", "at least one of http_addr or grpc_addr must be set")
	}
	if s.MaxConcurrentRuns <= 0 {
		return invalid("max_concurrent_runs", "must be positive, got %d", s.MaxConcurrentRuns)
	}
	return nil
}
