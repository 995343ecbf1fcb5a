package config

// DefaultParams returns the canonical Himmelblau setup.
func DefaultParams() Params {
	return Params{
		Objective:        "himmelblau",
		Direction:        "maximize_reciprocal",
		Dimensions:       2,
		NParticles:       40,
		XMin:             -5.0,
		XMax:             5.0,
		C1:               1.0,
		C2:               0.1,
		Alpha:            1.0,
		DeltaT:           1.0,
		W:                1.5,
		Beta:             0.99,
		WLowerBound:      0.4,
		VMax:             0.15,
		Clamp:            "positive",
		Threshold:        0.0001,
		Iterations:       100_000,
		RefineIterations: 200,
	}
}

// DefaultServer returns the daemon defaults.
func DefaultServer() Server {
	return Server{
		HTTPAddr:          ":8080",
		GRPCAddr:          ":50051",
		MaxConcurrentRuns: 4,
	}
}

// Default returns a complete configuration with every default applied.
func Default() *Config {
	return &Config{
		LogLevel:     "info",
		LogFormat:    "text",
		Optimization: DefaultParams(),
		Server:       DefaultServer(),
	}
}
