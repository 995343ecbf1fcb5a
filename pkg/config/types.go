package config

// Config represents the main configuration file of the CLI and the daemon
type Config struct {
	LogLevel     string `yaml:"log_level"`
	LogFormat    string `yaml:"log_format"` // json or text
	Optimization Params `yaml:"optimization"`
	Server       Server `yaml:"server"`
}

// Params holds every option of a single optimization run. Field names follow
// the option names used in reports and API payloads.
type Params struct {
	Objective  string `yaml:"objective" json:"objective"`
	Direction  string `yaml:"direction" json:"direction"` // maximize_reciprocal or minimize
	Dimensions int    `yaml:"dimensions" json:"dimensions"`
	NParticles int    `yaml:"n_particles" json:"n_particles"`

	XMin float64 `yaml:"x_min" json:"x_min"`
	XMax float64 `yaml:"x_max" json:"x_max"`

	C1     float64 `yaml:"c1" json:"c1"`
	C2     float64 `yaml:"c2" json:"c2"`
	Alpha  float64 `yaml:"alpha" json:"alpha"`
	DeltaT float64 `yaml:"delta_t" json:"delta_t"`

	W           float64 `yaml:"w" json:"w"`
	Beta        float64 `yaml:"beta" json:"beta"`
	WLowerBound float64 `yaml:"w_lower_bound" json:"w_lower_bound"`
	VMax        float64 `yaml:"v_max" json:"v_max"`
	Clamp       string  `yaml:"clamp" json:"clamp"` // positive or symmetric

	Threshold       float64 `yaml:"threshold" json:"threshold"`
	Iterations      int     `yaml:"iterations" json:"iterations"`
	StallIterations int     `yaml:"stall_iterations,omitempty" json:"stall_iterations,omitempty"`

	// SeedPoint is the initial global best; empty means (x_max, ..., x_max).
	SeedPoint []float64 `yaml:"seed_point,omitempty" json:"seed_point,omitempty"`
	RNGSeed   int64     `yaml:"rng_seed,omitempty" json:"rng_seed,omitempty"`

	ParallelEval bool `yaml:"parallel_eval,omitempty" json:"parallel_eval,omitempty"`
	Workers      int  `yaml:"workers,omitempty" json:"workers,omitempty"`

	RecordHistory    bool `yaml:"record_history,omitempty" json:"record_history,omitempty"`
	Refine           bool `yaml:"refine,omitempty" json:"refine,omitempty"`
	RefineIterations int  `yaml:"refine_iterations,omitempty" json:"refine_iterations,omitempty"`
}

// Server configures the optimization daemon
type Server struct {
	HTTPAddr          string `yaml:"http_addr"`
	GRPCAddr          string `yaml:"grpc_addr"`
	ArchivePath       string `yaml:"archive_path,omitempty"` // SQLite file; empty disables the archive
	MaxConcurrentRuns int    `yaml:"max_concurrent_runs"`
}
