package models

import (
	"time"
)

// RunStatus represents the lifecycle status of an optimization run
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// IsTerminal reports whether a run in this status can no longer change.
func (s RunStatus) IsTerminal() bool {
	switch s {
	case RunStatusCompleted, RunStatusFailed, RunStatusCancelled:
		return true
	}
	return false
}

// Run represents an optimization run managed by the daemon
type Run struct {
	ID        string            `json:"id"`
	Status    RunStatus         `json:"status"`
	Objective string            `json:"objective"`
	CreatedAt time.Time         `json:"created_at"`
	StartTime time.Time         `json:"start_time,omitempty"`
	EndTime   time.Time         `json:"end_time,omitempty"`
	Duration  time.Duration     `json:"duration,omitempty"`
	Result    *RunResult        `json:"result,omitempty"`
	Metrics   *RunMetrics       `json:"metrics,omitempty"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// RunResult is the outcome of an optimization run
type RunResult struct {
	State             string         `json:"state"` // converged, exhausted or cancelled
	Position          []float64      `json:"position"`
	Fitness           float64        `json:"fitness"`
	Objective         float64        `json:"objective"`
	Iterations        int            `json:"iterations"`
	ConvergedAt       int            `json:"converged_at"` // -1 when the run did not converge
	ConvergenceReason string         `json:"convergence_reason,omitempty"`
	FinalInertia      float64        `json:"final_inertia"`
	Refined           *RefinedResult `json:"refined,omitempty"`
}

// RefinedResult is the local search result started from the swarm's best
type RefinedResult struct {
	Position  []float64 `json:"position"`
	Objective float64   `json:"objective"`
	Evals     int       `json:"evaluations"`
}

// RunMetrics contains aggregated per-iteration metrics for a run
type RunMetrics struct {
	Iterations    int          `json:"iterations"`
	BestObjective *Aggregation `json:"best_objective,omitempty"`
	Inertia       *Aggregation `json:"inertia_weight,omitempty"`
	Diversity     *Aggregation `json:"swarm_diversity,omitempty"`
	MeanSpeed     *Aggregation `json:"mean_speed,omitempty"`
	// FinalDiversity is the mean distance to the centroid at the last
	// recorded iteration.
	FinalDiversity float64 `json:"final_diversity"`
}

// ArchivedRun is a terminal run result as stored in the archive
type ArchivedRun struct {
	ID          string    `json:"id"`
	Objective   string    `json:"objective"`
	Status      RunStatus `json:"status"`
	State       string    `json:"state"`
	Position    []float64 `json:"position"`
	Value       float64   `json:"value"`
	Iterations  int       `json:"iterations"`
	ConvergedAt int       `json:"converged_at"`
	Params      string    `json:"params_yaml"`
	ArchivedAt  time.Time `json:"archived_at"`
}

// MetricPoint represents a single metric sample, keyed by iteration
type MetricPoint struct {
	Iteration int               `json:"iteration"`
	Name      string            `json:"name"`
	Value     float64           `json:"value"`
	Labels    map[string]string `json:"labels,omitempty"`
}

// MetricsSummary contains a summary of all metrics of a run
type MetricsSummary struct {
	StartTime    time.Time               `json:"start_time"`
	EndTime      time.Time               `json:"end_time"`
	Duration     time.Duration           `json:"duration"`
	Metrics      map[string][]float64    `json:"metrics"`
	Aggregations map[string]*Aggregation `json:"aggregations"`
}

// Aggregation represents aggregated metric statistics
type Aggregation struct {
	Count  int64   `json:"count"`
	Sum    float64 `json:"sum"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	P50    float64 `json:"p50"`
	P95    float64 `json:"p95"`
	P99    float64 `json:"p99"`
}
