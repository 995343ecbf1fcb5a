package metrics

import (
	"github.com/GoSim-25-26J-441/swarm-core/pkg/models"
)

// Common metric names
const (
	MetricBestObjective = "best_objective"
	MetricInertia       = "inertia_weight"
	MetricDiversity     = "swarm_diversity"
	MetricMeanSpeed     = "mean_speed"
)

// Sample is the state of a swarm after the best-tracking phase of one
// iteration.
type Sample struct {
	Iteration     int
	BestObjective float64
	Inertia       float64
	Diversity     float64
	MeanSpeed     float64
}

// RecordSample records every metric of one iteration
func RecordSample(collector *Collector, s Sample, labels map[string]string) {
	collector.Record(MetricBestObjective, s.BestObjective, s.Iteration, labels)
	collector.Record(MetricInertia, s.Inertia, s.Iteration, labels)
	collector.Record(MetricDiversity, s.Diversity, s.Iteration, labels)
	collector.Record(MetricMeanSpeed, s.MeanSpeed, s.Iteration, labels)
}

// CreateRunLabels creates a labels map for a run
func CreateRunLabels(runID string) map[string]string {
	return map[string]string{
		"run": runID,
	}
}

// ConvertToRunMetrics converts collector metrics to RunMetrics format
func ConvertToRunMetrics(collector *Collector, labels map[string]string) *models.RunMetrics {
	best := collector.GetOrComputeAggregation(MetricBestObjective, labels)
	rm := &models.RunMetrics{
		BestObjective: best,
		Inertia:       collector.GetOrComputeAggregation(MetricInertia, labels),
		Diversity:     collector.GetOrComputeAggregation(MetricDiversity, labels),
		MeanSpeed:     collector.GetOrComputeAggregation(MetricMeanSpeed, labels),
	}
	if best != nil {
		rm.Iterations = int(best.Count)
	}
	if d, ok := collector.Last(MetricDiversity, labels); ok {
		rm.FinalDiversity = d
	}
	return rm
}
