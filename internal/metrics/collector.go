package metrics

import (
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/swarm-core/pkg/models"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/utils"
)

// MaxSeriesPoints bounds the points a series keeps. Once a series is full,
// every other point is dropped and only every second later point is kept,
// so a long run keeps an evenly thinned series. Count, sum, min, max, mean
// and standard deviation stay exact; percentiles use the kept points.
const MaxSeriesPoints = 2048

// Collector collects per-iteration metrics during an optimization run. It is
// safe for concurrent use: the optimizer records while API handlers read.
type Collector struct {
	mu sync.RWMutex

	startTime time.Time
	endTime   time.Time

	// Series data: metric name -> labels -> series
	series map[string]map[string]*series

	// Aggregated data: metric name -> labels -> Aggregation
	aggregations map[string]map[string]*models.Aggregation
}

type sample struct {
	iteration int
	value     float64
}

// series stores the labels once and the points as plain values.
type series struct {
	labels map[string]string
	points []sample
	stride int
	seen   int

	last     sample
	lastKept bool

	count         int64
	sum, min, max float64
	// running mean and sum of squared deviations (Welford)
	mean, m2 float64
}

func newSeries(labels map[string]string) *series {
	return &series{labels: copyLabels(labels), stride: 1}
}

func (s *series) add(iteration int, value float64) {
	s.count++
	s.sum += value
	if s.count == 1 || value < s.min {
		s.min = value
	}
	if s.count == 1 || value > s.max {
		s.max = value
	}
	delta := value - s.mean
	s.mean += delta / float64(s.count)
	s.m2 += delta * (value - s.mean)

	smp := sample{iteration: iteration, value: value}
	s.last = smp
	s.lastKept = false
	if s.seen%s.stride == 0 {
		if len(s.points) == MaxSeriesPoints {
			s.thin()
		}
		if s.seen%s.stride == 0 {
			s.points = append(s.points, smp)
			s.lastKept = true
		}
	}
	s.seen++
}

// thin keeps every other point in place and doubles the stride.
func (s *series) thin() {
	kept := s.points[:0]
	for i := 0; i < len(s.points); i += 2 {
		kept = append(kept, s.points[i])
	}
	s.points = kept
	s.stride *= 2
}

// visible returns the kept points plus the latest point when it was skipped.
func (s *series) visible() []sample {
	if s.lastKept || s.count == 0 {
		return s.points
	}
	out := make([]sample, len(s.points), len(s.points)+1)
	copy(out, s.points)
	return append(out, s.last)
}

// NewCollector creates a new metrics collector
func NewCollector() *Collector {
	return &Collector{
		startTime:    time.Now(),
		series:       make(map[string]map[string]*series),
		aggregations: make(map[string]map[string]*models.Aggregation),
	}
}

// Start marks the start of metric collection
func (c *Collector) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startTime = time.Now()
}

// Stop marks the end of metric collection
func (c *Collector) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endTime = time.Now()
}

// Record records a metric value for an iteration. Cached aggregations of the
// metric are invalidated.
func (c *Collector) Record(name string, value float64, iteration int, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := labelKey(labels)
	byLabel := c.series[name]
	if byLabel == nil {
		byLabel = make(map[string]*series)
		c.series[name] = byLabel
	}
	sr := byLabel[key]
	if sr == nil {
		sr = newSeries(labels)
		byLabel[key] = sr
	}
	sr.add(iteration, value)
	if c.aggregations[name] != nil {
		delete(c.aggregations[name], key)
	}
}

// GetSeries returns the points kept for a metric, in recording order. The
// latest recorded point is always included.
func (c *Collector) GetSeries(name string, labels map[string]string) []*models.MetricPoint {
	c.mu.RLock()
	defer c.mu.RUnlock()

	sr := c.getSeriesUnsafe(name, labelKey(labels))
	if sr == nil {
		return nil
	}

	points := sr.visible()
	result := make([]*models.MetricPoint, len(points))
	for i, p := range points {
		result[i] = &models.MetricPoint{
			Iteration: p.iteration,
			Name:      name,
			Value:     p.value,
			Labels:    copyLabels(sr.labels),
		}
	}
	return result
}

// Last returns the most recent value of a metric
func (c *Collector) Last(name string, labels map[string]string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	sr := c.getSeriesUnsafe(name, labelKey(labels))
	if sr == nil || sr.count == 0 {
		return 0, false
	}
	return sr.last.value, true
}

// GetAggregation calculates and returns aggregated statistics for a metric
func (c *Collector) GetAggregation(name string, labels map[string]string) *models.Aggregation {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return calculateAggregation(c.getSeriesUnsafe(name, labelKey(labels)))
}

// GetOrComputeAggregation gets cached aggregation or computes it
func (c *Collector) GetOrComputeAggregation(name string, labels map[string]string) *models.Aggregation {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := labelKey(labels)
	if c.aggregations[name] == nil {
		c.aggregations[name] = make(map[string]*models.Aggregation)
	}
	if agg, ok := c.aggregations[name][key]; ok {
		return agg
	}

	agg := calculateAggregation(c.getSeriesUnsafe(name, key))
	if agg != nil {
		c.aggregations[name][key] = agg
	}
	return agg
}

// GetSummary returns a summary of all collected metrics
func (c *Collector) GetSummary() *models.MetricsSummary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	summary := &models.MetricsSummary{
		StartTime:    c.startTime,
		EndTime:      c.endTime,
		Metrics:      make(map[string][]float64),
		Aggregations: make(map[string]*models.Aggregation),
	}
	if !c.endTime.IsZero() {
		summary.Duration = c.endTime.Sub(c.startTime)
	}

	for name, byLabel := range c.series {
		values := make([]float64, 0)
		for _, key := range sortedKeys(byLabel) {
			for _, p := range byLabel[key].visible() {
				values = append(values, p.value)
			}
		}
		summary.Metrics[name] = values
		if agg := calculateAggregation(byLabel[""]); agg != nil {
			summary.Aggregations[name] = agg
		}
	}
	return summary
}

// GetMetricNames returns all metric names that have been collected, sorted
func (c *Collector) GetMetricNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.series))
	for name := range c.series {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clear clears all collected metrics
func (c *Collector) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.series = make(map[string]map[string]*series)
	c.aggregations = make(map[string]map[string]*models.Aggregation)
	c.startTime = time.Now()
	c.endTime = time.Time{}
}

// getSeriesUnsafe returns a series without locking (caller must hold lock)
func (c *Collector) getSeriesUnsafe(name, key string) *series {
	if c.series[name] == nil {
		return nil
	}
	return c.series[name][key]
}

// labelKey creates a key from labels for map lookup
func labelKey(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(labels[k])
		b.WriteByte(',')
	}
	return b.String()
}

func sortedKeys(m map[string]*series) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func copyLabels(labels map[string]string) map[string]string {
	if labels == nil {
		return nil
	}
	out := make(map[string]string, len(labels))
	for k, v := range labels {
		out[k] = v
	}
	return out
}

// calculateAggregation builds the aggregation of a series from its running
// totals and the percentiles of its kept points.
func calculateAggregation(sr *series) *models.Aggregation {
	if sr == nil || sr.count == 0 {
		return nil
	}

	points := sr.visible()
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.value
	}
	sort.Float64s(values)

	return &models.Aggregation{
		Count:  sr.count,
		Sum:    sr.sum,
		Min:    sr.min,
		Max:    sr.max,
		Mean:   sr.sum / float64(sr.count),
		StdDev: math.Sqrt(sr.m2 / float64(sr.count)),
		P50:    utils.PercentileSorted(values, 50),
		P95:    utils.PercentileSorted(values, 95),
		P99:    utils.PercentileSorted(values, 99),
	}
}
