package utils

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Mean calculates the mean of a slice of float64 values
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// PercentileSorted returns the p-th percentile (0..100) of an ascending
// slice using linear interpolation between closest ranks.
func PercentileSorted(sorted []float64, percentile float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	index := (percentile / 100.0) * float64(len(sorted)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return sorted[lower]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}
