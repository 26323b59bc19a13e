package utils

import (
	"math"
	"sort"
)

// MinFloat64 returns the minimum of two float64 values
func MinFloat64(a, b float64) float64 {
	return math.Min(a, b)
}

// MaxFloat64 returns the maximum of two float64 values
func MaxFloat64(a, b float64) float64 {
	return math.Max(a, b)
}

// AddVec adds w to v element-wise; the slices must have equal length
func AddVec(v, w []float64) {
	for k := range v {
		v[k] += w[k]
	}
}

// SubVec subtracts w from v element-wise; the slices must have equal length
func SubVec(v, w []float64) {
	for k := range v {
		v[k] -= w[k]
	}
}

// MaxVec returns the largest element of v, or 0 for an empty slice
func MaxVec(v []float64) float64 {
	max := 0.0
	for i, x := range v {
		if i == 0 || x > max {
			max = x
		}
	}
	return max
}

// Mean calculates the mean of a slice of float64 values
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Variance calculates the variance of a slice of float64 values
func Variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := Mean(values)
	sumSquares := 0.0
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	return sumSquares / float64(len(values))
}

// StdDev calculates the standard deviation of a slice of float64 values
func StdDev(values []float64) float64 {
	return math.Sqrt(Variance(values))
}

// Percentile calculates the percentile of a slice of float64 values
// percentile should be between 0 and 100
func Percentile(values []float64, percentile float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	index := (percentile / 100.0) * float64(len(sorted)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))

	if lower == upper {
		return sorted[lower]
	}

	// Linear interpolation between lower and upper
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// P50 calculates the 50th percentile (median)
func P50(values []float64) float64 {
	return Percentile(values, 50)
}

// P95 calculates the 95th percentile
func P95(values []float64) float64 {
	return Percentile(values, 95)
}

// Sum calculates the sum of a slice of float64 values
func Sum(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum
}
