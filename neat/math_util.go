package neat

import (
	"math"
	"math/rand"
)

// clamp restricts a value to a given range [minVal, maxVal].
func clamp(value, minVal, maxVal float64) float64 {
	return math.Max(minVal, math.Min(value, maxVal))
}

// gaussian samples N(mean, stdev).
func gaussian(mean, stdev float64) float64 {
	return rand.NormFloat64()*stdev + mean
}

// uniform samples the open interval (-1, 1).
func uniform() float64 {
	return rand.Float64()*2 - 1
}

// Mean calculates the average of a slice of float64 values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	return Sum(values) / float64(len(values))
}

// Sum calculates the sum of a slice of float64 values.
func Sum(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum
}

// normalizer returns the larger gene-set size as the N of compatibility
// distance, never less than 1.
func normalizer(a, b int) float64 {
	n := a
	if b > n {
		n = b
	}
	if n < 1 {
		n = 1
	}
	return float64(n)
}
