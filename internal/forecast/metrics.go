// backend-go/internal/forecast/metrics.go
package forecast

import "math"

// MeanAbsoluteError returns the average absolute deviation between actual
// and predicted values. Slices must have equal non-zero length.
func MeanAbsoluteError(actual, predicted []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	sum := 0.0
	for i := range actual {
		sum += math.Abs(actual[i] - predicted[i])
	}
	return sum / float64(len(actual))
}

// RootMeanSquaredError returns sqrt of the mean squared error.
func RootMeanSquaredError(actual, predicted []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	sum := 0.0
	for i := range actual {
		d := actual[i] - predicted[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(actual)))
}

// RSquared returns the coefficient of determination. When the actuals are
// constant the residual comparison is degenerate: 1 for a perfect fit,
// 0 otherwise.
func RSquared(actual, predicted []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	m := mean(actual)
	var ssRes, ssTot float64
	for i := range actual {
		r := actual[i] - predicted[i]
		ssRes += r * r
		t := actual[i] - m
		ssTot += t * t
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}
		return 0
	}
	return 1 - ssRes/ssTot
}
