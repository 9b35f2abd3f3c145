// Package indicators provides the technical analysis primitives the feature
// engine is built on. All functions are pure and deterministic: the same
// input series always produces the bit-identical output series.
package indicators

import "fmt"

// EMASeries computes the Exponential Moving Average of values for the given
// span at every index. The series is seeded with the first value and updated
// recursively with multiplier 2/(span+1), so every index has a defined value;
// callers that need a warmed-up EMA should ignore the first span-1 entries.
func EMASeries(values []float64, span int) ([]float64, error) {
	if span <= 0 {
		return nil, fmt.Errorf("span must be positive, got %d", span)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("empty series")
	}

	multiplier := 2.0 / float64(span+1)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = (values[i]-out[i-1])*multiplier + out[i-1]
	}
	return out, nil
}

// EMA returns the final value of EMASeries.
func EMA(values []float64, span int) (float64, error) {
	series, err := EMASeries(values, span)
	if err != nil {
		return 0, err
	}
	return series[len(series)-1], nil
}
