package indicator

import "math"

// Mean returns the arithmetic mean, 0 for an empty slice
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the population standard deviation, 0 for an empty slice
func StdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	avg := Mean(values)
	var sum float64
	for _, v := range values {
		d := v - avg
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

// EMA calculates an Exponential Moving Average seeded with the first value.
// Returns a slice the same length as values.
func EMA(values []float64, period int) []float64 {
	if len(values) == 0 {
		return []float64{}
	}

	k := 2.0 / float64(period+1)
	result := make([]float64, 0, len(values))
	ema := values[0]
	result = append(result, ema)

	for _, v := range values[1:] {
		ema = v*k + ema*(1-k)
		result = append(result, ema)
	}

	return result
}

// TakeLast returns the trailing window values, or all of them if shorter
func TakeLast[T any](values []T, window int) []T {
	if len(values) <= window {
		return values
	}
	return values[len(values)-window:]
}

// TakeFirst returns the leading n values, or all of them if shorter
func TakeFirst[T any](values []T, n int) []T {
	if len(values) <= n {
		return values
	}
	return values[:n]
}
