// Package s1_indicators computes technical indicator series from daily closes.
//
// Every function is pure: inputs are never modified and a fresh slice is
// returned. Points still inside the warm-up window are math.NaN(); use
// IsDefined before reading a value.
package s1_indicators

import (
	"math"

	"github.com/bistsignal/backend/internal/contracts"
)

// IsDefined reports whether v is a usable indicator value
func IsDefined(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Last returns the final element of values (NaN when empty)
func Last(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return values[len(values)-1]
}

// Prev returns the element before the final one (NaN when unavailable)
func Prev(values []float64) float64 {
	if len(values) < 2 {
		return math.NaN()
	}
	return values[len(values)-2]
}

func undefinedSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// SMA returns the trailing arithmetic mean over n points
func SMA(values []float64, n int) ([]float64, error) {
	if n <= 0 {
		return nil, contracts.NewInputError("sma", "period must be > 0, got %d", n)
	}

	out := undefinedSeries(len(values))
	var sum float64
	for i, v := range values {
		sum += v
		if i >= n {
			sum -= values[i-n]
		}
		if i >= n-1 {
			out[i] = sum / float64(n)
		}
	}
	return out, nil
}

// EMA returns exponential smoothing with factor 2/(n+1), seeded at the first defined value
func EMA(values []float64, n int) ([]float64, error) {
	if n <= 0 {
		return nil, contracts.NewInputError("ema", "period must be > 0, got %d", n)
	}

	out := undefinedSeries(len(values))
	alpha := 2.0 / (float64(n) + 1.0)
	seeded := false
	var ema float64
	for i, v := range values {
		if !IsDefined(v) {
			if seeded {
				out[i] = ema
			}
			continue
		}
		if !seeded {
			ema = v
			seeded = true
		} else {
			ema = alpha*v + (1-alpha)*ema
		}
		out[i] = ema
	}
	return out, nil
}

// sampleStdDev returns the n-1 standard deviation of window
func sampleStdDev(window []float64, mean float64) float64 {
	if len(window) < 2 {
		return 0
	}
	var ss float64
	for _, v := range window {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(window)-1))
}
