// internal/engine/forecast/model.go
package forecast

import "math"

// Model is one forecasting candidate. Fit returns a ComputationError when the
// series is degenerate for this model; the selector excludes such candidates
// instead of failing the run.
type Model interface {
	Name() string
	Fit(series []float64) error
	Predict(horizon int) []float64
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func stddev(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	m := mean(vals)
	var ss float64
	for _, v := range vals {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(vals)))
}

func clipNonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}
