// internal/engine/forecast/linear.go
package forecast

import "github.com/pharmalytics/inventory-engine/internal/domain"

const ModelLinear = "linear_trend"

// LinearTrend fits an ordinary least-squares line over period index.
type LinearTrend struct {
	intercept float64
	slope     float64
	n         int
}

func NewLinearTrend() *LinearTrend { return &LinearTrend{} }

func (m *LinearTrend) Name() string { return ModelLinear }

func (m *LinearTrend) Fit(series []float64) error {
	n := len(series)
	if n < 2 {
		return &domain.ComputationError{Model: m.Name(), Reason: "need at least 2 periods"}
	}

	// Closed-form OLS over t = 0..n-1.
	var sumT, sumY, sumTY, sumTT float64
	for t, y := range series {
		ft := float64(t)
		sumT += ft
		sumY += y
		sumTY += ft * y
		sumTT += ft * ft
	}
	fn := float64(n)
	denom := fn*sumTT - sumT*sumT
	if denom == 0 {
		return &domain.ComputationError{Model: m.Name(), Reason: "degenerate time axis"}
	}

	m.slope = (fn*sumTY - sumT*sumY) / denom
	m.intercept = (sumY - m.slope*sumT) / fn
	m.n = n
	return nil
}

func (m *LinearTrend) Predict(horizon int) []float64 {
	out := make([]float64, horizon)
	for i := range out {
		out[i] = clipNonNegative(m.intercept + m.slope*float64(m.n+i))
	}
	return out
}
