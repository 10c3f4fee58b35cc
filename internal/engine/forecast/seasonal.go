// internal/engine/forecast/seasonal.go
package forecast

import "github.com/pharmalytics/inventory-engine/internal/domain"

const ModelSeasonal = "seasonal_naive"

const (
	holtAlpha = 0.5
	holtBeta  = 0.3
)

// SeasonalNaive repeats the last observed season. When less than one full
// season of history exists it falls back to Holt-style exponential smoothing
// on level and trend, so it can fit any non-empty series. It is the
// candidate of last resort.
type SeasonalNaive struct {
	seasonLen  int
	lastSeason []float64
	level      float64
	trend      float64
	seasonal   bool
}

func NewSeasonalNaive(seasonLen int) *SeasonalNaive {
	if seasonLen < 1 {
		seasonLen = 1
	}
	return &SeasonalNaive{seasonLen: seasonLen}
}

func (m *SeasonalNaive) Name() string { return ModelSeasonal }

func (m *SeasonalNaive) Fit(series []float64) error {
	n := len(series)
	if n == 0 {
		return &domain.ComputationError{Model: m.Name(), Reason: "empty series"}
	}

	if n >= m.seasonLen {
		m.seasonal = true
		m.lastSeason = append([]float64(nil), series[n-m.seasonLen:]...)
		return nil
	}

	m.seasonal = false
	m.level = series[0]
	m.trend = 0
	for i := 1; i < n; i++ {
		prevLevel := m.level
		m.level = holtAlpha*series[i] + (1-holtAlpha)*(m.level+m.trend)
		m.trend = holtBeta*(m.level-prevLevel) + (1-holtBeta)*m.trend
	}
	return nil
}

func (m *SeasonalNaive) Predict(horizon int) []float64 {
	out := make([]float64, horizon)
	for i := range out {
		if m.seasonal {
			out[i] = clipNonNegative(m.lastSeason[i%m.seasonLen])
		} else {
			out[i] = clipNonNegative(m.level + m.trend*float64(i+1))
		}
	}
	return out
}
