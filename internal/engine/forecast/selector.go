// internal/engine/forecast/selector.go
package forecast

import (
	"math"
	"time"

	"github.com/pharmalytics/inventory-engine/internal/config"
	"github.com/pharmalytics/inventory-engine/internal/domain"
)

const (
	metricMAPE = "mape"
	metricMAE  = "mae"
	metricNone = "none"
)

// Selector fits every candidate model on a trailing train split, scores each
// on the held-out tail, and refits the winner on the full series. Ties prefer
// the simpler model, in the fixed order linear, ensemble, seasonal.
type Selector struct {
	cfg config.EngineConfig
}

func NewSelector(cfg config.EngineConfig) *Selector {
	return &Selector{cfg: cfg}
}

// candidates returns fresh model instances in tie-break priority order.
func (s *Selector) candidates(seasonLen int) []Model {
	return []Model{
		NewLinearTrend(),
		NewLaggedEnsemble(seasonLen),
		NewSeasonalNaive(seasonLen),
	}
}

// Forecast produces the best available ForecastResult for the series, or an
// InsufficientDataError when too little history exists.
func (s *Selector) Forecast(series *domain.TimeSeries, horizon int) (*domain.ForecastResult, error) {
	vals := series.Quantities()
	n := len(vals)
	if n < s.cfg.MinPeriods {
		return nil, &domain.InsufficientDataError{ItemID: series.ItemID, Periods: n, MinPeriods: s.cfg.MinPeriods}
	}
	if horizon < 1 {
		horizon = 1
	}

	seasonLen := series.Granularity.SeasonLength()

	// Too short to split: skip model comparison, return the seasonal model
	// with a wide, explicitly low-confidence interval.
	if n < s.cfg.MinPeriods+2 {
		return s.shortSeriesResult(series, vals, horizon, seasonLen), nil
	}

	holdout := int(float64(n) * s.cfg.HoldoutFraction)
	if holdout < 1 {
		holdout = 1
	}
	if holdout > n-2 {
		holdout = n - 2
	}
	train, validation := vals[:n-holdout], vals[n-holdout:]

	var (
		best          Model
		bestScore     float64
		bestResiduals []float64
		metricName    string
		skipped       []string
	)
	for _, candidate := range s.candidates(seasonLen) {
		if err := candidate.Fit(train); err != nil {
			skipped = append(skipped, candidate.Name())
			continue
		}
		preds := candidate.Predict(len(validation))
		score, metric := validationScore(validation, preds)
		// Strict improvement only: on a tie the earlier (simpler) model wins.
		if best == nil || score < bestScore {
			best = candidate
			bestScore = score
			metricName = metric
			bestResiduals = residuals(validation, preds)
		}
	}

	// Every candidate failed to fit: seasonal-naive on the raw mean.
	if best == nil {
		result := s.shortSeriesResult(series, vals, horizon, seasonLen)
		result.SkippedModels = skipped
		return result, nil
	}

	// Refit the winner on the full series for final forecasting.
	if err := best.Fit(vals); err != nil {
		result := s.shortSeriesResult(series, vals, horizon, seasonLen)
		result.SkippedModels = append(skipped, best.Name())
		return result, nil
	}

	predictions := best.Predict(horizon)
	perPeriod := clipNonNegative(mean(predictions))
	sigma := stddev(bestResiduals)

	return &domain.ForecastResult{
		ItemID:        series.ItemID,
		Granularity:   series.Granularity,
		ModelName:     best.Name(),
		PerPeriod:     perPeriod,
		Predictions:   predictions,
		IntervalLow:   clipNonNegative(perPeriod - s.cfg.ConfidenceZ*sigma),
		IntervalHigh:  perPeriod + s.cfg.ConfidenceZ*sigma,
		StdDev:        sigma,
		ErrorMetric:   bestScore,
		MetricName:    metricName,
		SkippedModels: skipped,
		GeneratedAt:   time.Now().UTC(),
	}, nil
}

// shortSeriesResult is the degraded path: the seasonal fallback on the full
// series, flagged low-confidence, with an interval twice the usual width
// derived from the raw series spread.
func (s *Selector) shortSeriesResult(series *domain.TimeSeries, vals []float64, horizon, seasonLen int) *domain.ForecastResult {
	model := NewSeasonalNaive(seasonLen)
	var predictions []float64
	if err := model.Fit(vals); err != nil {
		predictions = flatForecast(mean(vals), horizon)
	} else {
		predictions = model.Predict(horizon)
	}

	perPeriod := clipNonNegative(mean(predictions))
	sigma := stddev(vals)

	return &domain.ForecastResult{
		ItemID:        series.ItemID,
		Granularity:   series.Granularity,
		ModelName:     ModelSeasonal,
		PerPeriod:     perPeriod,
		Predictions:   predictions,
		IntervalLow:   clipNonNegative(perPeriod - 2*s.cfg.ConfidenceZ*sigma),
		IntervalHigh:  perPeriod + 2*s.cfg.ConfidenceZ*sigma,
		StdDev:        sigma,
		MetricName:    metricNone,
		LowConfidence: true,
		GeneratedAt:   time.Now().UTC(),
	}
}

// validationScore is MAPE, falling back to MAE when any actual is zero.
func validationScore(actual, predicted []float64) (float64, string) {
	for _, a := range actual {
		if a == 0 {
			return meanAbsoluteError(actual, predicted), metricMAE
		}
	}
	var sum float64
	for i, a := range actual {
		sum += math.Abs(a-predicted[i]) / a
	}
	return sum / float64(len(actual)), metricMAPE
}

func meanAbsoluteError(actual, predicted []float64) float64 {
	var sum float64
	for i, a := range actual {
		sum += math.Abs(a - predicted[i])
	}
	return sum / float64(len(actual))
}

func residuals(actual, predicted []float64) []float64 {
	out := make([]float64, len(actual))
	for i, a := range actual {
		out[i] = a - predicted[i]
	}
	return out
}

func flatForecast(level float64, horizon int) []float64 {
	out := make([]float64, horizon)
	for i := range out {
		out[i] = clipNonNegative(level)
	}
	return out
}
