package forecast

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/pharmalytics/inventory-engine/internal/config"
	"github.com/pharmalytics/inventory-engine/internal/domain"
)

func makeSeries(quantities ...float64) *domain.TimeSeries {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]domain.SeriesPoint, len(quantities))
	for i, q := range quantities {
		points[i] = domain.SeriesPoint{Period: start.AddDate(0, 0, i), Quantity: q}
	}
	return &domain.TimeSeries{ItemID: "test-item", Granularity: domain.GranularityDay, Points: points}
}

func TestForecastTooShortSeries(t *testing.T) {
	s := NewSelector(config.DefaultEngineConfig())

	_, err := s.Forecast(makeSeries(5, 7), 7)

	var insufficient *domain.InsufficientDataError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientDataError for 2 periods, got %v", err)
	}
}

func TestForecastNeverNegative(t *testing.T) {
	s := NewSelector(config.DefaultEngineConfig())

	// Steep downward trend that a naive linear extrapolation would push
	// below zero.
	series := makeSeries(100, 80, 60, 40, 20, 10, 5, 2, 1, 0)
	result, err := s.Forecast(series, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.PerPeriod < 0 {
		t.Errorf("per-period prediction is negative: %v", result.PerPeriod)
	}
	if result.IntervalLow < 0 {
		t.Errorf("interval low is negative: %v", result.IntervalLow)
	}
	for i, p := range result.Predictions {
		if p < 0 {
			t.Errorf("prediction %d is negative: %v", i, p)
		}
	}
}

func TestForecastIdempotent(t *testing.T) {
	s := NewSelector(config.DefaultEngineConfig())
	series := makeSeries(12, 15, 11, 14, 13, 16, 12, 15, 14, 13, 17, 12)

	first, err := s.Forecast(series, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := s.Forecast(series, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.ModelName != second.ModelName {
		t.Errorf("model name differs: %q vs %q", first.ModelName, second.ModelName)
	}
	if !reflect.DeepEqual(first.Predictions, second.Predictions) {
		t.Errorf("predictions differ between identical runs")
	}
	if first.PerPeriod != second.PerPeriod {
		t.Errorf("per-period differs: %v vs %v", first.PerPeriod, second.PerPeriod)
	}
}

func TestForecastShortSeriesLowConfidence(t *testing.T) {
	s := NewSelector(config.DefaultEngineConfig())

	// 3 periods meets the minimum but is below the splittable length.
	result, err := s.Forecast(makeSeries(10, 20, 15), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.LowConfidence {
		t.Error("expected low-confidence flag on unsplittable series")
	}
	if result.ModelName != ModelSeasonal {
		t.Errorf("expected %s fallback, got %s", ModelSeasonal, result.ModelName)
	}
	if result.IntervalHigh <= result.PerPeriod {
		t.Errorf("expected widened interval, got high=%v per=%v", result.IntervalHigh, result.PerPeriod)
	}
}

func TestForecastMAEFallbackOnZeroActuals(t *testing.T) {
	s := NewSelector(config.DefaultEngineConfig())

	// Trailing zeros land in the validation split, making MAPE undefined.
	result, err := s.Forecast(makeSeries(5, 6, 5, 7, 6, 5, 6, 7, 0, 0), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.MetricName != metricMAE {
		t.Errorf("expected %s metric with zero validation actuals, got %s", metricMAE, result.MetricName)
	}
}

func TestForecastFlatSeriesTracksLevel(t *testing.T) {
	s := NewSelector(config.DefaultEngineConfig())

	result, err := s.Forecast(makeSeries(20, 20, 20, 20, 20, 20, 20, 20, 20, 20, 20, 20), 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(result.PerPeriod-20) > 1 {
		t.Errorf("flat series should forecast near 20/period, got %v", result.PerPeriod)
	}
}

func TestValidationScoreTieBreakPrefersSimpler(t *testing.T) {
	s := NewSelector(config.DefaultEngineConfig())

	// A perfectly linear series scores zero error for the linear candidate;
	// even if another candidate ties, priority order must keep linear.
	result, err := s.Forecast(makeSeries(10, 12, 14, 16, 18, 20, 22, 24, 26, 28), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.ModelName != ModelLinear {
		t.Errorf("expected %s on a perfectly linear series, got %s", ModelLinear, result.ModelName)
	}
	if result.ErrorMetric > 1e-9 {
		t.Errorf("expected near-zero validation error, got %v", result.ErrorMetric)
	}
}
