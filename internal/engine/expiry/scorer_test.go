package expiry

import (
	"testing"
	"time"

	"github.com/pharmalytics/inventory-engine/internal/config"
	"github.com/pharmalytics/inventory-engine/internal/domain"
)

var now = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

func forecastPerDay(perPeriod float64) *domain.ForecastResult {
	return &domain.ForecastResult{
		ItemID:      "ibuprofen-400",
		Granularity: domain.GranularityDay,
		PerPeriod:   perPeriod,
	}
}

func batch(onHand float64, daysToExpiry int, returnOpen bool) domain.InventoryState {
	return domain.InventoryState{
		ItemID:           "ibuprofen-400",
		BatchID:          "B-100",
		QuantityOnHand:   onHand,
		ExpiryDate:       now.AddDate(0, 0, daysToExpiry),
		ReturnWindowOpen: returnOpen,
	}
}

func TestScoreEmptyBatchZeroRisk(t *testing.T) {
	s := NewScorer(config.DefaultEngineConfig())

	score := s.Score(forecastPerDay(10), batch(0, 10, true), now)
	if score.RiskProbability != 0 {
		t.Errorf("empty batch must score 0, got %v", score.RiskProbability)
	}
	if score.Action != domain.ActionNone {
		t.Errorf("empty batch action must be none, got %s", score.Action)
	}
}

func TestScoreZeroForecastMaximalRisk(t *testing.T) {
	s := NewScorer(config.DefaultEngineConfig())

	// 0 recent consumption, 100 on hand, expiring in 10 days.
	score := s.Score(forecastPerDay(0), batch(100, 10, false), now)
	if score.RiskProbability < 0.99 {
		t.Errorf("expected risk at or near 1.0, got %v", score.RiskProbability)
	}
	if score.Action != domain.ActionDiscount {
		t.Errorf("closed return window should recommend discount, got %s", score.Action)
	}
	if score.ProjectedWastage != 100 {
		t.Errorf("expected full batch as wastage, got %v", score.ProjectedWastage)
	}
}

func TestScoreZeroForecastReturnWindowOpen(t *testing.T) {
	s := NewScorer(config.DefaultEngineConfig())

	score := s.Score(forecastPerDay(0), batch(100, 10, true), now)
	if score.Action != domain.ActionReturnToSupplier {
		t.Errorf("open return window should recommend return, got %s", score.Action)
	}
}

func TestScoreFastMovingBatchLowRisk(t *testing.T) {
	s := NewScorer(config.DefaultEngineConfig())

	// 20/day against 100 on hand with 30 days of shelf life: consumed long
	// before expiry.
	score := s.Score(forecastPerDay(20), batch(100, 30, true), now)
	if score.RiskProbability != 0 {
		t.Errorf("expected zero risk, got %v", score.RiskProbability)
	}
	if score.ProjectedWastage != 0 {
		t.Errorf("expected zero wastage, got %v", score.ProjectedWastage)
	}
}

func TestScorePartialShortfallDiscount(t *testing.T) {
	s := NewScorer(config.DefaultEngineConfig())

	// 5/day for 10 days consumes 50 of 100: shortfall ratio 0.5.
	score := s.Score(forecastPerDay(5), batch(100, 10, false), now)
	if score.RiskProbability != 0.5 {
		t.Errorf("expected risk 0.5, got %v", score.RiskProbability)
	}
	if score.Action != domain.ActionDiscount {
		t.Errorf("expected discount in the 0.3-0.7 band, got %s", score.Action)
	}
	if score.ProjectedWastage != 50 {
		t.Errorf("expected 50 units wastage, got %v", score.ProjectedWastage)
	}
}

func TestScoreExpiredBatch(t *testing.T) {
	s := NewScorer(config.DefaultEngineConfig())

	// Already past expiry: nothing more will be consumed in time.
	score := s.Score(forecastPerDay(10), batch(40, -1, true), now)
	if score.RiskProbability != 1 {
		t.Errorf("expected risk 1 for an expired batch, got %v", score.RiskProbability)
	}
	if score.Action != domain.ActionReturnToSupplier {
		t.Errorf("expected return for expired batch with open window, got %s", score.Action)
	}
}
