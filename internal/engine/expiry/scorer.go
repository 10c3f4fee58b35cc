// internal/engine/expiry/scorer.go
package expiry

import (
	"time"

	"github.com/pharmalytics/inventory-engine/internal/config"
	"github.com/pharmalytics/inventory-engine/internal/domain"
)

// Scorer estimates the probability that a batch expires on the shelf by
// projecting remaining shelf life against the forecast consumption rate.
type Scorer struct {
	scale        float64
	discountRisk float64
	returnRisk   float64
}

func NewScorer(cfg config.EngineConfig) *Scorer {
	return &Scorer{
		scale:        cfg.ExpiryRiskScale,
		discountRisk: cfg.ExpiryDiscountRisk,
		returnRisk:   cfg.ExpiryReturnRisk,
	}
}

// Score computes the wastage risk for one batch. An empty batch always
// scores zero. A stocked batch with no forecast consumption is maximal risk.
func (s *Scorer) Score(f *domain.ForecastResult, batch domain.InventoryState, now time.Time) domain.ExpiryRiskScore {
	score := domain.ExpiryRiskScore{
		BatchID: batch.BatchID,
		ItemID:  batch.ItemID,
		Action:  domain.ActionNone,
	}
	if batch.QuantityOnHand <= 0 {
		return score
	}

	if f == nil || f.PerPeriod <= 0 {
		score.RiskProbability = 1
		score.ProjectedWastage = batch.QuantityOnHand
		score.Action = s.action(1, batch)
		return score
	}

	periodDays := f.Granularity.Days()
	daysToExpiry := batch.ExpiryDate.Sub(now).Hours() / 24
	if daysToExpiry < 0 {
		daysToExpiry = 0
	}
	willConsume := f.PerPeriod * (daysToExpiry / periodDays)

	shortfall := 1 - willConsume/batch.QuantityOnHand
	if shortfall < 0 {
		shortfall = 0
	}

	risk := s.scale * shortfall
	if risk > 1 {
		risk = 1
	}

	wastage := batch.QuantityOnHand - willConsume
	if wastage < 0 {
		wastage = 0
	}

	score.RiskProbability = risk
	score.ProjectedWastage = wastage
	score.Action = s.action(risk, batch)
	return score
}

func (s *Scorer) action(risk float64, batch domain.InventoryState) domain.ExpiryAction {
	switch {
	case risk >= s.returnRisk:
		if batch.ReturnWindowOpen {
			return domain.ActionReturnToSupplier
		}
		return domain.ActionDiscount
	case risk >= s.discountRisk:
		return domain.ActionDiscount
	default:
		return domain.ActionNone
	}
}
