// internal/engine/reorder/optimizer.go
package reorder

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/pharmalytics/inventory-engine/internal/config"
	"github.com/pharmalytics/inventory-engine/internal/domain"
)

const (
	TagReorderPointBreached = "reorder_point_breached"
	TagMissingSupplier      = "missing_supplier"
	TagStockoutImminent     = "stockout_imminent"
	TagMinOrderApplied      = "min_order_applied"
	TagLowConfidence        = "low_confidence_forecast"
)

// Optimizer turns a forecast plus current inventory into a reorder
// suggestion. Safety stock scales with forecast uncertainty and the square
// root of lead time.
type Optimizer struct {
	serviceLevelZ float64
	horizonDays   int
}

func NewOptimizer(cfg config.EngineConfig) *Optimizer {
	return &Optimizer{serviceLevelZ: cfg.ServiceLevelZ, horizonDays: cfg.HorizonDays}
}

// ReorderPoint computes the stock level at or below which an order should be
// placed, in units.
func (o *Optimizer) ReorderPoint(f *domain.ForecastResult, leadTimeDays float64) float64 {
	periodDays := f.Granularity.Days()
	leadPeriods := leadTimeDays / periodDays
	return f.PerPeriod*leadPeriods + o.serviceLevelZ*f.StdDev*math.Sqrt(leadPeriods)
}

// Recommend returns nil when projected stock does not breach the reorder
// point within the horizon. When no supplier quote is configured the
// suggestion is still emitted, with an empty supplier and a missing_supplier
// tag, so the gap is visible instead of silently dropped.
func (o *Optimizer) Recommend(f *domain.ForecastResult, state domain.InventoryState, quotes []domain.SupplierQuote, now time.Time) *domain.ReorderSuggestion {
	reorderPoint := o.ReorderPoint(f, state.LeadTimeDays)
	if state.QuantityOnHand > reorderPoint {
		return nil
	}

	periodDays := f.Granularity.Days()
	horizonDemand := f.PerPeriod * (float64(o.horizonDays) / periodDays)
	quantity := math.Ceil(horizonDemand - state.QuantityOnHand - state.QuantityInTransit)
	if quantity < 0 {
		quantity = 0
	}

	tags := []string{TagReorderPointBreached}
	if f.LowConfidence {
		tags = append(tags, TagLowConfidence)
	}
	if f.PerPeriod > 0 {
		coverDays := state.QuantityOnHand / f.PerPeriod * periodDays
		if coverDays < state.LeadTimeDays {
			tags = append(tags, TagStockoutImminent)
		}
	}

	suggestion := &domain.ReorderSuggestion{
		ItemID:    f.ItemID,
		Quantity:  quantity,
		OrderDate: now,
	}

	if len(quotes) == 0 {
		suggestion.EstimatedCost = quantity * state.UnitCost
		suggestion.RationaleTags = append(tags, TagMissingSupplier)
		return suggestion
	}

	ranked := rankQuotes(quotes, quantity)
	best := ranked[0]

	if best.MinOrderQty > 0 && quantity > 0 && quantity < best.MinOrderQty {
		quantity = best.MinOrderQty
		tags = append(tags, TagMinOrderApplied)
	}

	suggestion.SupplierID = best.SupplierID
	suggestion.Quantity = quantity
	suggestion.EstimatedCost = quantity*best.UnitCost + best.FixedOrderCost
	for _, runnerUp := range ranked[1:] {
		tags = append(tags, fmt.Sprintf("runner_up:%s", runnerUp.SupplierID))
	}
	suggestion.RationaleTags = tags
	return suggestion
}

// rankQuotes orders suppliers by total estimated cost for the quantity,
// breaking ties on shorter lead time.
func rankQuotes(quotes []domain.SupplierQuote, quantity float64) []domain.SupplierQuote {
	ranked := make([]domain.SupplierQuote, len(quotes))
	copy(ranked, quotes)
	sort.SliceStable(ranked, func(i, j int) bool {
		ci := quoteCost(ranked[i], quantity)
		cj := quoteCost(ranked[j], quantity)
		if ci != cj {
			return ci < cj
		}
		return ranked[i].LeadTimeDays < ranked[j].LeadTimeDays
	})
	return ranked
}

func quoteCost(q domain.SupplierQuote, quantity float64) float64 {
	effective := quantity
	if q.MinOrderQty > 0 && quantity > 0 && quantity < q.MinOrderQty {
		effective = q.MinOrderQty
	}
	return effective*q.UnitCost + q.FixedOrderCost
}
