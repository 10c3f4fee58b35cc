package reorder

import (
	"testing"
	"time"

	"github.com/pharmalytics/inventory-engine/internal/config"
	"github.com/pharmalytics/inventory-engine/internal/domain"
)

func flatForecast(perPeriod, sigma float64) *domain.ForecastResult {
	return &domain.ForecastResult{
		ItemID:      "paracetamol-500",
		Granularity: domain.GranularityDay,
		ModelName:   "linear_trend",
		PerPeriod:   perPeriod,
		StdDev:      sigma,
	}
}

func TestRecommendNoActionAboveReorderPoint(t *testing.T) {
	o := NewOptimizer(config.DefaultEngineConfig())
	f := flatForecast(20, 2)
	state := domain.InventoryState{ItemID: "paracetamol-500", QuantityOnHand: 5000, LeadTimeDays: 7}

	if s := o.Recommend(f, state, nil, time.Now()); s != nil {
		t.Fatalf("expected no suggestion when stock is well above the reorder point, got %+v", s)
	}
}

func TestRecommendFlatConsumption(t *testing.T) {
	o := NewOptimizer(config.DefaultEngineConfig())

	// Six months of flat 20/day, lead time 7 days, 50 on hand. Reorder point
	// is ~140 plus safety stock, so 50 breaches it; 30 days of demand is 600
	// minus stock on hand.
	f := flatForecast(20, 1)
	state := domain.InventoryState{ItemID: "paracetamol-500", QuantityOnHand: 50, LeadTimeDays: 7}
	quote := domain.SupplierQuote{SupplierID: "SUP-1", UnitCost: 0.5, LeadTimeDays: 7}

	s := o.Recommend(f, state, []domain.SupplierQuote{quote}, time.Now())
	if s == nil {
		t.Fatal("expected a suggestion")
	}
	if s.Quantity != 550 {
		t.Errorf("expected 600-50=550 units, got %v", s.Quantity)
	}
	if s.SupplierID != "SUP-1" {
		t.Errorf("expected SUP-1, got %q", s.SupplierID)
	}
}

func TestRecommendMinOrderQuantityRoundUp(t *testing.T) {
	o := NewOptimizer(config.DefaultEngineConfig())
	f := flatForecast(20, 1)
	state := domain.InventoryState{ItemID: "paracetamol-500", QuantityOnHand: 50, LeadTimeDays: 7}
	quote := domain.SupplierQuote{SupplierID: "SUP-1", UnitCost: 0.5, LeadTimeDays: 7, MinOrderQty: 1000}

	s := o.Recommend(f, state, []domain.SupplierQuote{quote}, time.Now())
	if s == nil {
		t.Fatal("expected a suggestion")
	}
	if s.Quantity != 1000 {
		t.Errorf("expected clip to supplier minimum 1000, got %v", s.Quantity)
	}
	if !hasTag(s.RationaleTags, TagMinOrderApplied) {
		t.Errorf("expected %s tag, tags: %v", TagMinOrderApplied, s.RationaleTags)
	}
}

func TestRecommendMissingSupplier(t *testing.T) {
	o := NewOptimizer(config.DefaultEngineConfig())
	f := flatForecast(20, 1)
	state := domain.InventoryState{ItemID: "paracetamol-500", QuantityOnHand: 50, LeadTimeDays: 7, UnitCost: 0.4}

	s := o.Recommend(f, state, nil, time.Now())
	if s == nil {
		t.Fatal("expected a suggestion even without a configured supplier")
	}
	if s.SupplierID != "" {
		t.Errorf("expected empty supplier id, got %q", s.SupplierID)
	}
	if !hasTag(s.RationaleTags, TagMissingSupplier) {
		t.Errorf("expected %s tag, tags: %v", TagMissingSupplier, s.RationaleTags)
	}
}

func TestRecommendSupplierRanking(t *testing.T) {
	o := NewOptimizer(config.DefaultEngineConfig())
	f := flatForecast(20, 1)
	state := domain.InventoryState{ItemID: "paracetamol-500", QuantityOnHand: 50, LeadTimeDays: 7}
	quotes := []domain.SupplierQuote{
		{SupplierID: "SUP-EXPENSIVE", UnitCost: 1.0, LeadTimeDays: 3},
		{SupplierID: "SUP-CHEAP", UnitCost: 0.4, LeadTimeDays: 10},
		{SupplierID: "SUP-CHEAP-FAST", UnitCost: 0.4, LeadTimeDays: 5},
	}

	s := o.Recommend(f, state, quotes, time.Now())
	if s == nil {
		t.Fatal("expected a suggestion")
	}
	// Equal cost between the two cheap quotes: shorter lead time wins.
	if s.SupplierID != "SUP-CHEAP-FAST" {
		t.Errorf("expected SUP-CHEAP-FAST, got %q", s.SupplierID)
	}
	if !hasTag(s.RationaleTags, "runner_up:SUP-CHEAP") {
		t.Errorf("expected runner-up tag for SUP-CHEAP, tags: %v", s.RationaleTags)
	}
	if !hasTag(s.RationaleTags, "runner_up:SUP-EXPENSIVE") {
		t.Errorf("expected runner-up tag for SUP-EXPENSIVE, tags: %v", s.RationaleTags)
	}
}

func TestRecommendStockoutImminentTag(t *testing.T) {
	o := NewOptimizer(config.DefaultEngineConfig())
	f := flatForecast(20, 1)
	// 50 on hand covers 2.5 days, lead time is 7: stockout before resupply.
	state := domain.InventoryState{ItemID: "paracetamol-500", QuantityOnHand: 50, LeadTimeDays: 7}

	s := o.Recommend(f, state, nil, time.Now())
	if s == nil {
		t.Fatal("expected a suggestion")
	}
	if !hasTag(s.RationaleTags, TagStockoutImminent) {
		t.Errorf("expected %s tag, tags: %v", TagStockoutImminent, s.RationaleTags)
	}
}

func hasTag(tags []string, want string) bool {
	for _, tag := range tags {
		if tag == want {
			return true
		}
	}
	return false
}
