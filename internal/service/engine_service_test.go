package service

import (
	"context"
	"testing"
	"time"

	"github.com/pharmalytics/inventory-engine/internal/config"
	"github.com/pharmalytics/inventory-engine/internal/domain"
	"github.com/pharmalytics/inventory-engine/internal/engine"
)

type fakeConsumptionRepo struct {
	itemIDs []string
	records []domain.ConsumptionRecord
}

func (f *fakeConsumptionRepo) GetRecords(ctx context.Context, itemID string, since time.Time) ([]domain.ConsumptionRecord, error) {
	return f.records, nil
}

func (f *fakeConsumptionRepo) GetActiveItemIDs(ctx context.Context, since time.Time) ([]string, error) {
	return f.itemIDs, nil
}

type fakeInventoryRepo struct {
	batches []domain.InventoryState
	quotes  []domain.SupplierQuote
}

func (f *fakeInventoryRepo) GetBatches(ctx context.Context, itemID string) ([]domain.InventoryState, error) {
	return f.batches, nil
}

func (f *fakeInventoryRepo) GetQuotes(ctx context.Context, itemID string) ([]domain.SupplierQuote, error) {
	return f.quotes, nil
}

type fakeRunRepo struct {
	saved []domain.EngineRun
}

func (f *fakeRunRepo) SaveRun(ctx context.Context, run domain.EngineRun) error {
	f.saved = append(f.saved, run)
	return nil
}

func (f *fakeRunRepo) ListRuns(ctx context.Context, limit int) ([]domain.EngineRun, error) {
	return f.saved, nil
}

type fakeForecastCache struct {
	cached           *domain.ForecastResult
	gets             int
	sets             int
	invalidateAlls   int
	invalidatedItems []string
}

func (f *fakeForecastCache) Get(ctx context.Context, series *domain.TimeSeries, horizon int) (*domain.ForecastResult, bool, error) {
	f.gets++
	if f.cached != nil {
		return f.cached, true, nil
	}
	return nil, false, nil
}

func (f *fakeForecastCache) Set(ctx context.Context, series *domain.TimeSeries, horizon int, result *domain.ForecastResult) error {
	f.sets++
	return nil
}

func (f *fakeForecastCache) InvalidateItem(ctx context.Context, itemID string) error {
	f.invalidatedItems = append(f.invalidatedItems, itemID)
	return nil
}

func (f *fakeForecastCache) InvalidateAll(ctx context.Context) error {
	f.invalidateAlls++
	return nil
}

func recentDailyRecords(itemID string, quantities []float64) []domain.ConsumptionRecord {
	records := make([]domain.ConsumptionRecord, 0, len(quantities))
	start := time.Now().UTC().AddDate(0, 0, -len(quantities)+1)
	for i, q := range quantities {
		records = append(records, domain.ConsumptionRecord{
			ItemID:    itemID,
			Timestamp: start.AddDate(0, 0, i),
			Quantity:  q,
		})
	}
	return records
}

func newTestService(cacheImpl *fakeForecastCache, runs *fakeRunRepo) *EngineService {
	cfg := config.DefaultEngineConfig()
	consumption := &fakeConsumptionRepo{
		itemIDs: []string{"amoxicillin-500"},
		records: recentDailyRecords("amoxicillin-500", []float64{10, 12, 11, 13, 12, 10, 11, 12}),
	}
	inventory := &fakeInventoryRepo{
		batches: []domain.InventoryState{{
			ItemID:         "amoxicillin-500",
			BatchID:        "B-1",
			QuantityOnHand: 500,
			ExpiryDate:     time.Now().UTC().AddDate(1, 0, 0),
			LeadTimeDays:   7,
		}},
	}
	if runs == nil {
		return NewEngineService(engine.New(cfg), cfg, consumption, inventory, nil, cacheImpl)
	}
	return NewEngineService(engine.New(cfg), cfg, consumption, inventory, runs, cacheImpl)
}

func TestGetForecastServesFromCache(t *testing.T) {
	cacheImpl := &fakeForecastCache{
		cached: &domain.ForecastResult{ItemID: "amoxicillin-500", ModelName: "cached_marker"},
	}
	svc := newTestService(cacheImpl, nil)

	result, err := svc.GetForecast(context.Background(), "amoxicillin-500", domain.GranularityDay, 7, false)
	if err != nil {
		t.Fatalf("GetForecast: %v", err)
	}
	if result.ModelName != "cached_marker" {
		t.Errorf("expected the cached result, got model %s", result.ModelName)
	}
	if cacheImpl.sets != 0 {
		t.Errorf("cache hit must not recompute, got %d sets", cacheImpl.sets)
	}
}

func TestGetForecastRefreshInvalidatesAndRecomputes(t *testing.T) {
	cacheImpl := &fakeForecastCache{
		cached: &domain.ForecastResult{ItemID: "amoxicillin-500", ModelName: "cached_marker"},
	}
	svc := newTestService(cacheImpl, nil)

	result, err := svc.GetForecast(context.Background(), "amoxicillin-500", domain.GranularityDay, 7, true)
	if err != nil {
		t.Fatalf("GetForecast: %v", err)
	}
	if result.ModelName == "cached_marker" {
		t.Error("refresh must bypass the cached result")
	}
	if len(cacheImpl.invalidatedItems) != 1 || cacheImpl.invalidatedItems[0] != "amoxicillin-500" {
		t.Errorf("refresh must invalidate the item's entries, got %v", cacheImpl.invalidatedItems)
	}
	if cacheImpl.sets != 1 {
		t.Errorf("recomputed forecast should be cached, got %d sets", cacheImpl.sets)
	}
}

func TestGetForecastCachesMiss(t *testing.T) {
	cacheImpl := &fakeForecastCache{}
	svc := newTestService(cacheImpl, nil)

	if _, err := svc.GetForecast(context.Background(), "amoxicillin-500", domain.GranularityDay, 7, false); err != nil {
		t.Fatalf("GetForecast: %v", err)
	}
	if cacheImpl.gets != 1 || cacheImpl.sets != 1 {
		t.Errorf("miss should consult and then fill the cache, got %d gets %d sets", cacheImpl.gets, cacheImpl.sets)
	}
}

func TestRunAllInvalidatesCacheAndRecordsRun(t *testing.T) {
	cacheImpl := &fakeForecastCache{}
	runs := &fakeRunRepo{}
	svc := newTestService(cacheImpl, runs)

	batch, _, err := svc.RunAll(context.Background(), domain.GranularityDay, 7)
	if err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	if len(batch.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(batch.Items))
	}
	if cacheImpl.invalidateAlls != 1 {
		t.Errorf("a completed run must invalidate cached forecasts, got %d calls", cacheImpl.invalidateAlls)
	}
	if len(runs.saved) != 1 {
		t.Fatalf("expected the run to be persisted, got %d", len(runs.saved))
	}
	if runs.saved[0].ItemCount != 1 || runs.saved[0].FailedCount != 0 {
		t.Errorf("run summary mismatch: %+v", runs.saved[0])
	}
}
