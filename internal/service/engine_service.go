// internal/service/engine_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pharmalytics/inventory-engine/internal/cache"
	"github.com/pharmalytics/inventory-engine/internal/config"
	"github.com/pharmalytics/inventory-engine/internal/domain"
	"github.com/pharmalytics/inventory-engine/internal/engine"
	"github.com/pharmalytics/inventory-engine/internal/repository"
	"github.com/rs/zerolog/log"
)

// EngineService glues storage to the computation core: it fetches history
// and stock positions, runs the engine, and records run summaries.
type EngineService struct {
	engine      *engine.Engine
	cfg         config.EngineConfig
	consumption repository.ConsumptionRepository
	inventory   repository.InventoryRepository
	runs        repository.RunRepository
	cache       cache.ForecastCache
}

func NewEngineService(
	eng *engine.Engine,
	cfg config.EngineConfig,
	consumption repository.ConsumptionRepository,
	inventory repository.InventoryRepository,
	runs repository.RunRepository,
	cacheImpl cache.ForecastCache,
) *EngineService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopForecastCache()
	}
	return &EngineService{
		engine:      eng,
		cfg:         cfg,
		consumption: consumption,
		inventory:   inventory,
		runs:        runs,
		cache:       cacheImpl,
	}
}

// historyWindow is how far back consumption is read for forecasting.
const historyWindow = 365 * 24 * time.Hour

// GetForecast aggregates one item's history and forecasts it, serving from
// cache when the identical series was forecast recently. refresh drops the
// item's cached forecasts first and always recomputes.
func (s *EngineService) GetForecast(ctx context.Context, itemID string, g domain.Granularity, horizon int, refresh bool) (*domain.ForecastResult, error) {
	now := time.Now().UTC()

	records, err := s.consumption.GetRecords(ctx, itemID, now.Add(-historyWindow))
	if err != nil {
		return nil, err
	}

	series, err := s.engine.Aggregate(itemID, records, g, now)
	if err != nil {
		return nil, err
	}

	if refresh {
		if err := s.cache.InvalidateItem(ctx, itemID); err != nil {
			log.Warn().Err(err).Str("item_id", itemID).Msg("forecast cache invalidate failed")
		}
	} else if result, ok, err := s.cache.Get(ctx, series, horizon); err == nil && ok {
		return result, nil
	} else if err != nil {
		log.Warn().Err(err).Str("item_id", itemID).Msg("forecast cache get failed")
	}

	result, err := s.engine.Forecast(series, horizon)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, series, horizon, result); err != nil {
		log.Warn().Err(err).Str("item_id", itemID).Msg("forecast cache set failed")
	}

	return result, nil
}

// GetAnomalies returns deviation flags for one item's recent history.
func (s *EngineService) GetAnomalies(ctx context.Context, itemID string, g domain.Granularity) ([]domain.AnomalyFlag, error) {
	now := time.Now().UTC()

	records, err := s.consumption.GetRecords(ctx, itemID, now.Add(-historyWindow))
	if err != nil {
		return nil, err
	}

	series, err := s.engine.Aggregate(itemID, records, g, now)
	if err != nil {
		return nil, err
	}

	return s.engine.DetectAnomalies(series), nil
}

// GetReorderSuggestion forecasts the item and evaluates its pooled stock
// position. A nil suggestion means no action is needed.
func (s *EngineService) GetReorderSuggestion(ctx context.Context, itemID string) (*domain.ReorderSuggestion, error) {
	now := time.Now().UTC()

	forecast, err := s.GetForecast(ctx, itemID, domain.GranularityDay, s.cfg.HorizonDays, false)
	if err != nil {
		return nil, err
	}

	batches, err := s.inventory.GetBatches(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if len(batches) == 0 {
		return nil, fmt.Errorf("no inventory position for item %s", itemID)
	}

	quotes, err := s.inventory.GetQuotes(ctx, itemID)
	if err != nil {
		return nil, err
	}

	position := batches[0]
	for _, batch := range batches[1:] {
		position.QuantityOnHand += batch.QuantityOnHand
		position.QuantityInTransit += batch.QuantityInTransit
	}

	return s.engine.RecommendReorder(forecast, position, quotes, now), nil
}

// GetExpiryRisks scores every batch of one item.
func (s *EngineService) GetExpiryRisks(ctx context.Context, itemID string) ([]domain.ExpiryRiskScore, error) {
	now := time.Now().UTC()

	forecast, err := s.GetForecast(ctx, itemID, domain.GranularityDay, s.cfg.HorizonDays, false)
	if err != nil {
		return nil, err
	}

	batches, err := s.inventory.GetBatches(ctx, itemID)
	if err != nil {
		return nil, err
	}

	scores := make([]domain.ExpiryRiskScore, 0, len(batches))
	for _, batch := range batches {
		scores = append(scores, s.engine.ScoreExpiryRisk(forecast, batch, now))
	}
	return scores, nil
}

// RunAll executes a full batch over every item with recent consumption and
// records the run summary.
func (s *EngineService) RunAll(ctx context.Context, g domain.Granularity, horizon int) (*engine.BatchResult, domain.EngineRun, error) {
	startedAt := time.Now().UTC()

	itemIDs, err := s.consumption.GetActiveItemIDs(ctx, startedAt.Add(-historyWindow))
	if err != nil {
		return nil, domain.EngineRun{}, err
	}

	items := make([]engine.ItemInput, 0, len(itemIDs))
	for _, itemID := range itemIDs {
		records, err := s.consumption.GetRecords(ctx, itemID, startedAt.Add(-historyWindow))
		if err != nil {
			return nil, domain.EngineRun{}, err
		}
		batches, err := s.inventory.GetBatches(ctx, itemID)
		if err != nil {
			return nil, domain.EngineRun{}, err
		}
		quotes, err := s.inventory.GetQuotes(ctx, itemID)
		if err != nil {
			return nil, domain.EngineRun{}, err
		}
		items = append(items, engine.ItemInput{
			ItemID:         itemID,
			Records:        records,
			Granularity:    g,
			HorizonPeriods: horizon,
			Batches:        batches,
			Quotes:         quotes,
		})
	}

	batch, err := s.engine.RunBatch(ctx, items, startedAt)
	if err != nil {
		return nil, domain.EngineRun{}, err
	}

	failed := 0
	for _, item := range batch.Items {
		if item.Error != "" {
			failed++
		}
	}

	// Fresh forecasts were just computed from the current snapshot; drop any
	// cached entries from before the run.
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("forecast cache invalidate failed after run")
	}

	run := domain.EngineRun{
		ID:          uuid.NewString(),
		StartedAt:   startedAt,
		FinishedAt:  time.Now().UTC(),
		ItemCount:   len(batch.Items),
		FailedCount: failed,
	}

	if s.runs != nil {
		if err := s.runs.SaveRun(ctx, run); err != nil {
			log.Warn().Err(err).Str("run_id", run.ID).Msg("failed to persist engine run")
		}
	}

	log.Info().
		Str("run_id", run.ID).
		Int("items", run.ItemCount).
		Int("failed", run.FailedCount).
		Dur("elapsed", run.FinishedAt.Sub(run.StartedAt)).
		Msg("engine run completed")

	return batch, run, nil
}

// ListRuns returns recent run summaries, newest first.
func (s *EngineService) ListRuns(ctx context.Context, limit int) ([]domain.EngineRun, error) {
	if s.runs == nil {
		return nil, nil
	}
	return s.runs.ListRuns(ctx, limit)
}
