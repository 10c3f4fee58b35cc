// internal/engine/engine.go
package engine

import (
	"context"
	"time"

	"github.com/pharmalytics/inventory-engine/internal/config"
	"github.com/pharmalytics/inventory-engine/internal/domain"
	"github.com/pharmalytics/inventory-engine/internal/engine/anomaly"
	"github.com/pharmalytics/inventory-engine/internal/engine/expiry"
	"github.com/pharmalytics/inventory-engine/internal/engine/forecast"
	"github.com/pharmalytics/inventory-engine/internal/engine/interaction"
	"github.com/pharmalytics/inventory-engine/internal/engine/reorder"
	"github.com/pharmalytics/inventory-engine/internal/engine/timeseries"
	"golang.org/x/sync/errgroup"
)

// Engine is the inventory intelligence core: a pure, synchronous computation
// over immutable inputs. It owns no storage and writes nothing back; callers
// pre-fetch inputs and persist outputs.
type Engine struct {
	cfg        config.EngineConfig
	aggregator *timeseries.Aggregator
	selector   *forecast.Selector
	detector   *anomaly.Detector
	optimizer  *reorder.Optimizer
	scorer     *expiry.Scorer
	matcher    *interaction.Matcher
}

func New(cfg config.EngineConfig) *Engine {
	return &Engine{
		cfg:        cfg,
		aggregator: timeseries.NewAggregator(cfg.MinPeriods),
		selector:   forecast.NewSelector(cfg),
		detector:   anomaly.NewDetector(cfg),
		optimizer:  reorder.NewOptimizer(cfg),
		scorer:     expiry.NewScorer(cfg),
		matcher:    interaction.NewMatcher(cfg.SimilarityThreshold),
	}
}

// Aggregate builds the gap-free per-period series for one item.
func (e *Engine) Aggregate(itemID string, records []domain.ConsumptionRecord, g domain.Granularity, now time.Time) (*domain.TimeSeries, error) {
	return e.aggregator.Aggregate(itemID, records, g, now)
}

// Forecast selects and fits the best candidate model for the series.
func (e *Engine) Forecast(series *domain.TimeSeries, horizonPeriods int) (*domain.ForecastResult, error) {
	return e.selector.Forecast(series, horizonPeriods)
}

// DetectAnomalies flags periods deviating from the trailing expectation.
func (e *Engine) DetectAnomalies(series *domain.TimeSeries) []domain.AnomalyFlag {
	return e.detector.Detect(series)
}

// RecommendReorder returns nil when stock does not breach the reorder point.
func (e *Engine) RecommendReorder(f *domain.ForecastResult, state domain.InventoryState, quotes []domain.SupplierQuote, now time.Time) *domain.ReorderSuggestion {
	return e.optimizer.Recommend(f, state, quotes, now)
}

// ScoreExpiryRisk estimates wastage probability for one batch.
func (e *Engine) ScoreExpiryRisk(f *domain.ForecastResult, batch domain.InventoryState, now time.Time) domain.ExpiryRiskScore {
	return e.scorer.Score(f, batch, now)
}

// CheckInteractions resolves drug names against the rule base and reports
// every known pairwise interaction.
func (e *Engine) CheckInteractions(drugNames []string, base *interaction.RuleBase) domain.InteractionQueryResult {
	return e.matcher.Check(drugNames, base)
}

// ItemInput is everything the engine needs for one item in a batch run.
type ItemInput struct {
	ItemID         string
	Records        []domain.ConsumptionRecord
	Granularity    domain.Granularity
	HorizonPeriods int
	Batches        []domain.InventoryState
	Quotes         []domain.SupplierQuote
}

// ItemResult carries one item's outputs. Error holds the item's failure
// (typically insufficient history) without affecting the rest of the batch.
type ItemResult struct {
	ItemID      string                    `json:"item_id"`
	Forecast    *domain.ForecastResult    `json:"forecast,omitempty"`
	Anomalies   []domain.AnomalyFlag      `json:"anomalies,omitempty"`
	Reorder     *domain.ReorderSuggestion `json:"reorder,omitempty"`
	ExpiryRisks []domain.ExpiryRiskScore  `json:"expiry_risks,omitempty"`
	Error       string                    `json:"error,omitempty"`
}

// BatchResult is the outcome of one engine run over many items.
type BatchResult struct {
	Items       []ItemResult `json:"items"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// RunBatch processes items in parallel with per-item failure isolation: one
// item's error is recorded on its result and the rest of the batch still
// completes. The returned error is only the context's, never an item's.
// Aggregation, expiry and reorder all anchor at the caller-supplied reference
// time, so identical inputs give identical results regardless of wall clock.
func (e *Engine) RunBatch(ctx context.Context, items []ItemInput, now time.Time) (*BatchResult, error) {
	now = now.UTC()
	results := make([]ItemResult, len(items))

	g, ctx := errgroup.WithContext(ctx)
	workers := e.cfg.BatchWorkers
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)

	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			results[i] = e.runItem(item, now)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &BatchResult{Items: results, GeneratedAt: now}, nil
}

func (e *Engine) runItem(item ItemInput, now time.Time) ItemResult {
	result := ItemResult{ItemID: item.ItemID}

	series, err := e.aggregator.Aggregate(item.ItemID, item.Records, item.Granularity, now)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Anomalies = e.detector.Detect(series)

	f, err := e.selector.Forecast(series, item.HorizonPeriods)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Forecast = f

	for _, batch := range item.Batches {
		result.ExpiryRisks = append(result.ExpiryRisks, e.scorer.Score(f, batch, now))
	}

	// Reorder decisions look at the item's total position, not one batch.
	if len(item.Batches) > 0 {
		position := item.Batches[0]
		for _, batch := range item.Batches[1:] {
			position.QuantityOnHand += batch.QuantityOnHand
			position.QuantityInTransit += batch.QuantityInTransit
		}
		result.Reorder = e.optimizer.Recommend(f, position, item.Quotes, now)
	}

	return result
}
