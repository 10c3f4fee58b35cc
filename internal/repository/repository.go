// internal/repository/repository.go
package repository

import (
	"context"
	"time"

	"github.com/pharmalytics/inventory-engine/internal/domain"
)

// ConsumptionRepository reads dispensing history. Records are raw events;
// aggregation into periods happens in the engine.
type ConsumptionRepository interface {
	GetRecords(ctx context.Context, itemID string, since time.Time) ([]domain.ConsumptionRecord, error)
	GetActiveItemIDs(ctx context.Context, since time.Time) ([]string, error)
}

// InventoryRepository reads the current stock position per batch plus the
// supplier quotes available for an item.
type InventoryRepository interface {
	GetBatches(ctx context.Context, itemID string) ([]domain.InventoryState, error)
	GetQuotes(ctx context.Context, itemID string) ([]domain.SupplierQuote, error)
}

// RunRepository persists batch-run summaries for audit and the run history
// endpoint.
type RunRepository interface {
	SaveRun(ctx context.Context, run domain.EngineRun) error
	ListRuns(ctx context.Context, limit int) ([]domain.EngineRun, error)
}
