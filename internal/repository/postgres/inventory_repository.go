// internal/repository/postgres/inventory_repository.go
package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pharmalytics/inventory-engine/internal/domain"
	"github.com/pharmalytics/inventory-engine/internal/repository"
)

type inventoryRepository struct {
	db *sqlx.DB
}

func NewInventoryRepository(db *sqlx.DB) repository.InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) GetBatches(ctx context.Context, itemID string) ([]domain.InventoryState, error) {
	query := `
		SELECT
			item_id, batch_id, quantity_on_hand, quantity_in_transit,
			unit_cost, expiry_date, lead_time_days, supplier_id,
			return_window_open
		FROM inventory_batches
		WHERE item_id = $1 AND quantity_on_hand > 0
		ORDER BY expiry_date
	`

	var batches []domain.InventoryState
	if err := r.db.SelectContext(ctx, &batches, query, itemID); err != nil {
		return nil, fmt.Errorf("error getting inventory batches: %w", err)
	}

	return batches, nil
}

func (r *inventoryRepository) GetQuotes(ctx context.Context, itemID string) ([]domain.SupplierQuote, error) {
	query := `
		SELECT supplier_id, unit_cost, fixed_order_cost, lead_time_days, min_order_qty
		FROM supplier_quotes
		WHERE item_id = $1 AND active
		ORDER BY supplier_id
	`

	var quotes []domain.SupplierQuote
	if err := r.db.SelectContext(ctx, &quotes, query, itemID); err != nil {
		return nil, fmt.Errorf("error getting supplier quotes: %w", err)
	}

	return quotes, nil
}
