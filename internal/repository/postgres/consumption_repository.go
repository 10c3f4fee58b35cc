// internal/repository/postgres/consumption_repository.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pharmalytics/inventory-engine/internal/domain"
	"github.com/pharmalytics/inventory-engine/internal/repository"
)

type consumptionRepository struct {
	db *sqlx.DB
}

func NewConsumptionRepository(db *sqlx.DB) repository.ConsumptionRepository {
	return &consumptionRepository{db: db}
}

func (r *consumptionRepository) GetRecords(ctx context.Context, itemID string, since time.Time) ([]domain.ConsumptionRecord, error) {
	query := `
		SELECT item_id, timestamp, quantity_consumed
		FROM consumption_records
		WHERE item_id = $1 AND timestamp >= $2
		ORDER BY timestamp
	`

	var records []domain.ConsumptionRecord
	if err := r.db.SelectContext(ctx, &records, query, itemID, since); err != nil {
		return nil, fmt.Errorf("error getting consumption records: %w", err)
	}

	return records, nil
}

func (r *consumptionRepository) GetActiveItemIDs(ctx context.Context, since time.Time) ([]string, error) {
	query := `
		SELECT DISTINCT item_id
		FROM consumption_records
		WHERE timestamp >= $1
		ORDER BY item_id
	`

	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, since); err != nil {
		return nil, fmt.Errorf("error getting active item ids: %w", err)
	}

	return ids, nil
}
