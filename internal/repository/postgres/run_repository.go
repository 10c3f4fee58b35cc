// internal/repository/postgres/run_repository.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pharmalytics/inventory-engine/internal/domain"
	"github.com/pharmalytics/inventory-engine/internal/repository"
)

type runRepository struct {
	db *DB
}

func NewRunRepository(db *DB) repository.RunRepository {
	return &runRepository{db: db}
}

func (r *runRepository) SaveRun(ctx context.Context, run domain.EngineRun) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO engine_runs (id, started_at, finished_at, item_count, failed_count, result_uri)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		if _, err := tx.ExecContext(ctx, query,
			run.ID, run.StartedAt, run.FinishedAt, run.ItemCount, run.FailedCount, run.ResultURI); err != nil {
			return fmt.Errorf("error saving engine run: %w", err)
		}
		return nil
	})
}

func (r *runRepository) ListRuns(ctx context.Context, limit int) ([]domain.EngineRun, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, started_at, finished_at, item_count, failed_count, result_uri
		FROM engine_runs
		ORDER BY started_at DESC
		LIMIT $1
	`

	var runs []domain.EngineRun
	if err := r.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, fmt.Errorf("error listing engine runs: %w", err)
	}

	return runs, nil
}
