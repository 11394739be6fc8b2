package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yhlin/memberdir/internal/database"
	"github.com/yhlin/memberdir/internal/models"
)

// ImportRunRepository records finished bulk-import passes.
type ImportRunRepository struct {
	pool *pgxpool.Pool
}

func NewImportRunRepository(db *database.DB) *ImportRunRepository {
	return &ImportRunRepository{pool: db.Pool}
}

func (r *ImportRunRepository) Create(ctx context.Context, run *models.ImportRun) (*models.ImportRun, error) {
	run.ID = uuid.New().String()

	query := `
		INSERT INTO import_runs (id, actor, total_rows, success_count, skipped_count, error_count, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		run.ID, run.Actor, run.TotalRows,
		run.SuccessCount, run.SkippedCount, run.ErrorCount,
		run.StartedAt, run.FinishedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return run, nil
}

// ListRecent returns the most recent runs, newest first.
func (r *ImportRunRepository) ListRecent(ctx context.Context, limit int) ([]*models.ImportRun, error) {
	query := `
		SELECT id, actor, total_rows, success_count, skipped_count, error_count, started_at, finished_at
		FROM import_runs ORDER BY finished_at DESC LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query import runs: %w", err)
	}
	defer rows.Close()

	runs := make([]*models.ImportRun, 0)
	for rows.Next() {
		var run models.ImportRun
		err := rows.Scan(
			&run.ID, &run.Actor, &run.TotalRows,
			&run.SuccessCount, &run.SkippedCount, &run.ErrorCount,
			&run.StartedAt, &run.FinishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan import run: %w", err)
		}
		runs = append(runs, &run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return runs, nil
}

// DeleteOlderThan removes runs whose finish time predates the cutoff.
// Used by the retention sweeper.
func (r *ImportRunRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM import_runs WHERE finished_at < $1`

	result, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}

	return result.RowsAffected(), nil
}
