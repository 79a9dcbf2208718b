package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"stokhos/domain/core"
	"stokhos/ports"
)

// runRepository implements the RunRepository interface
type runRepository struct {
	db *sqlx.DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &runRepository{db: db}
}

// Migrate creates the runs table if it does not exist
func Migrate(ctx context.Context, db *sqlx.DB) error {
	query := `CREATE TABLE IF NOT EXISTS analysis_runs (
		id UUID PRIMARY KEY,
		kind TEXT NOT NULL,
		result_json JSONB NOT NULL,
		summary TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create analysis_runs table: %w", err)
	}
	return nil
}

// Save inserts a completed analysis run
func (r *runRepository) Save(ctx context.Context, record *ports.RunRecord) error {
	query := `INSERT INTO analysis_runs (id, kind, result_json, summary, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query,
		record.ID, record.Kind, record.ResultJSON, record.Summary, record.CreatedAt.Time(),
	)
	if err != nil {
		return fmt.Errorf("failed to save analysis run: %w", err)
	}
	return nil
}

// GetByID retrieves a run by its ID
func (r *runRepository) GetByID(ctx context.Context, id core.RunID) (*ports.RunRecord, error) {
	query := `SELECT id, kind, result_json, summary, created_at
		FROM analysis_runs WHERE id = $1`

	var record ports.RunRecord
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&record.ID, &record.Kind, &record.ResultJSON, &record.Summary, &record.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to get analysis run: %w", err)
	}
	return &record, nil
}

// List retrieves runs in reverse chronological order with pagination
func (r *runRepository) List(ctx context.Context, limit, offset int) ([]*ports.RunRecord, error) {
	query := `SELECT id, kind, result_json, summary, created_at
		FROM analysis_runs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis runs: %w", err)
	}
	defer rows.Close()

	var records []*ports.RunRecord
	for rows.Next() {
		var record ports.RunRecord
		if err := rows.Scan(
			&record.ID, &record.Kind, &record.ResultJSON, &record.Summary, &record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan analysis run: %w", err)
		}
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate analysis runs: %w", err)
	}
	return records, nil
}
