package persistence

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/felixgeelhaar/convene/internal/scheduling/domain"
)

// PostgresDecisionRepository persists decision records in PostgreSQL.
type PostgresDecisionRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresDecisionRepository creates a new repository.
func NewPostgresDecisionRepository(pool *pgxpool.Pool) *PostgresDecisionRepository {
	return &PostgresDecisionRepository{pool: pool}
}

// InitSchema creates the decisions table if it does not exist.
func (r *PostgresDecisionRepository) InitSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS decisions (
			id UUID PRIMARY KEY,
			request_id TEXT NOT NULL,
			slot_start TIMESTAMPTZ NOT NULL,
			slot_end TIMESTAMPTZ NOT NULL,
			duration_minutes INTEGER NOT NULL,
			conflict_count INTEGER NOT NULL,
			action_count INTEGER NOT NULL,
			urgency TEXT NOT NULL,
			category TEXT NOT NULL,
			degraded BOOLEAN NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			decided_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_decisions_request_id ON decisions(request_id);
	`)
	return err
}

// Save stores a decision record.
func (r *PostgresDecisionRepository) Save(ctx context.Context, rec domain.DecisionRecord) error {
	query := `
		INSERT INTO decisions (
			id, request_id, slot_start, slot_end, duration_minutes,
			conflict_count, action_count, urgency, category, degraded, error, decided_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		rec.ID,
		rec.RequestID,
		rec.SlotStart,
		rec.SlotEnd,
		rec.DurationMinutes,
		rec.ConflictCount,
		rec.ActionCount,
		rec.Urgency,
		rec.Category,
		rec.Degraded,
		rec.Error,
		rec.DecidedAt,
	)
	return err
}

// FindByRequestID returns all records for a request, oldest first.
func (r *PostgresDecisionRepository) FindByRequestID(ctx context.Context, requestID string) ([]domain.DecisionRecord, error) {
	query := `
		SELECT id, request_id, slot_start, slot_end, duration_minutes,
			   conflict_count, action_count, urgency, category, degraded, error, decided_at
		FROM decisions
		WHERE request_id = $1
		ORDER BY decided_at
	`

	rows, err := r.pool.Query(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.DecisionRecord, 0)
	for rows.Next() {
		var rec domain.DecisionRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.RequestID,
			&rec.SlotStart,
			&rec.SlotEnd,
			&rec.DurationMinutes,
			&rec.ConflictCount,
			&rec.ActionCount,
			&rec.Urgency,
			&rec.Category,
			&rec.Degraded,
			&rec.Error,
			&rec.DecidedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListRecent returns the newest records up to limit.
func (r *PostgresDecisionRepository) ListRecent(ctx context.Context, limit int) ([]domain.DecisionRecord, error) {
	query := `
		SELECT id, request_id, slot_start, slot_end, duration_minutes,
			   conflict_count, action_count, urgency, category, degraded, error, decided_at
		FROM decisions
		ORDER BY decided_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.DecisionRecord, 0)
	for rows.Next() {
		var rec domain.DecisionRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.RequestID,
			&rec.SlotStart,
			&rec.SlotEnd,
			&rec.DurationMinutes,
			&rec.ConflictCount,
			&rec.ActionCount,
			&rec.Urgency,
			&rec.Category,
			&rec.Degraded,
			&rec.Error,
			&rec.DecidedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
