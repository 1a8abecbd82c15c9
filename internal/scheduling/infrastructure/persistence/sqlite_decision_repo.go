// Package persistence implements the decision audit log over SQLite and
// PostgreSQL.
package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/convene/internal/scheduling/domain"
)

// SQLiteDecisionRepository persists decision records in SQLite.
type SQLiteDecisionRepository struct {
	db *sql.DB
}

// NewSQLiteDecisionRepository creates a new SQLite decision repository.
func NewSQLiteDecisionRepository(db *sql.DB) *SQLiteDecisionRepository {
	return &SQLiteDecisionRepository{db: db}
}

// InitSchema creates the decisions table if it does not exist.
func (r *SQLiteDecisionRepository) InitSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS decisions (
			id TEXT PRIMARY KEY,
			request_id TEXT NOT NULL,
			slot_start TEXT NOT NULL,
			slot_end TEXT NOT NULL,
			duration_minutes INTEGER NOT NULL,
			conflict_count INTEGER NOT NULL,
			action_count INTEGER NOT NULL,
			urgency TEXT NOT NULL,
			category TEXT NOT NULL,
			degraded INTEGER NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			decided_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_decisions_request_id ON decisions(request_id);
	`)
	return err
}

// Save stores a decision record.
func (r *SQLiteDecisionRepository) Save(ctx context.Context, rec domain.DecisionRecord) error {
	query := `
		INSERT INTO decisions (
			id, request_id, slot_start, slot_end, duration_minutes,
			conflict_count, action_count, urgency, category, degraded, error, decided_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID.String(),
		rec.RequestID,
		rec.SlotStart.Format(time.RFC3339),
		rec.SlotEnd.Format(time.RFC3339),
		rec.DurationMinutes,
		rec.ConflictCount,
		rec.ActionCount,
		rec.Urgency,
		rec.Category,
		boolToInt(rec.Degraded),
		rec.Error,
		rec.DecidedAt.Format(time.RFC3339),
	)
	return err
}

// FindByRequestID returns all records for a request, oldest first.
func (r *SQLiteDecisionRepository) FindByRequestID(ctx context.Context, requestID string) ([]domain.DecisionRecord, error) {
	query := selectColumns + ` WHERE request_id = ? ORDER BY decided_at`

	rows, err := r.db.QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

// ListRecent returns the newest records up to limit.
func (r *SQLiteDecisionRepository) ListRecent(ctx context.Context, limit int) ([]domain.DecisionRecord, error) {
	query := selectColumns + ` ORDER BY decided_at DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

const selectColumns = `
	SELECT id, request_id, slot_start, slot_end, duration_minutes,
		   conflict_count, action_count, urgency, category, degraded, error, decided_at
	FROM decisions`

func scanRecords(rows *sql.Rows) ([]domain.DecisionRecord, error) {
	records := make([]domain.DecisionRecord, 0)
	for rows.Next() {
		var rec domain.DecisionRecord
		var idStr, slotStartStr, slotEndStr, decidedAtStr string
		var degraded int

		if err := rows.Scan(
			&idStr,
			&rec.RequestID,
			&slotStartStr,
			&slotEndStr,
			&rec.DurationMinutes,
			&rec.ConflictCount,
			&rec.ActionCount,
			&rec.Urgency,
			&rec.Category,
			&degraded,
			&rec.Error,
			&decidedAtStr,
		); err != nil {
			return nil, err
		}

		rec.ID, _ = uuid.Parse(idStr)
		rec.SlotStart, _ = time.Parse(time.RFC3339, slotStartStr)
		rec.SlotEnd, _ = time.Parse(time.RFC3339, slotEndStr)
		rec.DecidedAt, _ = time.Parse(time.RFC3339, decidedAtStr)
		rec.Degraded = degraded == 1

		records = append(records, rec)
	}
	return records, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
