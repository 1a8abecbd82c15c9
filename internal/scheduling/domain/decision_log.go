package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DecisionRecord is the audit-log row written for every processed request.
// It captures what was decided, not the schedules themselves.
type DecisionRecord struct {
	ID              uuid.UUID
	RequestID       string
	SlotStart       time.Time
	SlotEnd         time.Time
	DurationMinutes int
	ConflictCount   int
	ActionCount     int
	Urgency         string
	Category        string
	Degraded        bool
	Error           string
	DecidedAt       time.Time
}

// NewDecisionRecord derives an audit record from a decision.
func NewDecisionRecord(d Decision, decidedAt time.Time) DecisionRecord {
	return DecisionRecord{
		ID:              uuid.New(),
		RequestID:       d.RequestID,
		SlotStart:       d.Slot.Start,
		SlotEnd:         d.Slot.End,
		DurationMinutes: d.DurationMinutes,
		ConflictCount:   len(d.Conflicts),
		ActionCount:     len(d.Actions),
		Urgency:         d.Rationale.Urgency,
		Category:        d.Rationale.Category,
		Degraded:        d.Rationale.Degraded,
		Error:           d.Rationale.Error,
		DecidedAt:       decidedAt,
	}
}

// DecisionRepository persists decision audit records.
type DecisionRepository interface {
	// Save stores a record.
	Save(ctx context.Context, rec DecisionRecord) error

	// FindByRequestID returns all records for a request, oldest first.
	FindByRequestID(ctx context.Context, requestID string) ([]DecisionRecord, error)

	// ListRecent returns the newest records up to limit.
	ListRecent(ctx context.Context, limit int) ([]DecisionRecord, error)
}
