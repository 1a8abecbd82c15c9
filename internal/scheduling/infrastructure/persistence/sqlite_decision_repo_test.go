package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/felixgeelhaar/convene/internal/scheduling/domain"
)

func setupDecisionTestDB(t *testing.T) (*sql.DB, *SQLiteDecisionRepository) {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	repo := NewSQLiteDecisionRepository(sqlDB)
	require.NoError(t, repo.InitSchema(context.Background()))
	return sqlDB, repo
}

func sampleDecision(requestID string, decidedAt time.Time) domain.DecisionRecord {
	slot := domain.TimeInterval{
		Start: time.Date(2026, 3, 5, 10, 30, 0, 0, time.UTC),
		End:   time.Date(2026, 3, 5, 11, 0, 0, 0, time.UTC),
	}
	return domain.NewDecisionRecord(domain.Decision{
		RequestID:       requestID,
		Slot:            slot,
		DurationMinutes: 30,
		Rationale: domain.Rationale{
			Urgency:  "medium",
			Category: "planning",
		},
	}, decidedAt)
}

func TestSQLiteDecisionRepository_SaveAndFind(t *testing.T) {
	_, repo := setupDecisionTestDB(t)
	ctx := context.Background()

	rec := sampleDecision("req-1", time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Save(ctx, rec))

	found, err := repo.FindByRequestID(ctx, "req-1")
	require.NoError(t, err)
	require.Len(t, found, 1)

	assert.Equal(t, rec.ID, found[0].ID)
	assert.Equal(t, "req-1", found[0].RequestID)
	assert.True(t, rec.SlotStart.Equal(found[0].SlotStart))
	assert.Equal(t, 30, found[0].DurationMinutes)
	assert.Equal(t, "medium", found[0].Urgency)
	assert.False(t, found[0].Degraded)
}

func TestSQLiteDecisionRepository_FindByRequestID_Empty(t *testing.T) {
	_, repo := setupDecisionTestDB(t)

	found, err := repo.FindByRequestID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestSQLiteDecisionRepository_ListRecent(t *testing.T) {
	_, repo := setupDecisionTestDB(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		rec := sampleDecision("req-list", base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, repo.Save(ctx, rec))
	}

	recent, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)

	// Newest first.
	assert.True(t, recent[0].DecidedAt.After(recent[1].DecidedAt))
}

func TestSQLiteDecisionRepository_DegradedRoundTrip(t *testing.T) {
	_, repo := setupDecisionTestDB(t)
	ctx := context.Background()

	rec := sampleDecision("req-degraded", time.Now().UTC().Truncate(time.Second))
	rec.Degraded = true
	rec.Error = "no feasible slot"
	require.NoError(t, repo.Save(ctx, rec))

	found, err := repo.FindByRequestID(ctx, "req-degraded")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.True(t, found[0].Degraded)
	assert.Equal(t, "no feasible slot", found[0].Error)
}
