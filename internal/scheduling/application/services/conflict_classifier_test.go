package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/convene/internal/scheduling/domain"
)

func TestClassify_TiersFromTitles(t *testing.T) {
	slot := domain.TimeInterval{
		Start: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC),
	}
	overlap := busyAt("", slot.Start, slot.End)

	cases := []struct {
		title string
		want  domain.Tier
	}{
		{"Client Demo", domain.TierHigh},
		{"Team Workshop", domain.TierCritical},
		{"Off Hours", domain.TierBlocked},
		{"Board Meeting", domain.TierCritical},
		{"Sprint Prep", domain.TierHigh},
		{"Code Review", domain.TierMedium},
	}

	classifier := NewConflictClassifier(nil)
	for _, tc := range cases {
		ev := overlap
		ev.Title = tc.title
		idx := domain.NewAvailabilityIndex(map[string][]domain.BusyEvent{"alice": {ev}})

		conflicts := classifier.Classify(slot, idx, []string{"alice"})
		require.Len(t, conflicts, 1, "title %q", tc.title)
		assert.Equal(t, tc.want, conflicts[0].Tier, "title %q", tc.title)
	}
}

func TestClassify_SkipsLowTierPlaceholders(t *testing.T) {
	slot := domain.TimeInterval{
		Start: time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 3, 2, 13, 0, 0, 0, time.UTC),
	}
	idx := domain.NewAvailabilityIndex(map[string][]domain.BusyEvent{
		"alice": {busyAt("Lunch", slot.Start, slot.End)},
	})

	conflicts := NewConflictClassifier(nil).Classify(slot, idx, []string{"alice"})
	assert.Empty(t, conflicts)
}

func TestClassify_DeduplicatesIdenticalEntries(t *testing.T) {
	slot := domain.TimeInterval{
		Start: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC),
	}
	dup := busyAt("Code Review", slot.Start, slot.End)
	idx := domain.NewAvailabilityIndex(map[string][]domain.BusyEvent{
		"alice": {dup, dup},
	})

	conflicts := NewConflictClassifier(nil).Classify(slot, idx, []string{"alice"})
	assert.Len(t, conflicts, 1)
}

func TestClassify_SameEventPerAttendeeYieldsOneEach(t *testing.T) {
	slot := domain.TimeInterval{
		Start: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC),
	}
	shared := busyAt("Code Review", slot.Start, slot.End)
	idx := domain.NewAvailabilityIndex(map[string][]domain.BusyEvent{
		"alice": {shared},
		"bob":   {shared},
	})

	conflicts := NewConflictClassifier(nil).Classify(slot, idx, []string{"alice", "bob"})
	assert.Len(t, conflicts, 2)
}

func TestClassify_HalfOpenBoundariesDoNotConflict(t *testing.T) {
	slot := domain.TimeInterval{
		Start: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC),
	}
	idx := domain.NewAvailabilityIndex(map[string][]domain.BusyEvent{
		"alice": {
			busyAt("Before", slot.Start.Add(-time.Hour), slot.Start),
			busyAt("After", slot.End, slot.End.Add(time.Hour)),
		},
	})

	conflicts := NewConflictClassifier(nil).Classify(slot, idx, []string{"alice"})
	assert.Empty(t, conflicts)
}
