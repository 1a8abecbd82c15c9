package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/convene/internal/scheduling/domain"
)

func TestBuild_AppendsNewMeetingPerAttendee(t *testing.T) {
	day := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	slot := domain.IntervalFrom(day.Add(10*time.Hour+30*time.Minute), 30*time.Minute)

	idx := domain.NewAvailabilityIndex(map[string][]domain.BusyEvent{
		"alice": {busyAt("Standup", day.Add(9*time.Hour), day.Add(9*time.Hour+15*time.Minute))},
		"bob":   nil,
	})

	decision := NewDecisionBuilder(nil).Build(
		"req-1", "Project Sync", []string{"alice", "bob"}, idx, slot, nil, nil, domain.Rationale{},
	)

	assert.Equal(t, "req-1", decision.RequestID)
	assert.Equal(t, 30, decision.DurationMinutes)
	require.Len(t, decision.Schedules, 2)

	alice := decision.Schedules[0]
	require.Len(t, alice.Events, 2)
	assert.Equal(t, "Standup", alice.Events[0].Title)
	assert.Equal(t, "Project Sync", alice.Events[1].Title)
	assert.True(t, alice.Events[1].IsNew)
	assert.Equal(t, []string{"alice", "bob"}, alice.Events[1].Attendees)

	bob := decision.Schedules[1]
	require.Len(t, bob.Events, 1)
	assert.Equal(t, "Project Sync", bob.Events[0].Title)
}

func TestBuild_AppliesRescheduleActions(t *testing.T) {
	day := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	slot := domain.IntervalFrom(day.Add(14*time.Hour), 30*time.Minute)

	original := domain.TimeInterval{Start: day.Add(14 * time.Hour), End: day.Add(14*time.Hour + 30*time.Minute)}
	moved := domain.TimeInterval{Start: day.Add(8 * time.Hour), End: day.Add(8*time.Hour + 30*time.Minute)}

	idx := domain.NewAvailabilityIndex(map[string][]domain.BusyEvent{
		"alice": {busyAt("Code Review", original.Start, original.End)},
	})
	actions := []domain.RescheduleAction{{
		Attendee: "alice",
		Title:    "Code Review",
		Original: original,
		New:      moved,
	}}

	decision := NewDecisionBuilder(nil).Build(
		"req-2", "Sync", []string{"alice"}, idx, slot, nil, actions, domain.Rationale{},
	)

	events := decision.Schedules[0].Events
	require.Len(t, events, 2)
	// Timeline is sorted: relocated event at 08:00 first, meeting at 14:00.
	assert.Equal(t, "Code Review", events[0].Title)
	assert.True(t, events[0].Interval.Equal(moved))
	assert.Equal(t, "Sync", events[1].Title)
}

func TestBuild_IdempotentAgainstDuplicateEntriesAndActions(t *testing.T) {
	day := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	slot := domain.IntervalFrom(day.Add(14*time.Hour), 30*time.Minute)

	original := domain.TimeInterval{Start: day.Add(14 * time.Hour), End: day.Add(14*time.Hour + 30*time.Minute)}
	moved := domain.TimeInterval{Start: day.Add(8 * time.Hour), End: day.Add(8*time.Hour + 30*time.Minute)}

	dup := busyAt("Code Review", original.Start, original.End)
	idx := domain.NewAvailabilityIndex(map[string][]domain.BusyEvent{
		"alice": {dup, dup},
	})
	action := domain.RescheduleAction{Attendee: "alice", Title: "Code Review", Original: original, New: moved}
	actions := []domain.RescheduleAction{action, action}

	decision := NewDecisionBuilder(nil).Build(
		"req-3", "Sync", []string{"alice"}, idx, slot, nil, actions, domain.Rationale{},
	)

	events := decision.Schedules[0].Events
	// Duplicate calendar entries collapse and the action applies once:
	// one relocated event plus the new meeting.
	require.Len(t, events, 2)
	assert.True(t, events[0].Interval.Equal(moved))
}

func TestBuild_BroadcastActionAppliesToEveryAttendee(t *testing.T) {
	day := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	slot := domain.IntervalFrom(day.Add(9*time.Hour), 30*time.Minute)

	original := domain.TimeInterval{Start: day.Add(10 * time.Hour), End: day.Add(10*time.Hour + 30*time.Minute)}
	moved := domain.TimeInterval{Start: day.Add(15 * time.Hour), End: day.Add(15*time.Hour + 30*time.Minute)}

	shared := busyAt("Team Sync", original.Start, original.End)
	idx := domain.NewAvailabilityIndex(map[string][]domain.BusyEvent{
		"alice": {shared},
		"bob":   {shared},
	})
	actions := []domain.RescheduleAction{{
		Attendee: domain.BroadcastAttendee,
		Title:    "Team Sync",
		Original: original,
		New:      moved,
	}}

	decision := NewDecisionBuilder(nil).Build(
		"req-4", "Standup", []string{"alice", "bob"}, idx, slot, nil, actions, domain.Rationale{},
	)

	for _, sched := range decision.Schedules {
		require.Len(t, sched.Events, 2, "attendee %s", sched.Attendee)
		var teamSync *domain.BusyEvent
		for i := range sched.Events {
			if sched.Events[i].Title == "Team Sync" {
				teamSync = &sched.Events[i]
			}
		}
		require.NotNil(t, teamSync, "attendee %s", sched.Attendee)
		assert.True(t, teamSync.Interval.Equal(moved), "attendee %s", sched.Attendee)
	}
}

func TestBuild_RationaleCarriedThrough(t *testing.T) {
	slot := domain.IntervalFrom(time.Date(2026, 3, 5, 10, 30, 0, 0, time.UTC), time.Hour)
	rationale := domain.Rationale{
		Urgency:         "high",
		Category:        "client",
		Relationship:    "client_facing",
		OffHoursAllowed: false,
		Degraded:        true,
	}

	decision := NewDecisionBuilder(nil).Build(
		"req-5", "Review", []string{"alice"}, emptyIndex("alice"), slot, nil, nil, rationale,
	)

	assert.Equal(t, rationale, decision.Rationale)
	assert.Equal(t, 60, decision.DurationMinutes)
}
