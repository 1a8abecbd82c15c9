package services

import (
	"log/slog"
	"sort"

	"github.com/felixgeelhaar/convene/internal/scheduling/domain"
)

// DecisionBuilder composes the final per-attendee timelines and the decision
// value. Pure construction: deterministic given its inputs, no side effects.
type DecisionBuilder struct {
	logger *slog.Logger
}

// NewDecisionBuilder creates a decision builder.
func NewDecisionBuilder(logger *slog.Logger) *DecisionBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return &DecisionBuilder{logger: logger}
}

// Build assembles the decision. Each attendee's timeline is their original
// events with reschedule actions applied, plus the new meeting. Action
// application is idempotent: duplicate calendar entries collapse, and each
// action replaces at most one event per attendee.
func (b *DecisionBuilder) Build(
	requestID string,
	title string,
	attendees []string,
	idx *domain.AvailabilityIndex,
	slot domain.TimeInterval,
	conflicts []domain.Conflict,
	actions []domain.RescheduleAction,
	rationale domain.Rationale,
) domain.Decision {
	newMeeting := domain.BusyEvent{
		Interval:  slot,
		Title:     title,
		Attendees: attendees,
		IsNew:     true,
	}

	schedules := make([]domain.AttendeeSchedule, 0, len(attendees))
	for _, attendee := range attendees {
		timeline := applyActions(attendee, idx.Events(attendee), actions)
		timeline = append(timeline, newMeeting)
		sort.SliceStable(timeline, func(i, j int) bool {
			return timeline[i].Interval.Start.Before(timeline[j].Interval.Start)
		})
		schedules = append(schedules, domain.AttendeeSchedule{
			Attendee: attendee,
			Events:   timeline,
		})
	}

	return domain.Decision{
		RequestID:       requestID,
		Slot:            slot,
		DurationMinutes: int(slot.Duration().Minutes()),
		Conflicts:       conflicts,
		Actions:         actions,
		Schedules:       schedules,
		Rationale:       rationale,
	}
}

// applyActions rebuilds one attendee's event list with relocations applied.
// Duplicate source entries (same title and interval) are collapsed so a
// displaced event cannot appear both moved and unmoved.
func applyActions(attendee string, events []domain.BusyEvent, actions []domain.RescheduleAction) []domain.BusyEvent {
	out := make([]domain.BusyEvent, 0, len(events))
	processed := make(map[string]struct{}, len(events))

	for _, ev := range events {
		if _, ok := processed[ev.Key()]; ok {
			continue
		}
		processed[ev.Key()] = struct{}{}

		relocated := false
		for _, action := range actions {
			if action.Matches(attendee, ev) {
				out = append(out, ev.RelocatedTo(action.New))
				relocated = true
				break
			}
		}
		if !relocated {
			out = append(out, ev)
		}
	}
	return out
}
