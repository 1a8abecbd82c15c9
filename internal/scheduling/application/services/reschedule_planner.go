package services

import (
	"log/slog"

	"github.com/felixgeelhaar/convene/internal/scheduling/domain"
)

// ReschedulePlanner relocates Medium-tier conflicting events to free the
// chosen slot, without disturbing other attendees' schedules.
type ReschedulePlanner struct {
	logger *slog.Logger
}

// NewReschedulePlanner creates a reschedule planner.
func NewReschedulePlanner(logger *slog.Logger) *ReschedulePlanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReschedulePlanner{logger: logger}
}

// Plan finds a new interval for one conflicting event on its original date,
// inside the [08:00, 18:00) window and clear of the new meeting. When no gap
// exists, the event is attached at the window start and the action reports
// degraded=true; an unplaced event would be worse than a second-order
// conflict.
func (p *ReschedulePlanner) Plan(
	conflict domain.Conflict,
	idx *domain.AvailabilityIndex,
	meeting domain.TimeInterval,
) (domain.RescheduleAction, bool) {
	original := conflict.Event.Interval
	duration := original.Duration()
	date := original.Start

	window := domain.TimeInterval{
		Start: at(date, WindowStartHour, 0),
		End:   at(date, WindowEndHour, 0),
	}

	gap, ok := idx.FindGap(conflict.Attendee, date, duration, []domain.TimeInterval{meeting}, window)
	if !ok {
		p.logger.Warn("no gap for displaced event, attaching at window start",
			"attendee", conflict.Attendee,
			"title", conflict.Event.Title,
		)
		gap = domain.IntervalFrom(window.Start, duration)
	}

	return domain.RescheduleAction{
		Attendee: conflict.Attendee,
		Title:    conflict.Event.Title,
		Original: original,
		New:      gap,
	}, !ok
}

// PlanAll plans a relocation for every Medium-tier conflict in the list.
// Blocked, Critical, and High conflicts are left in place: Blocked is
// overridden, Critical and High were already handled by escalation.
func (p *ReschedulePlanner) PlanAll(
	conflicts []domain.Conflict,
	idx *domain.AvailabilityIndex,
	meeting domain.TimeInterval,
) ([]domain.RescheduleAction, bool) {
	actions := make([]domain.RescheduleAction, 0)
	degraded := false

	for _, c := range conflicts {
		if c.Tier != domain.TierMedium {
			continue
		}
		action, fallback := p.Plan(c, idx, meeting)
		actions = append(actions, action)
		degraded = degraded || fallback
	}
	return actions, degraded
}
