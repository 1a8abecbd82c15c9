// Package services holds the scheduling decision engine: slot selection,
// conflict classification, escalation, reschedule planning, and response
// building. Every service is a stateless value safe for concurrent
// per-request use; target dates are always computed from the request's
// reference timestamp.
package services

import (
	"log/slog"
	"strings"
	"time"

	intentDomain "github.com/felixgeelhaar/convene/internal/intent/domain"
	"github.com/felixgeelhaar/convene/internal/scheduling/domain"
)

// Business window boundaries shared by the engine.
const (
	BusinessOpenHour  = 9
	WindowStartHour   = 8
	WindowEndHour     = 18
	DefaultMiddayHour = 11
)

// canonicalStart maps each weekday to its conventional meeting start time,
// reflecting typical business rhythm. The default convention is Thursday.
type dayTime struct {
	hour   int
	minute int
}

var canonicalStart = map[time.Weekday]dayTime{
	time.Monday:    {9, 0},
	time.Tuesday:   {11, 0},
	time.Wednesday: {10, 0},
	time.Thursday:  {10, 30},
	time.Friday:    {10, 30},
}

// urgentSlots are tried in order for immediate requests: same-day business
// hours first, then next-day morning.
var urgentSlots = []struct {
	dayOffset int
	hour      int
	minute    int
}{
	{0, 9, 0},
	{0, 10, 0},
	{0, 11, 0},
	{0, 14, 0},
	{0, 15, 0},
	{0, 16, 0},
	{1, 9, 0},
	{1, 10, 0},
}

// prepSameDaySlots are early-morning candidates on the main meeting's date.
var prepSameDaySlots = []dayTime{{8, 0}, {7, 30}}

// prepPrevDaySlots are late-afternoon candidates on the previous business day.
var prepPrevDaySlots = []dayTime{{17, 0}, {17, 30}, {16, 30}}

// SlotSelector proposes the primary candidate slot for a meeting request.
// Selection is deterministic and does not negotiate with availability except
// where the policy explicitly checks it; conflicts are resolved downstream.
type SlotSelector struct {
	logger *slog.Logger
}

// NewSlotSelector creates a slot selector.
func NewSlotSelector(logger *slog.Logger) *SlotSelector {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlotSelector{logger: logger}
}

// SelectPrimary picks the primary candidate slot. The interval end is always
// start plus the intent's duration; any end implied by a policy branch is
// discarded.
func (s *SlotSelector) SelectPrimary(
	intent intentDomain.MeetingIntent,
	idx *domain.AvailabilityIndex,
	now time.Time,
) domain.TimeInterval {
	duration := intent.Duration()

	switch {
	case intent.IsPrep():
		return s.selectPrep(intent, idx, now)

	case s.isImmediate(intent):
		return s.selectUrgent(intent, idx, now)

	case domain.RequestsOffHours(intent.Notes()):
		if intent.OffHoursExempt() {
			s.logger.Info("off-hours request honored for exempt meeting",
				"category", intent.Category,
				"relationship", intent.Relationship,
			)
			return domain.IntervalFrom(at(now, 20, 0), duration)
		}
		s.logger.Warn("off-hours request for non-exempt meeting, forcing business hours")
		return domain.IntervalFrom(at(domain.NextBusinessDay(now), BusinessOpenHour, 0), duration)

	default:
		return s.selectByWeekday(intent, now)
	}
}

func (s *SlotSelector) isImmediate(intent intentDomain.MeetingIntent) bool {
	urgent := intent.Urgency == intentDomain.UrgencyCritical || intent.Urgency == intentDomain.UrgencyHigh
	return urgent && domain.HasImmediacySignal(intent.Notes())
}

// selectUrgent scans ordered same-day and next-day slots, returning the
// first one free for every attendee. Nothing free means next-day morning;
// its conflicts are handled by the classifier and planner, not here.
func (s *SlotSelector) selectUrgent(
	intent intentDomain.MeetingIntent,
	idx *domain.AvailabilityIndex,
	now time.Time,
) domain.TimeInterval {
	duration := intent.Duration()
	attendees := idx.Attendees()

	s.logger.Info("immediate scheduling requested", "urgency", intent.Urgency)

	for _, slot := range urgentSlots {
		start := at(now.AddDate(0, 0, slot.dayOffset), slot.hour, slot.minute)
		candidate := domain.IntervalFrom(start, duration)
		if idx.IsFree(candidate, attendees) {
			return candidate
		}
	}

	fallback := at(now.AddDate(0, 0, 1), BusinessOpenHour, 0)
	s.logger.Info("no immediate slot free, falling back to next morning", "start", fallback)
	return domain.IntervalFrom(fallback, duration)
}

// selectPrep places a prep meeting ahead of its main meeting: early morning
// on the main date, then late afternoon the previous business day, then the
// first early-morning candidate regardless of conflicts.
func (s *SlotSelector) selectPrep(
	intent intentDomain.MeetingIntent,
	idx *domain.AvailabilityIndex,
	now time.Time,
) domain.TimeInterval {
	duration := intent.Duration()
	attendees := idx.Attendees()
	mainDate := s.mainMeetingDate(intent, now)

	for _, slot := range prepSameDaySlots {
		candidate := domain.IntervalFrom(at(mainDate, slot.hour, slot.minute), duration)
		if idx.IsFree(candidate, attendees) {
			return candidate
		}
	}

	prevDay := domain.PreviousBusinessDay(mainDate)
	for _, slot := range prepPrevDaySlots {
		candidate := domain.IntervalFrom(at(prevDay, slot.hour, slot.minute), duration)
		if idx.IsFree(candidate, attendees) {
			return candidate
		}
	}

	s.logger.Info("no free prep slot, using early morning on main date")
	return domain.IntervalFrom(at(mainDate, prepSameDaySlots[0].hour, prepSameDaySlots[0].minute), duration)
}

// mainMeetingDate derives the main meeting's date from the day preference.
// Unrecognized preferences resolve to the next Wednesday.
func (s *SlotSelector) mainMeetingDate(intent intentDomain.MeetingIntent, now time.Time) time.Time {
	if wd, ok := domain.ParseWeekday(intent.DayPreference); ok {
		return domain.NextWeekday(now, wd)
	}
	return domain.NextWeekday(now, time.Wednesday)
}

// selectByWeekday maps the day preference onto the canonical per-weekday
// start time. "today" uses the reference date; flexible or unrecognized
// preferences use the Thursday convention.
func (s *SlotSelector) selectByWeekday(intent intentDomain.MeetingIntent, now time.Time) domain.TimeInterval {
	duration := intent.Duration()

	var date time.Time
	if wd, ok := domain.ParseWeekday(intent.DayPreference); ok {
		date = domain.NextWeekday(now, wd)
	} else if containsToday(intent.DayPreference) {
		date = at(now, 0, 0)
	} else {
		date = domain.NextWeekday(now, time.Thursday)
	}

	start, ok := canonicalStart[date.Weekday()]
	if !ok {
		// Weekend landing only happens for explicit saturday/sunday
		// preferences; shift to the following Monday.
		date = domain.NextWeekday(date.AddDate(0, 0, 1), time.Monday)
		start = canonicalStart[time.Monday]
	}

	return domain.IntervalFrom(at(date, start.hour, start.minute), duration)
}

func containsToday(pref string) bool {
	return strings.Contains(strings.ToLower(pref), "today")
}

// at returns the instant at hour:minute on ref's date, in ref's location.
func at(ref time.Time, hour, minute int) time.Time {
	return time.Date(ref.Year(), ref.Month(), ref.Day(), hour, minute, 0, 0, ref.Location())
}
