package domain

import "time"

// BroadcastAttendee marks a reschedule action that applies to every
// attendee's view: the newly proposed meeting itself was moved, not a
// single person's event. Applying it uniformly keeps per-person timelines
// consistent.
const BroadcastAttendee = "ALL"

// RescheduleAction relocates a displaced event, identified by title and
// original interval, to a new interval.
type RescheduleAction struct {
	Attendee string
	Title    string
	Original TimeInterval
	New      TimeInterval
}

// Broadcast reports whether the action applies to every attendee.
func (a RescheduleAction) Broadcast() bool {
	return a.Attendee == BroadcastAttendee
}

// Matches reports whether the action addresses the given attendee's event.
func (a RescheduleAction) Matches(attendee string, ev BusyEvent) bool {
	if a.Attendee != attendee && !a.Broadcast() {
		return false
	}
	return a.Title == ev.Title && a.Original.Equal(ev.Interval)
}

// AttendeeSchedule is one attendee's final timeline: their original events
// with displaced ones relocated, plus the new meeting.
type AttendeeSchedule struct {
	Attendee string
	Events   []BusyEvent
}

// Rationale carries the context that drove the decision.
type Rationale struct {
	Urgency         string
	Category        string
	Relationship    string
	DayPreference   string
	OffHoursAllowed bool
	Degraded        bool
	Error           string
}

// Decision is the engine's answer to one meeting request. It is always
// structurally complete: even failure paths produce a usable decision.
type Decision struct {
	RequestID       string
	Slot            TimeInterval
	DurationMinutes int
	Conflicts       []Conflict
	Actions         []RescheduleAction
	Schedules       []AttendeeSchedule
	Rationale       Rationale
	ProcessingTime  time.Duration
}
