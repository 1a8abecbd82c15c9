package app

import (
	"time"

	"github.com/felixgeelhaar/convene/internal/scheduling/domain"
)

// TimelineEntry is one committed span in an attendee's final schedule.
type TimelineEntry struct {
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	AttendeeCount int       `json:"attendeeCount"`
	Attendees     []string  `json:"attendees,omitempty"`
	Title         string    `json:"title"`
}

// AttendeeTimeline is one attendee's schedule after the decision is applied.
type AttendeeTimeline struct {
	Attendee string          `json:"attendee"`
	Events   []TimelineEntry `json:"events"`
}

// Metadata reports the reasoning context behind a decision.
type Metadata struct {
	Urgency         string `json:"urgency"`
	Category        string `json:"category"`
	Relationship    string `json:"relationship"`
	DayPreference   string `json:"dayPreference"`
	OffHoursAllowed bool   `json:"offHoursAllowed"`
	Degraded        bool   `json:"degraded"`
	Error           string `json:"error,omitempty"`
	ProcessingMs    int64  `json:"processingMs"`
}

// SlotResponse is the chosen interval for the new meeting.
type SlotResponse struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Response is the wire shape of a decision.
type Response struct {
	RequestID       string             `json:"requestId"`
	Slot            SlotResponse       `json:"slot"`
	DurationMinutes int                `json:"durationMinutes"`
	ConflictCount   int                `json:"conflictCount"`
	ActionCount     int                `json:"actionCount"`
	Timelines       []AttendeeTimeline `json:"timelines"`
	Metadata        Metadata           `json:"metadata"`
}

// NewResponse converts a decision to its wire shape.
func NewResponse(d domain.Decision) Response {
	timelines := make([]AttendeeTimeline, 0, len(d.Schedules))
	for _, sched := range d.Schedules {
		events := make([]TimelineEntry, 0, len(sched.Events))
		for _, ev := range sched.Events {
			events = append(events, TimelineEntry{
				Start:         ev.Interval.Start,
				End:           ev.Interval.End,
				AttendeeCount: attendeeCount(ev),
				Attendees:     ev.Attendees,
				Title:         ev.Title,
			})
		}
		timelines = append(timelines, AttendeeTimeline{
			Attendee: sched.Attendee,
			Events:   events,
		})
	}

	return Response{
		RequestID:       d.RequestID,
		Slot:            SlotResponse{Start: d.Slot.Start, End: d.Slot.End},
		DurationMinutes: d.DurationMinutes,
		ConflictCount:   len(d.Conflicts),
		ActionCount:     len(d.Actions),
		Timelines:       timelines,
		Metadata: Metadata{
			Urgency:         d.Rationale.Urgency,
			Category:        d.Rationale.Category,
			Relationship:    d.Rationale.Relationship,
			DayPreference:   d.Rationale.DayPreference,
			OffHoursAllowed: d.Rationale.OffHoursAllowed,
			Degraded:        d.Rationale.Degraded,
			Error:           d.Rationale.Error,
			ProcessingMs:    d.ProcessingTime.Milliseconds(),
		},
	}
}

// attendeeCount defaults to one: an event without an attendee list still
// occupies its owner.
func attendeeCount(ev domain.BusyEvent) int {
	if len(ev.Attendees) == 0 {
		return 1
	}
	return len(ev.Attendees)
}
