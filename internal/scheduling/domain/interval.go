package domain

import (
	"errors"
	"time"
)

var ErrInvalidInterval = errors.New("interval end must be after start")

// TimeInterval is a half-open time range [Start, End). All instants carry the
// single fixed offset configured for the deployment; no cross-zone
// normalization happens here.
type TimeInterval struct {
	Start time.Time
	End   time.Time
}

// NewTimeInterval creates an interval, rejecting empty and inverted ranges.
func NewTimeInterval(start, end time.Time) (TimeInterval, error) {
	if !end.After(start) {
		return TimeInterval{}, ErrInvalidInterval
	}
	return TimeInterval{Start: start, End: end}, nil
}

// IntervalFrom builds an interval from a start time and a duration.
func IntervalFrom(start time.Time, d time.Duration) TimeInterval {
	return TimeInterval{Start: start, End: start.Add(d)}
}

// Overlaps reports whether two half-open intervals intersect.
func (i TimeInterval) Overlaps(other TimeInterval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Duration returns the interval length.
func (i TimeInterval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Contains reports whether t falls within the interval.
func (i TimeInterval) Contains(t time.Time) bool {
	return !t.Before(i.Start) && t.Before(i.End)
}

// SameDate reports whether the interval starts on the given calendar date.
func (i TimeInterval) SameDate(date time.Time) bool {
	y1, m1, d1 := i.Start.Date()
	y2, m2, d2 := date.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// Equal reports whether two intervals cover the same instant range.
func (i TimeInterval) Equal(other TimeInterval) bool {
	return i.Start.Equal(other.Start) && i.End.Equal(other.End)
}

// BusyEvent is a committed span on an attendee's calendar. Events are values:
// once classified they are never mutated, a relocated event is a replacement.
type BusyEvent struct {
	Interval  TimeInterval
	Title     string
	Attendees []string
	IsNew     bool
}

// RelocatedTo returns a copy of the event moved to a new interval.
func (e BusyEvent) RelocatedTo(to TimeInterval) BusyEvent {
	moved := e
	moved.Interval = to
	return moved
}

// Key identifies an event for deduplication and action matching:
// same title and same original interval means same event.
func (e BusyEvent) Key() string {
	return e.Title + "|" + e.Interval.Start.Format(time.RFC3339) + "|" + e.Interval.End.Format(time.RFC3339)
}
