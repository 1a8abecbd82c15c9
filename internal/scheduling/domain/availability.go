package domain

import (
	"sort"
	"time"
)

// AvailabilityIndex holds every attendee's busy events for the search window,
// sorted by start time per attendee. It is built once per request and queried
// read-only afterwards.
type AvailabilityIndex struct {
	events map[string][]BusyEvent
}

// NewAvailabilityIndex builds an index from per-attendee event lists.
// Input slices are copied and sorted; the caller's data is not retained.
func NewAvailabilityIndex(calendars map[string][]BusyEvent) *AvailabilityIndex {
	idx := &AvailabilityIndex{events: make(map[string][]BusyEvent, len(calendars))}
	for attendee, events := range calendars {
		sorted := make([]BusyEvent, len(events))
		copy(sorted, events)
		sort.Slice(sorted, func(i, j int) bool {
			return sorted[i].Interval.Start.Before(sorted[j].Interval.Start)
		})
		idx.events[attendee] = sorted
	}
	return idx
}

// Attendees returns every attendee identity present in the index.
func (idx *AvailabilityIndex) Attendees() []string {
	out := make([]string, 0, len(idx.events))
	for attendee := range idx.events {
		out = append(out, attendee)
	}
	sort.Strings(out)
	return out
}

// Events returns the sorted busy events for one attendee. Unknown attendees
// yield an empty list, matching the calendar boundary contract.
func (idx *AvailabilityIndex) Events(attendee string) []BusyEvent {
	return idx.events[attendee]
}

// IsFree reports whether the slot is clear for every listed attendee.
// A single overlapping busy event anywhere makes the slot not free.
func (idx *AvailabilityIndex) IsFree(slot TimeInterval, attendees []string) bool {
	for _, attendee := range attendees {
		for _, ev := range idx.events[attendee] {
			if ev.Interval.Overlaps(slot) {
				return false
			}
		}
	}
	return true
}

// FindGap returns the earliest run of at least duration free time for one
// attendee on the given date, inside the business window and clear of the
// avoid intervals. First-fit: the scan returns as soon as a gap is wide
// enough, no attempt is made to find a best fit.
func (idx *AvailabilityIndex) FindGap(
	attendee string,
	date time.Time,
	duration time.Duration,
	avoid []TimeInterval,
	window TimeInterval,
) (TimeInterval, bool) {
	occupied := make([]TimeInterval, 0, len(idx.events[attendee])+len(avoid))
	for _, ev := range idx.events[attendee] {
		if ev.Interval.SameDate(date) {
			occupied = append(occupied, ev.Interval)
		}
	}
	occupied = append(occupied, avoid...)
	sort.Slice(occupied, func(i, j int) bool {
		return occupied[i].Start.Before(occupied[j].Start)
	})

	cursor := window.Start
	for _, iv := range occupied {
		if cursor.Before(iv.Start) && iv.Start.Sub(cursor) >= duration {
			return IntervalFrom(cursor, duration), true
		}
		if iv.End.After(cursor) {
			cursor = iv.End
		}
	}
	if window.End.Sub(cursor) >= duration {
		return IntervalFrom(cursor, duration), true
	}
	return TimeInterval{}, false
}
