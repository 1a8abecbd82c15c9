// Package ical retrieves busy events from iCalendar files on disk. Each
// attendee's calendar lives at <dir>/<localpart>.ics. Meant for local
// setups where calendars are exported rather than served.
package ical

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	calendarApp "github.com/felixgeelhaar/convene/internal/calendar/application"
)

// Source reads attendee calendars from a directory of .ics files.
type Source struct {
	dir    string
	logger *slog.Logger
}

// NewSource creates an iCalendar file source over the given directory.
func NewSource(dir string, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{dir: dir, logger: logger}
}

// Events returns the attendee's events within the range. A missing
// calendar file yields an empty list.
func (s *Source) Events(ctx context.Context, attendee string, from, to time.Time) ([]calendarApp.Event, error) {
	path := filepath.Join(s.dir, fileName(attendee))

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Debug("no calendar file for attendee", "attendee", attendee, "path", path)
			return []calendarApp.Event{}, nil
		}
		return nil, fmt.Errorf("failed to open calendar file: %w", err)
	}
	defer f.Close()

	cal, err := ical.NewDecoder(f).Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to parse calendar file %s: %w", path, err)
	}

	return eventsInRange(cal, attendee, from, to), nil
}

func eventsInRange(cal *ical.Calendar, attendee string, from, to time.Time) []calendarApp.Event {
	events := make([]calendarApp.Event, 0)
	for _, child := range cal.Children {
		if child.Name != ical.CompEvent {
			continue
		}

		icalEvent := &ical.Event{Component: child}
		start, err := icalEvent.DateTimeStart(time.UTC)
		if err != nil {
			continue
		}
		end, err := icalEvent.DateTimeEnd(time.UTC)
		if err != nil {
			continue
		}
		if !start.Before(to) || !end.After(from) {
			continue
		}

		var title string
		if props := child.Props[ical.PropSummary]; len(props) > 0 {
			title = props[0].Value
		}

		attendees := []string{attendee}
		for _, prop := range child.Props[ical.PropAttendee] {
			addr := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(prop.Value)), "mailto:")
			if addr != "" && addr != attendee {
				attendees = append(attendees, addr)
			}
		}

		events = append(events, calendarApp.Event{
			Start:     start,
			End:       end,
			Title:     title,
			Attendees: attendees,
		})
	}
	return events
}

// fileName maps an attendee identifier to its calendar file name.
func fileName(attendee string) string {
	name := attendee
	if at := strings.IndexByte(attendee, '@'); at > 0 {
		name = attendee[:at]
	}
	return name + ".ics"
}
