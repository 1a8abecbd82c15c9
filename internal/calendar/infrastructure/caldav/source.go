// Package caldav retrieves busy events from a CalDAV server (Apple
// Calendar, Fastmail, Nextcloud, Radicale, etc.).
package caldav

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"

	calendarApp "github.com/felixgeelhaar/convene/internal/calendar/application"
)

// Common CalDAV server URLs
const (
	AppleCalDAVURL    = "https://caldav.icloud.com"
	FastmailCalDAVURL = "https://caldav.fastmail.com"
)

// Source queries a CalDAV server for attendee busy events.
type Source struct {
	baseURL  string
	username string
	password string // App-specific password for Apple

	// calendarPaths maps an attendee to their calendar collection path.
	// Attendees without an entry fall back to the account's first
	// discovered calendar.
	calendarPaths map[string]string

	logger *slog.Logger
}

// NewSource creates a CalDAV busy-event source.
func NewSource(baseURL, username, password string, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{
		baseURL:       baseURL,
		username:      username,
		password:      password,
		calendarPaths: make(map[string]string),
		logger:        logger,
	}
}

// WithCalendarPath pins an attendee to a specific calendar collection path.
func (s *Source) WithCalendarPath(attendee, path string) *Source {
	s.calendarPaths[attendee] = path
	return s
}

// Events returns the attendee's events within the given range.
func (s *Source) Events(ctx context.Context, attendee string, from, to time.Time) ([]calendarApp.Event, error) {
	client, err := s.getClient()
	if err != nil {
		return nil, err
	}

	calPath, err := s.findCalendarPath(ctx, client, attendee)
	if err != nil {
		return nil, fmt.Errorf("failed to find calendar: %w", err)
	}

	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name:  "VCALENDAR",
			Props: []string{"VERSION"},
			Comps: []caldav.CalendarCompRequest{
				{
					Name:  "VEVENT",
					Props: []string{"SUMMARY", "DTSTART", "DTEND", "UID", "ATTENDEE"},
				},
			},
		},
		CompFilter: caldav.CompFilter{
			Name: "VCALENDAR",
			Comps: []caldav.CompFilter{
				{
					Name:  "VEVENT",
					Start: from,
					End:   to,
				},
			},
		},
	}

	objects, err := client.QueryCalendar(ctx, calPath, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query calendar: %w", err)
	}

	events := make([]calendarApp.Event, 0, len(objects))
	for _, obj := range objects {
		for _, ev := range parseCalendarObject(&obj, attendee) {
			events = append(events, ev)
		}
	}

	return events, nil
}

func (s *Source) getClient() (*caldav.Client, error) {
	httpClient := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &basicAuthTransport{
			username: s.username,
			password: s.password,
			base:     http.DefaultTransport,
		},
	}

	client, err := caldav.NewClient(webdav.HTTPClientWithBasicAuth(httpClient, s.username, s.password), s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create caldav client: %w", err)
	}
	return client, nil
}

func (s *Source) findCalendarPath(ctx context.Context, client *caldav.Client, attendee string) (string, error) {
	if path, ok := s.calendarPaths[attendee]; ok {
		return path, nil
	}

	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to find principal: %w", err)
	}

	homeSet, err := client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return "", fmt.Errorf("failed to find calendar home set: %w", err)
	}

	cals, err := client.FindCalendars(ctx, homeSet)
	if err != nil {
		return "", fmt.Errorf("failed to find calendars: %w", err)
	}

	if len(cals) == 0 {
		return "", fmt.Errorf("no calendars found")
	}

	// Use first calendar as default
	return cals[0].Path, nil
}

func parseCalendarObject(obj *caldav.CalendarObject, attendee string) []calendarApp.Event {
	if obj == nil || obj.Data == nil {
		return nil
	}

	events := make([]calendarApp.Event, 0, 1)
	for _, child := range obj.Data.Children {
		if child.Name != ical.CompEvent {
			continue
		}

		var event calendarApp.Event
		if props := child.Props[ical.PropSummary]; len(props) > 0 {
			event.Title = props[0].Value
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
		event.Start = start
		event.End = end

		event.Attendees = append(event.Attendees, attendee)
		for _, prop := range child.Props[ical.PropAttendee] {
			if addr := mailtoAddress(prop.Value); addr != "" && addr != attendee {
				event.Attendees = append(event.Attendees, addr)
			}
		}

		events = append(events, event)
	}

	return events
}

// mailtoAddress strips the mailto: scheme from an ATTENDEE value.
func mailtoAddress(value string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(value)), "mailto:")
}

type basicAuthTransport struct {
	username string
	password string
	base     http.RoundTripper
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.SetBasicAuth(t.username, t.password)
	return t.base.RoundTrip(req)
}
