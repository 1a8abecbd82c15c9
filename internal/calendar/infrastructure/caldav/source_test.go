package caldav

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav/caldav"
)

func TestNewSource(t *testing.T) {
	src := NewSource("https://caldav.example.com", "user", "pass", nil)

	if src == nil {
		t.Fatal("expected non-nil source")
	}
	if src.baseURL != "https://caldav.example.com" {
		t.Errorf("expected baseURL 'https://caldav.example.com', got %s", src.baseURL)
	}
	if src.username != "user" {
		t.Errorf("expected username 'user', got %s", src.username)
	}
	if src.password != "pass" {
		t.Errorf("expected password 'pass', got %s", src.password)
	}
	if len(src.calendarPaths) != 0 {
		t.Errorf("expected no calendar paths, got %d", len(src.calendarPaths))
	}
}

func TestSource_WithCalendarPath(t *testing.T) {
	src := NewSource("https://caldav.example.com", "user", "pass", nil)

	result := src.WithCalendarPath("alice", "/calendars/alice/work/")

	if result != src {
		t.Error("expected same source instance returned for chaining")
	}
	if src.calendarPaths["alice"] != "/calendars/alice/work/" {
		t.Errorf("expected calendar path '/calendars/alice/work/', got %s", src.calendarPaths["alice"])
	}
}

func TestParseCalendarObject(t *testing.T) {
	startTime := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	endTime := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, "event-1")
	event.Props.SetText(ical.PropSummary, "Client Review")
	event.Props.SetDateTime(ical.PropDateTimeStart, startTime)
	event.Props.SetDateTime(ical.PropDateTimeEnd, endTime)

	attendeeProp := ical.NewProp(ical.PropAttendee)
	attendeeProp.Value = "mailto:bob@example.com"
	event.Props[ical.PropAttendee] = []ical.Prop{*attendeeProp}

	cal := ical.NewCalendar()
	cal.Children = append(cal.Children, event.Component)

	obj := &caldav.CalendarObject{
		Path: "/calendars/alice/work/event-1.ics",
		Data: cal,
	}

	events := parseCalendarObject(obj, "alice@example.com")

	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Title != "Client Review" {
		t.Errorf("expected Title 'Client Review', got %s", events[0].Title)
	}
	if !events[0].Start.Equal(startTime) {
		t.Errorf("expected Start %v, got %v", startTime, events[0].Start)
	}
	if !events[0].End.Equal(endTime) {
		t.Errorf("expected End %v, got %v", endTime, events[0].End)
	}
	if len(events[0].Attendees) != 2 {
		t.Fatalf("expected 2 attendees, got %d", len(events[0].Attendees))
	}
	if events[0].Attendees[0] != "alice@example.com" {
		t.Errorf("expected owner first, got %s", events[0].Attendees[0])
	}
	if events[0].Attendees[1] != "bob@example.com" {
		t.Errorf("expected mailto stripped, got %s", events[0].Attendees[1])
	}
}

func TestParseCalendarObject_NilObject(t *testing.T) {
	if events := parseCalendarObject(nil, "alice"); events != nil {
		t.Error("expected nil result for nil input")
	}
}

func TestParseCalendarObject_NilData(t *testing.T) {
	obj := &caldav.CalendarObject{Data: nil}
	if events := parseCalendarObject(obj, "alice"); events != nil {
		t.Error("expected nil result for nil data")
	}
}

func TestParseCalendarObject_SkipsEventsWithoutTimes(t *testing.T) {
	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, "no-times")
	event.Props.SetText(ical.PropSummary, "Floating")

	cal := ical.NewCalendar()
	cal.Children = append(cal.Children, event.Component)

	obj := &caldav.CalendarObject{Data: cal}

	events := parseCalendarObject(obj, "alice")
	if len(events) != 0 {
		t.Errorf("expected 0 events, got %d", len(events))
	}
}

func TestMailtoAddress(t *testing.T) {
	cases := map[string]string{
		"mailto:bob@example.com":  "bob@example.com",
		"MAILTO:Bob@Example.com":  "bob@example.com",
		" carol@example.com ":     "carol@example.com",
		"":                        "",
	}
	for input, want := range cases {
		if got := mailtoAddress(input); got != want {
			t.Errorf("mailtoAddress(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestBasicAuthTransport_RoundTrip(t *testing.T) {
	transport := &basicAuthTransport{
		username: "testuser",
		password: "testpass",
		base:     &mockRoundTripper{},
	}

	req, _ := http.NewRequest(http.MethodGet, "https://caldav.example.com", nil)

	if req.Header.Get("Authorization") != "" {
		t.Error("expected no Authorization header before RoundTrip")
	}

	_, _ = transport.RoundTrip(req)

	authHeader := req.Header.Get("Authorization")
	if authHeader == "" {
		t.Error("expected Authorization header after RoundTrip")
	}
	if !strings.HasPrefix(authHeader, "Basic ") {
		t.Error("expected Basic auth header")
	}
}

// mockRoundTripper for testing basicAuthTransport
type mockRoundTripper struct{}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return &http.Response{StatusCode: 200}, nil
}

func TestConstants(t *testing.T) {
	if AppleCalDAVURL != "https://caldav.icloud.com" {
		t.Errorf("unexpected AppleCalDAVURL: %s", AppleCalDAVURL)
	}
	if FastmailCalDAVURL != "https://caldav.fastmail.com" {
		t.Errorf("unexpected FastmailCalDAVURL: %s", FastmailCalDAVURL)
	}
}
