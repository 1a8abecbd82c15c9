package ical

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/emersion/go-ical"
)

func writeCalendar(t *testing.T, dir, name string, events ...*ical.Event) {
	t.Helper()

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//Convene//Test//EN")
	for _, ev := range events {
		cal.Children = append(cal.Children, ev.Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		t.Fatalf("encode calendar: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write calendar: %v", err)
	}
}

func icsEvent(uid, summary string, start, end time.Time) *ical.Event {
	ev := ical.NewEvent()
	ev.Props.SetText(ical.PropUID, uid)
	ev.Props.SetText(ical.PropSummary, summary)
	ev.Props.SetDateTime(ical.PropDateTimeStamp, start)
	ev.Props.SetDateTime(ical.PropDateTimeStart, start)
	ev.Props.SetDateTime(ical.PropDateTimeEnd, end)
	return ev
}

func TestSourceEvents(t *testing.T) {
	dir := t.TempDir()

	inRange := icsEvent("1", "Design Review",
		time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))
	outOfRange := icsEvent("2", "Next Month",
		time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC))
	writeCalendar(t, dir, "alice.ics", inRange, outOfRange)

	src := NewSource(dir, nil)

	events, err := src.Events(context.Background(), "alice@example.com",
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Title != "Design Review" {
		t.Errorf("expected 'Design Review', got %s", events[0].Title)
	}
	if len(events[0].Attendees) != 1 || events[0].Attendees[0] != "alice@example.com" {
		t.Errorf("expected owner-only attendees, got %v", events[0].Attendees)
	}
}

func TestSourceEvents_MissingFile(t *testing.T) {
	src := NewSource(t.TempDir(), nil)

	events, err := src.Events(context.Background(), "nobody@example.com",
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected empty calendar, got %d events", len(events))
	}
}

func TestSourceEvents_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "alice.ics"), []byte("not a calendar"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	src := NewSource(dir, nil)

	_, err := src.Events(context.Background(), "alice@example.com",
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestFileName(t *testing.T) {
	cases := map[string]string{
		"alice@example.com": "alice.ics",
		"bob":               "bob.ics",
	}
	for input, want := range cases {
		if got := fileName(input); got != want {
			t.Errorf("fileName(%q) = %q, want %q", input, got, want)
		}
	}
}
