package domain

import (
	"strings"
	"time"
)

// The keyword rules below are the single classification table shared by every
// component. Rules are evaluated in order; the first match wins.

type titleRule struct {
	keywords []string
	tier     Tier
	exact    bool
}

var titleRules = []titleRule{
	{keywords: []string{"client", "customer", "external", "presentation", "demo"}, tier: TierHigh},
	{keywords: []string{"workshop", "training", "all-day"}, tier: TierCritical},
	{keywords: []string{"off hours"}, tier: TierBlocked, exact: true},
	{keywords: []string{"ceo", "board", "urgent", "critical", "deadline"}, tier: TierCritical},
	{keywords: []string{"prep", "preparation"}, tier: TierHigh},
	{keywords: []string{"lunch", "focus time", "placeholder", "hold"}, tier: TierLow},
}

// ClassifyTitle maps an event title to a conflict tier. Untyped events are
// ordinary internal meetings.
func ClassifyTitle(title string) Tier {
	lowered := strings.ToLower(strings.TrimSpace(title))
	for _, rule := range titleRules {
		for _, kw := range rule.keywords {
			if rule.exact {
				if lowered == kw {
					return rule.tier
				}
				continue
			}
			if strings.Contains(lowered, kw) {
				return rule.tier
			}
		}
	}
	return TierMedium
}

var immediacySignals = []string{
	"asap", "emergency", "immediate", "critical", "urgent", "ceo", "customer concerns",
}

// HasImmediacySignal reports whether free text asks for same-day handling.
func HasImmediacySignal(text string) bool {
	return containsAny(text, immediacySignals)
}

var offHoursSignals = []string{
	"8 pm", "20:00", "evening", "night",
}

// RequestsOffHours reports whether free text asks for a time outside the
// business window.
func RequestsOffHours(text string) bool {
	return containsAny(text, offHoursSignals)
}

func containsAny(text string, signals []string) bool {
	lowered := strings.ToLower(text)
	for _, s := range signals {
		if strings.Contains(lowered, s) {
			return true
		}
	}
	return false
}

var weekdayNames = []struct {
	name string
	day  time.Weekday
}{
	{"monday", time.Monday},
	{"tuesday", time.Tuesday},
	{"wednesday", time.Wednesday},
	{"thursday", time.Thursday},
	{"friday", time.Friday},
	{"saturday", time.Saturday},
	{"sunday", time.Sunday},
}

// ParseWeekday extracts a weekday from a day preference string. The match is
// substring-based so "next thursday" and "thursday morning" both resolve.
// Names are checked in week order, so the earliest weekday named wins.
func ParseWeekday(pref string) (time.Weekday, bool) {
	lowered := strings.ToLower(pref)
	for _, entry := range weekdayNames {
		if strings.Contains(lowered, entry.name) {
			return entry.day, true
		}
	}
	return time.Sunday, false
}

// NextWeekday resolves the next occurrence of the target weekday on or after
// the reference instant, at midnight in the reference location. Target dates
// are always computed relative to the request's reference timestamp.
func NextWeekday(ref time.Time, target time.Weekday) time.Time {
	date := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())
	offset := (int(target) - int(date.Weekday()) + 7) % 7
	return date.AddDate(0, 0, offset)
}

// NextBusinessDay returns the next weekday date after ref, skipping weekends.
func NextBusinessDay(ref time.Time) time.Time {
	date := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())
	date = date.AddDate(0, 0, 1)
	for date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
		date = date.AddDate(0, 0, 1)
	}
	return date
}

// PreviousBusinessDay returns the closest weekday date before ref.
func PreviousBusinessDay(ref time.Time) time.Time {
	date := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())
	date = date.AddDate(0, 0, -1)
	for date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
		date = date.AddDate(0, 0, -1)
	}
	return date
}
