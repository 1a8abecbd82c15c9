package domain

import (
	"strconv"
	"strings"
	"time"
)

// Urgency tiers a request's time pressure.
type Urgency string

const (
	UrgencyCritical Urgency = "critical"
	UrgencyHigh     Urgency = "high"
	UrgencyMedium   Urgency = "medium"
	UrgencyLow      Urgency = "low"
)

// Category names the kind of meeting being requested.
type Category string

const (
	CategoryPrep     Category = "prep"
	CategoryWorkshop Category = "workshop"
	CategoryClient   Category = "client"
	CategoryPlanning Category = "planning"
	CategoryStatus   Category = "status"
	CategoryReview   Category = "review"
	CategoryUrgent   Category = "urgent"
	CategoryInternal Category = "internal"
)

// Relationship ties the meeting to the rest of the calendar.
type Relationship string

const (
	RelationshipPrepMeeting  Relationship = "prep_meeting"
	RelationshipWorkshop     Relationship = "workshop"
	RelationshipClientFacing Relationship = "client_facing"
	RelationshipInternal     Relationship = "internal"
)

// Source records which extractor produced the intent.
type Source string

const (
	SourceModel   Source = "model"
	SourceKeyword Source = "keyword"
)

// Defaults applied when extraction yields nothing usable.
const (
	DefaultDurationMinutes = 30
	DefaultDayPreference   = "flexible"
)

// MeetingIntent is the structured reading of a free-text meeting request.
// It is produced once per request and read-only afterwards.
type MeetingIntent struct {
	DurationMinutes int
	DayPreference   string // weekday name, "today", or "flexible"
	Urgency         Urgency
	Category        Category
	Relationship    Relationship
	Context         string // why the meeting matters, per the request text
	Constraints     string // explicit timing requirements from the request
	Participants    []string
	Source          Source
}

// Default returns an intent with every field at its defined default.
func Default() MeetingIntent {
	return MeetingIntent{
		DurationMinutes: DefaultDurationMinutes,
		DayPreference:   DefaultDayPreference,
		Urgency:         UrgencyMedium,
		Category:        CategoryPlanning,
		Relationship:    RelationshipInternal,
	}
}

// Duration returns the requested meeting length.
func (m MeetingIntent) Duration() time.Duration {
	return time.Duration(m.DurationMinutes) * time.Minute
}

// OffHoursExempt reports whether the meeting class may use time outside the
// business window.
func (m MeetingIntent) OffHoursExempt() bool {
	return m.Category == CategoryWorkshop || m.Relationship == RelationshipWorkshop
}

// IsPrep reports whether this request is preparation for another meeting.
func (m MeetingIntent) IsPrep() bool {
	return m.Relationship == RelationshipPrepMeeting || m.Category == CategoryPrep
}

// Notes joins the free-text scheduling fields for signal scanning.
func (m MeetingIntent) Notes() string {
	return strings.TrimSpace(m.Context + " " + m.Constraints)
}

// ParseUrgency coerces arbitrary extractor output to a known urgency.
func ParseUrgency(s string) Urgency {
	switch Urgency(strings.ToLower(strings.TrimSpace(s))) {
	case UrgencyCritical:
		return UrgencyCritical
	case UrgencyHigh:
		return UrgencyHigh
	case UrgencyLow:
		return UrgencyLow
	default:
		return UrgencyMedium
	}
}

// ParseCategory coerces arbitrary extractor output to a known category.
func ParseCategory(s string) Category {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryPrep:
		return CategoryPrep
	case CategoryWorkshop:
		return CategoryWorkshop
	case CategoryClient:
		return CategoryClient
	case CategoryStatus:
		return CategoryStatus
	case CategoryReview:
		return CategoryReview
	case CategoryUrgent:
		return CategoryUrgent
	case CategoryInternal:
		return CategoryInternal
	default:
		return CategoryPlanning
	}
}

// ParseRelationship coerces arbitrary extractor output to a known
// relationship tag.
func ParseRelationship(s string) Relationship {
	switch Relationship(strings.ToLower(strings.TrimSpace(s))) {
	case RelationshipPrepMeeting:
		return RelationshipPrepMeeting
	case RelationshipWorkshop:
		return RelationshipWorkshop
	case RelationshipClientFacing:
		return RelationshipClientFacing
	default:
		return RelationshipInternal
	}
}

// CoerceDuration normalizes the duration formats models produce: plain
// minutes ("45"), clock-style strings ("00:30" or "0:30:00"), or nothing.
// Anything unusable collapses to the default.
func CoerceDuration(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultDurationMinutes
	}
	if strings.Contains(raw, ":") {
		parts := strings.Split(raw, ":")
		if len(parts) >= 2 {
			hours, errH := strconv.Atoi(parts[0])
			minutes, errM := strconv.Atoi(parts[1])
			if errH == nil && errM == nil {
				total := hours*60 + minutes
				if total > 0 {
					return total
				}
			}
		}
		return DefaultDurationMinutes
	}
	if n, err := strconv.Atoi(raw); err == nil && n > 0 {
		return n
	}
	return DefaultDurationMinutes
}

// CoerceDayPreference normalizes a day constraint. Compound values (a model
// returning a structured object where a weekday was expected) collapse to
// the flexible default before this is called; here anything that is not a
// recognizable scalar becomes flexible.
func CoerceDayPreference(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" || strings.ContainsAny(raw, "{}[]") {
		return DefaultDayPreference
	}
	return raw
}

// SplitParticipants parses a comma-separated participant list.
func SplitParticipants(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
