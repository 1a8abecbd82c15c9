// Package keyword provides a deterministic intent extractor used when the
// model-backed extractor is unavailable. It never fails; every field falls
// back to a defined default.
package keyword

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/convene/internal/intent/domain"
)

var (
	minutesPattern = regexp.MustCompile(`(\d+)\s*min`)
	hoursPattern   = regexp.MustCompile(`(\d+)\s*hour`)
	emailPattern   = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
)

// Extractor scans request text for scheduling keywords.
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor creates a keyword extractor.
func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// Extract derives a lower-confidence intent from keywords alone.
func (e *Extractor) Extract(ctx context.Context, body, subject string) (domain.MeetingIntent, error) {
	text := strings.ToLower(body + " " + subject)

	intent := domain.Default()
	intent.Source = domain.SourceKeyword
	intent.DurationMinutes = extractDuration(text)
	intent.DayPreference = extractDayPreference(text)
	intent.Urgency = extractUrgency(text)
	intent.Category = extractCategory(text)
	intent.Relationship = extractRelationship(text)
	intent.Participants = emailPattern.FindAllString(body, -1)

	// Carry the raw text so downstream signal scans (immediacy, off-hours)
	// still see what the request actually said.
	intent.Constraints = strings.TrimSpace(text)

	e.logger.Debug("keyword extraction complete",
		"duration_minutes", intent.DurationMinutes,
		"day_preference", intent.DayPreference,
		"urgency", intent.Urgency,
	)

	return intent, nil
}

func extractDuration(text string) int {
	switch {
	case strings.Contains(text, "half hour") || strings.Contains(text, "30 min"):
		return 30
	case strings.Contains(text, "quarter hour") || strings.Contains(text, "15 min"):
		return 15
	}
	if m := minutesPattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n
		}
	}
	if m := hoursPattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n * 60
		}
	}
	if strings.Contains(text, "hour") {
		return 60
	}
	return domain.DefaultDurationMinutes
}

func extractDayPreference(text string) string {
	for _, day := range []string{"monday", "tuesday", "wednesday", "thursday", "friday"} {
		if strings.Contains(text, day) {
			return day
		}
	}
	if strings.Contains(text, "today") {
		return "today"
	}
	return domain.DefaultDayPreference
}

func extractUrgency(text string) domain.Urgency {
	switch {
	case strings.Contains(text, "emergency") || strings.Contains(text, "critical"):
		return domain.UrgencyCritical
	case strings.Contains(text, "urgent") || strings.Contains(text, "asap") || strings.Contains(text, "immediately"):
		return domain.UrgencyHigh
	case strings.Contains(text, "when possible") || strings.Contains(text, "flexible") || strings.Contains(text, "no rush"):
		return domain.UrgencyLow
	default:
		return domain.UrgencyMedium
	}
}

func extractCategory(text string) domain.Category {
	switch {
	case strings.Contains(text, "prep"):
		return domain.CategoryPrep
	case strings.Contains(text, "workshop") || strings.Contains(text, "training"):
		return domain.CategoryWorkshop
	case strings.Contains(text, "client") || strings.Contains(text, "customer") || strings.Contains(text, "demo"):
		return domain.CategoryClient
	case strings.Contains(text, "status") || strings.Contains(text, "update") || strings.Contains(text, "standup"):
		return domain.CategoryStatus
	case strings.Contains(text, "review") || strings.Contains(text, "feedback"):
		return domain.CategoryReview
	case strings.Contains(text, "urgent") || strings.Contains(text, "critical"):
		return domain.CategoryUrgent
	default:
		return domain.CategoryPlanning
	}
}

func extractRelationship(text string) domain.Relationship {
	switch {
	case strings.Contains(text, "prep") || strings.Contains(text, "before the") || strings.Contains(text, "prior to"):
		return domain.RelationshipPrepMeeting
	case strings.Contains(text, "workshop") || strings.Contains(text, "training"):
		return domain.RelationshipWorkshop
	case strings.Contains(text, "client") || strings.Contains(text, "customer") || strings.Contains(text, "external"):
		return domain.RelationshipClientFacing
	default:
		return domain.RelationshipInternal
	}
}
