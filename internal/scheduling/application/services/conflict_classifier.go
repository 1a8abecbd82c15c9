package services

import (
	"log/slog"

	"github.com/felixgeelhaar/convene/internal/scheduling/domain"
)

// ConflictClassifier finds every busy event overlapping a candidate slot and
// assigns it a priority tier from the shared title rule table.
type ConflictClassifier struct {
	logger *slog.Logger
}

// NewConflictClassifier creates a conflict classifier.
func NewConflictClassifier(logger *slog.Logger) *ConflictClassifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConflictClassifier{logger: logger}
}

// Classify returns one Conflict per distinct overlapping event per attendee.
// Duplicate calendar entries (same attendee, title, and interval) yield a
// single record. Low-tier placeholders are ignored entirely; Blocked
// conflicts are recorded but never trigger rescheduling.
func (c *ConflictClassifier) Classify(
	slot domain.TimeInterval,
	idx *domain.AvailabilityIndex,
	attendees []string,
) []domain.Conflict {
	conflicts := make([]domain.Conflict, 0)
	seen := make(map[string]struct{})

	for _, attendee := range attendees {
		for _, ev := range idx.Events(attendee) {
			if !ev.Interval.Overlaps(slot) {
				continue
			}

			key := attendee + "|" + ev.Key()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}

			tier := domain.ClassifyTitle(ev.Title)
			if tier == domain.TierLow {
				continue
			}

			conflicts = append(conflicts, domain.Conflict{
				Attendee: attendee,
				Event:    ev,
				Tier:     tier,
			})
		}
	}

	if len(conflicts) > 0 {
		c.logger.Info("conflicts detected for candidate slot",
			"slot_start", slot.Start,
			"count", len(conflicts),
		)
	}
	return conflicts
}
