package services

import (
	"log/slog"
	"strings"
	"time"

	intentDomain "github.com/felixgeelhaar/convene/internal/intent/domain"
	"github.com/felixgeelhaar/convene/internal/scheduling/domain"
)

// businessHourTimes are the in-window alternative start times, in scan order.
var businessHourTimes = []dayTime{
	{9, 0}, {11, 0}, {12, 0}, {14, 0}, {15, 0}, {16, 0}, {17, 0},
}

// extendedHourTimes apply only when the meeting class grants an off-hours
// exemption. Appended after the business-hour candidates.
var extendedHourTimes = []dayTime{
	{8, 0}, {18, 0}, {19, 0},
}

// bigEventSignals extend the off-hours exemption to meetings whose context
// mentions a workshop-scale event without carrying the category.
var bigEventSignals = []string{"workshop", "training", "all-day", "conference"}

// Resolution is the terminal state of the escalation policy: a chosen slot,
// the conflict list at that slot, and a broadcast action when the new
// meeting itself was moved.
type Resolution struct {
	Slot      domain.TimeInterval
	Conflicts []domain.Conflict
	Moved     *domain.RescheduleAction
	Degraded  bool
}

// Escalator decides whether Critical or High conflicts at the initial slot
// justify moving the new meeting to an alternative time.
type Escalator struct {
	classifier *ConflictClassifier
	logger     *slog.Logger
}

// NewEscalator creates an escalator backed by the given classifier.
func NewEscalator(classifier *ConflictClassifier, logger *slog.Logger) *Escalator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Escalator{classifier: classifier, logger: logger}
}

// Resolve runs the escalation state machine for an initial slot.
// Critical conflicts always move the meeting to the alternative; High
// conflicts move it only when the alternative carries strictly fewer
// conflicts. The result always holds a chosen slot and its conflicts.
func (e *Escalator) Resolve(
	intent intentDomain.MeetingIntent,
	idx *domain.AvailabilityIndex,
	initial domain.TimeInterval,
	title string,
) Resolution {
	attendees := idx.Attendees()
	conflicts := e.classifier.Classify(initial, idx, attendees)

	switch {
	case domain.HasTier(conflicts, domain.TierCritical):
		e.logger.Info("critical conflicts at initial slot, searching alternative")
		alt, degraded := e.FindAlternative(intent, idx, initial.Start)
		if alt.Equal(initial) {
			return Resolution{Slot: initial, Conflicts: conflicts, Degraded: degraded}
		}
		return Resolution{
			Slot:      alt,
			Conflicts: e.classifier.Classify(alt, idx, attendees),
			Moved:     broadcastMove(title, initial, alt),
			Degraded:  degraded,
		}

	case domain.HasTier(conflicts, domain.TierHigh):
		e.logger.Info("high-tier conflicts at initial slot, checking alternatives")
		alt, degraded := e.FindAlternative(intent, idx, initial.Start)
		if alt.Equal(initial) {
			return Resolution{Slot: initial, Conflicts: conflicts}
		}
		altConflicts := e.classifier.Classify(alt, idx, attendees)
		if len(altConflicts) < len(conflicts) {
			e.logger.Info("alternative reduces conflicts, adopting",
				"before", len(conflicts),
				"after", len(altConflicts),
			)
			return Resolution{
				Slot:      alt,
				Conflicts: altConflicts,
				Moved:     broadcastMove(title, initial, alt),
				Degraded:  degraded,
			}
		}
		return Resolution{Slot: initial, Conflicts: conflicts}

	default:
		return Resolution{Slot: initial, Conflicts: conflicts}
	}
}

// FindAlternative scans candidate start times on the target date and returns
// the first slot free for every attendee. Exempt meeting classes may spill
// into early-morning and evening candidates. When nothing qualifies, the
// default midday slot is returned with the degraded flag set: partial
// attendance is accepted rather than failing the request.
func (e *Escalator) FindAlternative(
	intent intentDomain.MeetingIntent,
	idx *domain.AvailabilityIndex,
	targetDate time.Time,
) (domain.TimeInterval, bool) {
	duration := intent.Duration()
	attendees := idx.Attendees()

	candidates := businessHourTimes
	if e.offHoursExempt(intent) {
		candidates = append(append([]dayTime{}, businessHourTimes...), extendedHourTimes...)
		e.logger.Info("off-hours exemption granted, extending candidate times")
	}

	for _, c := range candidates {
		candidate := domain.IntervalFrom(at(targetDate, c.hour, c.minute), duration)
		if idx.IsFree(candidate, attendees) {
			return candidate, false
		}
	}

	e.logger.Warn("no conflict-free alternative found, accepting degraded attendance")
	return domain.IntervalFrom(at(targetDate, DefaultMiddayHour, 0), duration), true
}

func (e *Escalator) offHoursExempt(intent intentDomain.MeetingIntent) bool {
	if intent.OffHoursExempt() {
		return true
	}
	notes := strings.ToLower(intent.Notes())
	for _, s := range bigEventSignals {
		if strings.Contains(notes, s) {
			return true
		}
	}
	return false
}

func broadcastMove(title string, from, to domain.TimeInterval) *domain.RescheduleAction {
	return &domain.RescheduleAction{
		Attendee: domain.BroadcastAttendee,
		Title:    title,
		Original: from,
		New:      to,
	}
}
