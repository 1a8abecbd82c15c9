package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	calendarApp "github.com/felixgeelhaar/convene/internal/calendar/application"
	intentApp "github.com/felixgeelhaar/convene/internal/intent/application"
	intentDomain "github.com/felixgeelhaar/convene/internal/intent/domain"
	"github.com/felixgeelhaar/convene/internal/scheduling/application/services"
	"github.com/felixgeelhaar/convene/internal/scheduling/domain"
	"github.com/felixgeelhaar/convene/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/convene/pkg/observability"
)

// DefaultLookaheadDays is the calendar search window when none is configured.
const DefaultLookaheadDays = 14

// PipelineConfig tunes per-request behavior.
type PipelineConfig struct {
	// LookaheadDays bounds the calendar fetch window.
	LookaheadDays int

	// Location is the scheduling timezone. Reference timestamps are
	// normalized into it before any date math.
	Location *time.Location

	// DefaultDurationMinutes is the meeting length of the fallback
	// decision, when no intent survives to supply one.
	DefaultDurationMinutes int

	// Clock supplies "now" for requests without a reference timestamp.
	Clock func() time.Time
}

// Pipeline turns one meeting request into a decision. It is stateless across
// requests and safe for concurrent use. Process never returns an error: every
// failure path degrades to a well-formed fallback decision.
type Pipeline struct {
	source     calendarApp.Source
	intents    intentApp.Extractor
	selector   *services.SlotSelector
	escalator  *services.Escalator
	planner    *services.ReschedulePlanner
	builder    *services.DecisionBuilder
	decisions  domain.DecisionRepository
	publisher  eventbus.Publisher
	metrics    observability.Metrics
	logger     *slog.Logger
	lookahead  int
	location   *time.Location
	defaultDur int
	clock      func() time.Time
}

// NewPipeline assembles the decision pipeline. decisions and publisher may be
// nil; both are best-effort side channels.
func NewPipeline(
	source calendarApp.Source,
	intents intentApp.Extractor,
	decisions domain.DecisionRepository,
	publisher eventbus.Publisher,
	cfg PipelineConfig,
	metrics observability.Metrics,
	logger *slog.Logger,
) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if cfg.LookaheadDays <= 0 {
		cfg.LookaheadDays = DefaultLookaheadDays
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.DefaultDurationMinutes <= 0 {
		cfg.DefaultDurationMinutes = intentDomain.DefaultDurationMinutes
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	classifier := services.NewConflictClassifier(logger)
	return &Pipeline{
		source:     source,
		intents:    intents,
		selector:   services.NewSlotSelector(logger),
		escalator:  services.NewEscalator(classifier, logger),
		planner:    services.NewReschedulePlanner(logger),
		builder:    services.NewDecisionBuilder(logger),
		decisions:  decisions,
		publisher:  publisher,
		metrics:    metrics,
		logger:     logger,
		lookahead:  cfg.LookaheadDays,
		location:   cfg.Location,
		defaultDur: cfg.DefaultDurationMinutes,
		clock:      cfg.Clock,
	}
}

// Process runs the full pipeline: extract intent, build availability, select
// a slot, escalate around conflicts, plan relocations, and assemble the
// decision. The reference instant is read once from the request timestamp.
func (p *Pipeline) Process(ctx context.Context, req Request) (decision domain.Decision) {
	timer := observability.StartTimer("schedule.decide").WithMetrics(p.metrics)
	req.Normalize()

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("pipeline failure, returning fallback decision",
				"request_id", req.RequestID,
				"panic", r,
			)
			decision = p.fallbackDecision(req, fmt.Sprintf("internal error: %v", r))
			decision.ProcessingTime = timer.StopWithError(fmt.Errorf("pipeline panic: %v", r))
			p.record(ctx, decision)
		}
	}()

	now := req.Timestamp
	if now.IsZero() {
		now = p.clock()
	}
	now = now.In(p.location)

	intent, err := p.intents.Extract(ctx, req.Body, req.Subject)
	if err != nil {
		// The extraction service recovers internally; an error here means
		// even the fallback extractor gave up. Proceed with defaults.
		p.logger.Warn("intent extraction failed outright, using defaults", "error", err)
		intent = intentDomain.Default()
		p.metrics.Counter(observability.MetricIntentFallbacks, 1)
	}
	p.metrics.Counter(observability.MetricIntentExtractions, 1)

	idx := p.buildAvailability(ctx, req.Attendees, now)

	slot := p.selector.SelectPrimary(intent, idx, now)
	resolution := p.escalator.Resolve(intent, idx, slot, req.Title())

	actions, planDegraded := p.planner.PlanAll(resolution.Conflicts, idx, resolution.Slot)
	if resolution.Moved != nil {
		actions = append([]domain.RescheduleAction{*resolution.Moved}, actions...)
	}

	rationale := domain.Rationale{
		Urgency:         string(intent.Urgency),
		Category:        string(intent.Category),
		Relationship:    string(intent.Relationship),
		DayPreference:   intent.DayPreference,
		OffHoursAllowed: intent.OffHoursExempt(),
		Degraded:        resolution.Degraded || planDegraded,
	}

	decision = p.builder.Build(
		req.RequestID,
		req.Title(),
		req.Attendees,
		idx,
		resolution.Slot,
		resolution.Conflicts,
		actions,
		rationale,
	)
	decision.ProcessingTime = timer.Stop()

	p.metrics.Counter(observability.MetricDecisionsMade, 1)
	p.metrics.Counter(observability.MetricConflictsFound, int64(len(decision.Conflicts)))
	p.metrics.Counter(observability.MetricReschedules, int64(len(decision.Actions)))
	if rationale.Degraded {
		p.metrics.Counter(observability.MetricDecisionsDegraded, 1)
	}

	p.logger.Info("decision made",
		"request_id", req.RequestID,
		"slot_start", decision.Slot.Start,
		"conflicts", len(decision.Conflicts),
		"actions", len(decision.Actions),
		"degraded", rationale.Degraded,
		"duration_ms", decision.ProcessingTime.Milliseconds(),
	)

	p.record(ctx, decision)
	return decision
}

// buildAvailability fetches every attendee's calendar for the search window.
// A failing source degrades that attendee to an empty calendar.
func (p *Pipeline) buildAvailability(ctx context.Context, attendees []string, now time.Time) *domain.AvailabilityIndex {
	from := now
	to := now.AddDate(0, 0, p.lookahead)

	calendars := make(map[string][]domain.BusyEvent, len(attendees))
	for _, attendee := range attendees {
		events, err := p.source.Events(ctx, attendee, from, to)
		if err != nil {
			p.logger.Warn("calendar fetch failed, treating attendee as free",
				"attendee", attendee,
				"error", err,
			)
			p.metrics.Counter(observability.MetricCalendarFailures, 1)
			events = nil
		}
		p.metrics.Counter(observability.MetricCalendarFetches, 1)

		busy := make([]domain.BusyEvent, 0, len(events))
		for _, ev := range events {
			interval, err := domain.NewTimeInterval(ev.Start, ev.End)
			if err != nil {
				continue
			}
			busy = append(busy, domain.BusyEvent{
				Interval:  interval,
				Title:     ev.Title,
				Attendees: ev.Attendees,
			})
		}
		calendars[attendee] = busy
	}
	return domain.NewAvailabilityIndex(calendars)
}

// fallbackDecision is the answer of last resort: the next business day's
// opening hour, default duration, no conflicts, with the failure recorded.
func (p *Pipeline) fallbackDecision(req Request, errMsg string) domain.Decision {
	now := req.Timestamp
	if now.IsZero() {
		now = p.clock()
	}
	now = now.In(p.location)

	day := domain.NextBusinessDay(now)
	start := time.Date(day.Year(), day.Month(), day.Day(),
		services.BusinessOpenHour, 0, 0, 0, day.Location())
	slot := domain.IntervalFrom(start, time.Duration(p.defaultDur)*time.Minute)

	empty := make(map[string][]domain.BusyEvent, len(req.Attendees))
	for _, attendee := range req.Attendees {
		empty[attendee] = nil
	}

	rationale := domain.Rationale{
		Urgency:       string(intentDomain.UrgencyMedium),
		Category:      string(intentDomain.CategoryPlanning),
		Relationship:  string(intentDomain.RelationshipInternal),
		DayPreference: intentDomain.DefaultDayPreference,
		Degraded:      true,
		Error:         errMsg,
	}

	return p.builder.Build(
		req.RequestID,
		req.Title(),
		req.Attendees,
		domain.NewAvailabilityIndex(empty),
		slot,
		nil,
		nil,
		rationale,
	)
}

// record persists the audit row and publishes the decision event. Both are
// best-effort: failures are logged, never surfaced.
func (p *Pipeline) record(ctx context.Context, decision domain.Decision) {
	if p.decisions != nil {
		rec := domain.NewDecisionRecord(decision, time.Now())
		if err := p.decisions.Save(ctx, rec); err != nil {
			p.logger.Warn("failed to save decision record",
				"request_id", decision.RequestID,
				"error", err,
			)
		}
	}

	if p.publisher != nil {
		payload, err := json.Marshal(NewResponse(decision))
		if err != nil {
			p.logger.Warn("failed to marshal decision event", "error", err)
			return
		}
		if err := p.publisher.Publish(ctx, eventbus.RoutingKeyDecisionMade, payload); err != nil {
			p.logger.Warn("failed to publish decision event",
				"request_id", decision.RequestID,
				"error", err,
			)
			return
		}
		p.metrics.Counter(observability.MetricEventsPublished, 1)
	}
}
