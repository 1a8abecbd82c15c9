// Package application defines the calendar retrieval boundary: a Source
// yields an attendee's busy events for a time range, and the guarded
// decorator makes sure failures past this boundary never reach the
// scheduling pipeline.
package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Event is one busy span on an attendee's calendar as reported upstream.
type Event struct {
	Start     time.Time
	End       time.Time
	Title     string
	Attendees []string
}

// AttendeeCount returns the number of distinct attendees on the event.
func (e Event) AttendeeCount() int {
	return len(e.Attendees)
}

// Source retrieves busy events for one attendee. Implementations return an
// ordered list; missing data yields an empty list, not an error.
type Source interface {
	Events(ctx context.Context, attendee string, from, to time.Time) ([]Event, error)
}

// Titles that mark non-business placeholders. Events carrying them are
// dropped at retrieval, except the literal off-hours label which the
// classifier needs to see.
var nonBusinessKeywords = []string{"weekend", "personal", "vacation", "holiday"}

// FilterBusinessEvents removes non-business placeholder events.
func FilterBusinessEvents(events []Event) []Event {
	out := make([]Event, 0, len(events))
	for _, ev := range events {
		lowered := strings.ToLower(ev.Title)
		skip := false
		for _, kw := range nonBusinessKeywords {
			if strings.Contains(lowered, kw) {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, ev)
		}
	}
	return out
}

// GuardConfig tunes the collaborator boundary around a Source.
type GuardConfig struct {
	// Timeout bounds each upstream call.
	Timeout time.Duration

	// Retries is the number of additional attempts after a failure.
	Retries int

	// FailureThreshold is the consecutive-failure count that trips the
	// breaker.
	FailureThreshold uint32

	// BreakerInterval is the cyclic period of the closed state.
	BreakerInterval time.Duration

	// BreakerTimeout is how long the breaker stays open.
	BreakerTimeout time.Duration
}

// DefaultGuardConfig returns the default boundary settings: one bounded
// retry, then recover with an empty calendar.
func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		Timeout:          10 * time.Second,
		Retries:          1,
		FailureThreshold: 5,
		BreakerInterval:  10 * time.Second,
		BreakerTimeout:   30 * time.Second,
	}
}

// GuardedSource wraps a Source with a timeout, a single bounded retry, and a
// circuit breaker. Events never returns an error: an unreachable upstream
// yields an empty calendar with a warning, so the pipeline always proceeds.
type GuardedSource struct {
	inner   Source
	breaker *gobreaker.CircuitBreaker[[]Event]
	cfg     GuardConfig
	logger  *slog.Logger
}

// NewGuardedSource creates the boundary decorator.
func NewGuardedSource(inner Source, cfg GuardConfig, logger *slog.Logger) *GuardedSource {
	if logger == nil {
		logger = slog.Default()
	}

	settings := gobreaker.Settings{
		Name:     "calendar-source",
		Interval: cfg.BreakerInterval,
		Timeout:  cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &GuardedSource{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker[[]Event](settings),
		cfg:     cfg,
		logger:  logger,
	}
}

// Events retrieves busy events with the boundary applied.
func (g *GuardedSource) Events(ctx context.Context, attendee string, from, to time.Time) ([]Event, error) {
	events, err := g.breaker.Execute(func() ([]Event, error) {
		var lastErr error
		for attempt := 0; attempt <= g.cfg.Retries; attempt++ {
			callCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
			events, err := g.inner.Events(callCtx, attendee, from, to)
			cancel()
			if err == nil {
				return events, nil
			}
			lastErr = err
		}
		return nil, lastErr
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			g.logger.Warn("calendar source circuit open, treating calendar as empty",
				"attendee", attendee,
			)
		} else {
			g.logger.Warn("calendar fetch failed, treating calendar as empty",
				"attendee", attendee,
				"error", err,
			)
		}
		return []Event{}, nil
	}

	return FilterBusinessEvents(events), nil
}

// StaticSource serves a fixed set of calendars. Used for development mode
// and tests.
type StaticSource struct {
	calendars map[string][]Event
}

// NewStaticSource creates a source over fixed per-attendee event lists.
func NewStaticSource(calendars map[string][]Event) *StaticSource {
	return &StaticSource{calendars: calendars}
}

// Events returns the attendee's events clipped to the range.
func (s *StaticSource) Events(ctx context.Context, attendee string, from, to time.Time) ([]Event, error) {
	out := make([]Event, 0)
	for _, ev := range s.calendars[attendee] {
		if ev.Start.Before(to) && ev.End.After(from) {
			out = append(out, ev)
		}
	}
	return out, nil
}
