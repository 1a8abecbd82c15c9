// Package application coordinates intent extraction with boundary
// protection: the model-backed extractor runs behind a circuit breaker and
// timeout, and the keyword extractor answers whenever it cannot.
package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/convene/internal/intent/domain"
	"github.com/sony/gobreaker/v2"
)

// Extractor maps raw request text to a structured MeetingIntent.
type Extractor interface {
	Extract(ctx context.Context, body, subject string) (domain.MeetingIntent, error)
}

// ServiceConfig tunes the collaborator boundary.
type ServiceConfig struct {
	// Timeout bounds each model call.
	Timeout time.Duration

	// FailureThreshold is the consecutive-failure count that trips the
	// breaker.
	FailureThreshold uint32

	// BreakerInterval is the cyclic period of the closed state.
	BreakerInterval time.Duration

	// BreakerTimeout is how long the breaker stays open.
	BreakerTimeout time.Duration
}

// DefaultServiceConfig returns sensible boundary defaults.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Timeout:          8 * time.Second,
		FailureThreshold: 5,
		BreakerInterval:  10 * time.Second,
		BreakerTimeout:   30 * time.Second,
	}
}

// Service extracts intents, falling back to keyword extraction whenever the
// primary extractor fails, times out, or is circuit-broken. Extract never
// returns an error: a defined fallback intent always comes back.
type Service struct {
	primary  Extractor
	fallback Extractor
	breaker  *gobreaker.CircuitBreaker[domain.MeetingIntent]
	timeout  time.Duration
	logger   *slog.Logger
}

// NewService creates the guarded extraction service. primary may be nil, in
// which case every request goes straight to the fallback.
func NewService(primary, fallback Extractor, cfg ServiceConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	var breaker *gobreaker.CircuitBreaker[domain.MeetingIntent]
	if primary != nil {
		settings := gobreaker.Settings{
			Name:     "intent-extractor",
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
		breaker = gobreaker.NewCircuitBreaker[domain.MeetingIntent](settings)
	}

	return &Service{
		primary:  primary,
		fallback: fallback,
		breaker:  breaker,
		timeout:  cfg.Timeout,
		logger:   logger,
	}
}

// Extract returns the structured intent for a request.
func (s *Service) Extract(ctx context.Context, body, subject string) (domain.MeetingIntent, error) {
	if s.primary != nil {
		intent, err := s.breaker.Execute(func() (domain.MeetingIntent, error) {
			callCtx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			return s.primary.Extract(callCtx, body, subject)
		})
		if err == nil {
			return intent, nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) {
			s.logger.Warn("intent extractor circuit open, using keyword fallback")
		} else {
			s.logger.Warn("intent extraction failed, using keyword fallback", "error", err)
		}
	}

	return s.fallback.Extract(ctx, body, subject)
}
