// Package cache provides a Redis read-through cache for calendar sources.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	calendarApp "github.com/felixgeelhaar/convene/internal/calendar/application"
	"github.com/felixgeelhaar/convene/pkg/observability"
)

// DefaultTTL is how long cached calendars stay fresh.
const DefaultTTL = 5 * time.Minute

// CachedSource wraps a Source with a Redis read-through cache keyed on
// attendee and range. Cache failures degrade to a direct upstream call.
type CachedSource struct {
	inner   calendarApp.Source
	client  *redis.Client
	ttl     time.Duration
	logger  *slog.Logger
	metrics observability.Metrics
}

// NewCachedSource creates the read-through decorator. A zero ttl uses
// DefaultTTL.
func NewCachedSource(inner calendarApp.Source, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedSource {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedSource{
		inner:   inner,
		client:  client,
		ttl:     ttl,
		logger:  logger,
		metrics: observability.NoopMetrics{},
	}
}

// WithMetrics makes cache hits visible as counters.
func (c *CachedSource) WithMetrics(metrics observability.Metrics) *CachedSource {
	if metrics != nil {
		c.metrics = metrics
	}
	return c
}

// Events returns the attendee's events, served from cache when fresh.
func (c *CachedSource) Events(ctx context.Context, attendee string, from, to time.Time) ([]calendarApp.Event, error) {
	key := cacheKey(attendee, from, to)

	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var events []calendarApp.Event
		if err := json.Unmarshal(raw, &events); err == nil {
			c.metrics.Counter(observability.MetricCalendarCacheHits, 1)
			return events, nil
		}
		c.logger.Warn("discarding malformed calendar cache entry", "key", key)
	} else if err != redis.Nil {
		c.logger.Warn("calendar cache read failed", "key", key, "error", err)
	}

	events, err := c.inner.Events(ctx, attendee, from, to)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(events); err == nil {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.logger.Warn("calendar cache write failed", "key", key, "error", err)
		}
	}

	return events, nil
}

// Invalidate drops the cached entry for an attendee and range.
func (c *CachedSource) Invalidate(ctx context.Context, attendee string, from, to time.Time) error {
	return c.client.Del(ctx, cacheKey(attendee, from, to)).Err()
}

func cacheKey(attendee string, from, to time.Time) string {
	return fmt.Sprintf("convene:cal:%s:%d:%d", attendee, from.Unix(), to.Unix())
}
