package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakySource struct {
	calls    int
	failures int
	events   []Event
}

func (s *flakySource) Events(ctx context.Context, attendee string, from, to time.Time) ([]Event, error) {
	s.calls++
	if s.calls <= s.failures {
		return nil, errors.New("upstream unavailable")
	}
	return s.events, nil
}

func TestFilterBusinessEvents(t *testing.T) {
	mk := func(title string) Event {
		return Event{
			Start: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
			End:   time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
			Title: title,
		}
	}

	events := []Event{
		mk("Team sync"),
		mk("Weekend trip"),
		mk("Personal errand"),
		mk("Vacation"),
		mk("Public Holiday"),
		mk("Off Hours"),
	}

	filtered := FilterBusinessEvents(events)

	titles := make([]string, 0, len(filtered))
	for _, ev := range filtered {
		titles = append(titles, ev.Title)
	}
	assert.Equal(t, []string{"Team sync", "Off Hours"}, titles)
}

func TestGuardedSourceRetriesOnce(t *testing.T) {
	inner := &flakySource{
		failures: 1,
		events: []Event{{
			Start: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
			End:   time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
			Title: "Standup",
		}},
	}

	guarded := NewGuardedSource(inner, DefaultGuardConfig(), nil)

	events, err := guarded.Events(context.Background(), "alice", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, 2, inner.calls)
}

func TestGuardedSourceRecoversWithEmptyCalendar(t *testing.T) {
	inner := &flakySource{failures: 100}

	guarded := NewGuardedSource(inner, DefaultGuardConfig(), nil)

	events, err := guarded.Events(context.Background(), "alice", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestGuardedSourceOpensBreakerAfterThreshold(t *testing.T) {
	inner := &flakySource{failures: 1000}

	cfg := DefaultGuardConfig()
	cfg.Retries = 0
	cfg.FailureThreshold = 2
	guarded := NewGuardedSource(inner, cfg, nil)

	for i := 0; i < 5; i++ {
		events, err := guarded.Events(context.Background(), "alice", time.Time{}, time.Time{})
		require.NoError(t, err)
		assert.Empty(t, events)
	}

	// Two calls trip the breaker, the rest are short-circuited.
	assert.Equal(t, 2, inner.calls)
}

func TestGuardedSourceFiltersNonBusinessEvents(t *testing.T) {
	inner := &flakySource{
		events: []Event{
			{Title: "Client review"},
			{Title: "Vacation day"},
		},
	}

	guarded := NewGuardedSource(inner, DefaultGuardConfig(), nil)

	events, err := guarded.Events(context.Background(), "alice", time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Client review", events[0].Title)
}

func TestStaticSourceClipsToRange(t *testing.T) {
	src := NewStaticSource(map[string][]Event{
		"alice": {
			{
				Start: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
				End:   time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
				Title: "In range",
			},
			{
				Start: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
				End:   time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC),
				Title: "Out of range",
			},
		},
	})

	events, err := src.Events(context.Background(), "alice",
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "In range", events[0].Title)

	events, err = src.Events(context.Background(), "nobody", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, events)
}
