package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(day, hour, minute int) time.Time {
	return time.Date(2026, time.March, day, hour, minute, 0, 0, time.UTC)
}

func iv(day, startHour, startMin, endHour, endMin int) TimeInterval {
	return TimeInterval{Start: ts(day, startHour, startMin), End: ts(day, endHour, endMin)}
}

func TestNewTimeInterval(t *testing.T) {
	start := ts(2, 9, 0)
	end := ts(2, 10, 0)

	interval, err := NewTimeInterval(start, end)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, interval.Duration())

	_, err = NewTimeInterval(end, start)
	assert.ErrorIs(t, err, ErrInvalidInterval)

	_, err = NewTimeInterval(start, start)
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestTimeIntervalOverlaps(t *testing.T) {
	base := iv(2, 9, 0, 10, 0)

	assert.True(t, base.Overlaps(iv(2, 9, 30, 10, 30)))
	assert.True(t, base.Overlaps(iv(2, 8, 0, 9, 30)))
	assert.True(t, base.Overlaps(iv(2, 8, 0, 11, 0)))
	assert.True(t, base.Overlaps(iv(2, 9, 15, 9, 45)))

	// Half-open: touching endpoints do not overlap.
	assert.False(t, base.Overlaps(iv(2, 10, 0, 11, 0)))
	assert.False(t, base.Overlaps(iv(2, 8, 0, 9, 0)))
	assert.False(t, base.Overlaps(iv(2, 11, 0, 12, 0)))
}

func TestTimeIntervalSameDate(t *testing.T) {
	interval := iv(2, 14, 0, 14, 30)
	assert.True(t, interval.SameDate(ts(2, 0, 0)))
	assert.False(t, interval.SameDate(ts(3, 0, 0)))
}

func TestBusyEventRelocatedTo(t *testing.T) {
	original := BusyEvent{
		Interval:  iv(2, 14, 0, 14, 30),
		Title:     "Code Review",
		Attendees: []string{"a@example.com"},
	}

	moved := original.RelocatedTo(iv(2, 8, 0, 8, 30))

	assert.Equal(t, iv(2, 8, 0, 8, 30), moved.Interval)
	assert.Equal(t, "Code Review", moved.Title)
	// Source value untouched.
	assert.Equal(t, iv(2, 14, 0, 14, 30), original.Interval)
}

func TestBusyEventKeyIdentity(t *testing.T) {
	a := BusyEvent{Interval: iv(2, 9, 0, 10, 0), Title: "Sync"}
	b := BusyEvent{Interval: iv(2, 9, 0, 10, 0), Title: "Sync"}
	c := BusyEvent{Interval: iv(2, 9, 0, 10, 0), Title: "Other"}

	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), c.Key())
}
