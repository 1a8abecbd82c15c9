package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultIntent(t *testing.T) {
	intent := Default()

	assert.Equal(t, 30, intent.DurationMinutes)
	assert.Equal(t, "flexible", intent.DayPreference)
	assert.Equal(t, UrgencyMedium, intent.Urgency)
	assert.Equal(t, CategoryPlanning, intent.Category)
	assert.Equal(t, RelationshipInternal, intent.Relationship)
	assert.Equal(t, 30*time.Minute, intent.Duration())
}

func TestOffHoursExempt(t *testing.T) {
	intent := Default()
	assert.False(t, intent.OffHoursExempt())

	intent.Category = CategoryWorkshop
	assert.True(t, intent.OffHoursExempt())

	intent = Default()
	intent.Relationship = RelationshipWorkshop
	assert.True(t, intent.OffHoursExempt())
}

func TestIsPrep(t *testing.T) {
	intent := Default()
	assert.False(t, intent.IsPrep())

	intent.Category = CategoryPrep
	assert.True(t, intent.IsPrep())

	intent = Default()
	intent.Relationship = RelationshipPrepMeeting
	assert.True(t, intent.IsPrep())
}

func TestParseEnumsCollapseToDefaults(t *testing.T) {
	assert.Equal(t, UrgencyCritical, ParseUrgency("CRITICAL"))
	assert.Equal(t, UrgencyMedium, ParseUrgency("panic!!"))

	assert.Equal(t, CategoryWorkshop, ParseCategory(" workshop "))
	assert.Equal(t, CategoryPlanning, ParseCategory("offsite"))

	assert.Equal(t, RelationshipPrepMeeting, ParseRelationship("prep_meeting"))
	assert.Equal(t, RelationshipInternal, ParseRelationship("something else"))
}

func TestCoerceDuration(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{"30", 30},
		{"45", 45},
		{"00:30:00", 30},
		{"0:30", 30},
		{"1:15", 75},
		{"", 30},
		{"soon", 30},
		{"0", 30},
		{"-10", 30},
		{"abc:def", 30},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CoerceDuration(tc.raw), "raw %q", tc.raw)
	}
}

func TestCoerceDayPreference(t *testing.T) {
	assert.Equal(t, "thursday", CoerceDayPreference(" Thursday "))
	assert.Equal(t, "today", CoerceDayPreference("today"))
	// Structured values where a scalar was expected collapse to flexible.
	assert.Equal(t, "flexible", CoerceDayPreference(`{"day":"thursday"}`))
	assert.Equal(t, "flexible", CoerceDayPreference(""))
}

func TestSplitParticipants(t *testing.T) {
	assert.Nil(t, SplitParticipants("  "))
	assert.Equal(t,
		[]string{"a@example.com", "b@example.com"},
		SplitParticipants(" a@example.com , b@example.com ,"),
	)
}
