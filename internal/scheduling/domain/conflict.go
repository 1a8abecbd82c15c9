package domain

// Tier classifies how a conflicting busy event constrains scheduling.
type Tier string

const (
	// TierBlocked marks declared non-working time. Recorded but never
	// rescheduled; slot selection should already have steered around it.
	TierBlocked Tier = "BLOCKED"
	// TierCritical events (workshops, training, all-day, board-level) are
	// never relocated; the meeting moves instead.
	TierCritical Tier = "CRITICAL"
	// TierHigh events (client-facing, preparation) are avoided
	// preferentially and relocated only as a last resort.
	TierHigh Tier = "HIGH"
	// TierMedium events are ordinary internal meetings, eligible for
	// relocation.
	TierMedium Tier = "MEDIUM"
	// TierLow placeholders are ignored entirely.
	TierLow Tier = "LOW"
)

// Precedence orders tiers from most to least constraining.
func (t Tier) Precedence() int {
	switch t {
	case TierBlocked:
		return 4
	case TierCritical:
		return 3
	case TierHigh:
		return 2
	case TierMedium:
		return 1
	default:
		return 0
	}
}

// Conflict records one attendee's busy event overlapping a candidate slot.
type Conflict struct {
	Attendee string
	Event    BusyEvent
	Tier     Tier
}

// HasTier reports whether any conflict in the list carries the given tier.
func HasTier(conflicts []Conflict, tier Tier) bool {
	for _, c := range conflicts {
		if c.Tier == tier {
			return true
		}
	}
	return false
}
