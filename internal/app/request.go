// Package app wires the bounded contexts into the request-to-decision
// pipeline and holds the dependency container.
package app

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Request is one inbound meeting request. Attendees are email identities;
// Timestamp is the reference instant all relative dates resolve against.
type Request struct {
	RequestID string    `json:"requestId"`
	From      string    `json:"from"`
	Attendees []string  `json:"attendees"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
	Location  string    `json:"location,omitempty"`
}

// Normalize fills derivable gaps: a missing request ID gets a fresh UUID,
// an empty attendee list falls back to the sender, and addresses are
// lowercased so calendar lookups and dedup keys agree.
func (r *Request) Normalize() {
	if strings.TrimSpace(r.RequestID) == "" {
		r.RequestID = uuid.New().String()
	}
	r.From = strings.ToLower(strings.TrimSpace(r.From))

	attendees := make([]string, 0, len(r.Attendees))
	for _, a := range r.Attendees {
		if trimmed := strings.ToLower(strings.TrimSpace(a)); trimmed != "" {
			attendees = append(attendees, trimmed)
		}
	}
	if len(attendees) == 0 && r.From != "" {
		attendees = append(attendees, r.From)
	}
	r.Attendees = attendees
}

// Title returns the meeting title used on the new calendar entry.
func (r *Request) Title() string {
	if strings.TrimSpace(r.Subject) == "" {
		return "Meeting"
	}
	return strings.TrimSpace(r.Subject)
}
