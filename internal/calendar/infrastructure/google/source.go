// Package google retrieves busy events from Google Calendar.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	calendarApp "github.com/felixgeelhaar/convene/internal/calendar/application"
)

// Source queries Google Calendar for attendee busy events. Each attendee
// needs a token file named token-<localpart>.json in the token directory,
// produced by the auth flow.
type Source struct {
	clientID     string
	clientSecret string
	tokenDir     string
	logger       *slog.Logger
}

// NewSource creates a Google Calendar busy-event source.
func NewSource(clientID, clientSecret, tokenDir string, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	if tokenDir == "" {
		tokenDir = "."
	}
	return &Source{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenDir:     tokenDir,
		logger:       logger,
	}
}

// Events returns the attendee's primary-calendar events within the range.
func (s *Source) Events(ctx context.Context, attendee string, from, to time.Time) ([]calendarApp.Event, error) {
	svc, err := s.serviceFor(ctx, attendee)
	if err != nil {
		return nil, err
	}

	list, err := svc.Events.List("primary").
		ShowDeleted(false).
		SingleEvents(true).
		TimeMin(from.UTC().Format(time.RFC3339)).
		TimeMax(to.UTC().Format(time.RFC3339)).
		OrderBy("startTime").
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve events for %s: %w", attendee, err)
	}

	s.logger.Debug("fetched google calendar events", "attendee", attendee, "count", len(list.Items))
	return toEvents(list.Items, attendee), nil
}

func (s *Source) serviceFor(ctx context.Context, attendee string) (*calendar.Service, error) {
	config := oauthConfig(s.clientID, s.clientSecret)

	token, err := tokenFromFile(TokenPath(s.tokenDir, attendee))
	if err != nil {
		return nil, fmt.Errorf("could not load token for %s: %w. Run 'convene auth %s' first", attendee, err, attendee)
	}

	client := config.Client(ctx, token)
	svc, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return svc, nil
}

// toEvents converts Google Calendar events to the source Event model.
// Timed events only; all-day entries carry no DateTime and are skipped.
func toEvents(items []*calendar.Event, attendee string) []calendarApp.Event {
	events := make([]calendarApp.Event, 0, len(items))
	for _, item := range items {
		if item.Start == nil || item.Start.DateTime == "" || item.End == nil {
			continue
		}

		start, err := time.Parse(time.RFC3339, item.Start.DateTime)
		if err != nil {
			continue
		}
		end, err := time.Parse(time.RFC3339, item.End.DateTime)
		if err != nil {
			continue
		}

		attendees := []string{attendee}
		for _, a := range item.Attendees {
			if a.Email != "" && !strings.EqualFold(a.Email, attendee) {
				attendees = append(attendees, strings.ToLower(a.Email))
			}
		}

		events = append(events, calendarApp.Event{
			Start:     start,
			End:       end,
			Title:     item.Summary,
			Attendees: attendees,
		})
	}
	return events
}

// accountName maps an attendee identifier to its token file account name.
func accountName(attendee string) string {
	if at := strings.IndexByte(attendee, '@'); at > 0 {
		return attendee[:at]
	}
	return attendee
}

func oauthConfig(clientID, clientSecret string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  "urn:ietf:wg:oauth:2.0:oob",
		Scopes:       []string{calendar.CalendarReadonlyScope},
		Endpoint:     googleoauth.Endpoint,
	}
}

// TokenPath returns the token file path for an attendee under dir.
func TokenPath(dir, attendee string) string {
	return filepath.Join(dir, fmt.Sprintf("token-%s.json", accountName(attendee)))
}

// AuthURL returns the consent URL the user must visit to authorize
// read-only calendar access.
func AuthURL(clientID, clientSecret string) string {
	return oauthConfig(clientID, clientSecret).AuthCodeURL("state-token",
		oauth2.AccessTypeOffline)
}

// Exchange trades the authorization code from the consent page for a token.
func Exchange(ctx context.Context, clientID, clientSecret, code string) (*oauth2.Token, error) {
	token, err := oauthConfig(clientID, clientSecret).Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return token, nil
}

// SaveToken saves a token to a file path, readable by the owner only.
func SaveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("unable to create token file: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}
