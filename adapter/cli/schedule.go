package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/felixgeelhaar/convene/internal/app"
	"github.com/felixgeelhaar/convene/pkg/config"
	"github.com/spf13/cobra"
)

var (
	scheduleFrom      string
	scheduleAttendees []string
	scheduleSubject   string
	scheduleBody      string
	scheduleTimestamp string
	scheduleRequestID string
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Decide a slot for one meeting request",
	Long: `Schedule runs the full decision pipeline for a single request and
prints the decision as JSON. The request body is read from --body, or from
stdin when --body is omitted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		body := scheduleBody
		if body == "" {
			raw, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("failed to read request body from stdin: %w", err)
			}
			body = strings.TrimSpace(string(raw))
		}
		if body == "" && scheduleSubject == "" {
			return fmt.Errorf("a request body or subject is required")
		}

		timestamp := time.Now()
		if scheduleTimestamp != "" {
			parsed, err := time.Parse(time.RFC3339, scheduleTimestamp)
			if err != nil {
				return fmt.Errorf("invalid --timestamp (want RFC3339): %w", err)
			}
			timestamp = parsed
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		container, err := app.NewContainer(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer container.Close()

		decision := container.Pipeline.Process(cmd.Context(), app.Request{
			RequestID: scheduleRequestID,
			From:      scheduleFrom,
			Attendees: scheduleAttendees,
			Subject:   scheduleSubject,
			Body:      body,
			Timestamp: timestamp,
		})

		out, err := json.MarshalIndent(app.NewResponse(decision), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode decision: %w", err)
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	scheduleCmd.Flags().StringVar(&scheduleFrom, "from", "", "sender email address")
	scheduleCmd.Flags().StringSliceVar(&scheduleAttendees, "attendees", nil, "attendee email addresses")
	scheduleCmd.Flags().StringVar(&scheduleSubject, "subject", "", "request subject line")
	scheduleCmd.Flags().StringVar(&scheduleBody, "body", "", "request body text (default: stdin)")
	scheduleCmd.Flags().StringVar(&scheduleTimestamp, "timestamp", "", "reference timestamp, RFC3339 (default: now)")
	scheduleCmd.Flags().StringVar(&scheduleRequestID, "request-id", "", "request identifier (default: generated)")

	rootCmd.AddCommand(scheduleCmd)
}
