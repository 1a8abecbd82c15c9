package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/felixgeelhaar/convene/internal/calendar/infrastructure/google"
	"github.com/felixgeelhaar/convene/pkg/config"
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth <attendee-email>",
	Short: "Authorize Google Calendar access for an attendee",
	Long: `Auth runs the OAuth consent flow for one attendee and stores the
resulting token in the token directory. The google calendar provider loads
these tokens when fetching attendee availability.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
			return fmt.Errorf("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are required")
		}

		attendee := strings.ToLower(strings.TrimSpace(args[0]))

		fmt.Fprintln(cmd.OutOrStdout(), "Visit the URL below, authorize access, and paste the code back here:")
		fmt.Fprintln(cmd.OutOrStdout(), google.AuthURL(cfg.GoogleClientID, cfg.GoogleClientSecret))
		fmt.Fprint(cmd.OutOrStdout(), "Authorization code: ")

		reader := bufio.NewReader(cmd.InOrStdin())
		code, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read authorization code: %w", err)
		}
		code = strings.TrimSpace(code)
		if code == "" {
			return fmt.Errorf("authorization code is required")
		}

		token, err := google.Exchange(cmd.Context(), cfg.GoogleClientID, cfg.GoogleClientSecret, code)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(cfg.GoogleTokenDir, 0o700); err != nil {
			return fmt.Errorf("failed to create token directory: %w", err)
		}
		path := google.TokenPath(cfg.GoogleTokenDir, attendee)
		if err := google.SaveToken(path, token); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Token saved to %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
}
