package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/felixgeelhaar/convene/internal/app"
	"github.com/felixgeelhaar/convene/internal/scheduling/domain"
	"github.com/felixgeelhaar/convene/pkg/config"
	"github.com/spf13/cobra"
)

var (
	decisionsLimit     int
	decisionsRequestID string
)

var decisionsCmd = &cobra.Command{
	Use:   "decisions",
	Short: "Show the decision audit log",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		container, err := app.NewContainer(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer container.Close()

		var records []domain.DecisionRecord
		if decisionsRequestID != "" {
			records, err = container.Decisions.FindByRequestID(cmd.Context(), decisionsRequestID)
		} else {
			records, err = container.Decisions.ListRecent(cmd.Context(), decisionsLimit)
		}
		if err != nil {
			return fmt.Errorf("failed to load decisions: %w", err)
		}
		if len(records) == 0 {
			fmt.Println("no decisions recorded")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "REQUEST\tSLOT\tDURATION\tCONFLICTS\tACTIONS\tURGENCY\tDEGRADED\tDECIDED")
		for _, rec := range records {
			fmt.Fprintf(w, "%s\t%s\t%dm\t%d\t%d\t%s\t%t\t%s\n",
				rec.RequestID,
				rec.SlotStart.Format("2006-01-02 15:04"),
				rec.DurationMinutes,
				rec.ConflictCount,
				rec.ActionCount,
				rec.Urgency,
				rec.Degraded,
				rec.DecidedAt.Format(time.RFC3339),
			)
		}
		return w.Flush()
	},
}

func init() {
	decisionsCmd.Flags().IntVar(&decisionsLimit, "limit", 20, "number of recent decisions to show")
	decisionsCmd.Flags().StringVar(&decisionsRequestID, "request-id", "", "show decisions for one request")

	rootCmd.AddCommand(decisionsCmd)
}
