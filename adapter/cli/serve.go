package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/felixgeelhaar/convene/adapter/api"
	"github.com/felixgeelhaar/convene/internal/app"
	"github.com/felixgeelhaar/convene/pkg/config"
	"github.com/felixgeelhaar/convene/pkg/observability"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduling HTTP API",
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

		health := observability.NewHealthRegistry()
		container.RegisterHealthChecks(health)

		serverCfg := api.DefaultServerConfig()
		serverCfg.Addr = cfg.APIAddr
		handler := api.NewScheduleHandler(container.Pipeline, container.Decisions, logger)
		server := api.NewServer(serverCfg, handler, health, logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
