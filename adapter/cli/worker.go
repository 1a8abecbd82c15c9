package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/convene/internal/app"
	"github.com/felixgeelhaar/convene/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/convene/pkg/config"
	"github.com/felixgeelhaar/convene/pkg/observability"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume scheduling requests from the message queue",
	Long: `Worker mode consumes scheduling requests from RabbitMQ, runs each
through the decision pipeline, and publishes the resulting decisions back to
the exchange.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.RabbitMQURL == "" {
			return fmt.Errorf("RABBITMQ_URL is required for worker mode")
		}

		container, err := app.NewContainer(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer container.Close()

		handler := func(ctx context.Context, payload []byte) error {
			var req app.Request
			if err := json.Unmarshal(payload, &req); err != nil {
				// Requeuing an unparseable payload would loop forever.
				logger.Error("discarding malformed scheduling request", "error", err)
				return nil
			}
			ctx = observability.WithCorrelationID(ctx, "")
			ctx = observability.WithRequestID(ctx, req.RequestID)
			container.Pipeline.Process(ctx, req)
			return nil
		}

		consumer, err := eventbus.NewRabbitMQConsumer(eventbus.RabbitMQConsumerConfig{
			URL:     cfg.RabbitMQURL,
			Logger:  logger,
			Metrics: container.Metrics,
		}, handler)
		if err != nil {
			return err
		}
		defer consumer.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
