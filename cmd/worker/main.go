package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/convene/internal/app"
	"github.com/felixgeelhaar/convene/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/convene/pkg/config"
	"github.com/felixgeelhaar/convene/pkg/observability"
)

func main() {
	logger := observability.LoggerFromEnv()
	logger.Info("starting convene worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.RabbitMQURL == "" {
		logger.Error("RABBITMQ_URL is required for worker mode")
		os.Exit(1)
	}

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build container", "error", err)
		os.Exit(1)
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
		logger.Error("failed to create consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("consumer stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("convene worker stopped")
}
