package eventbus

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// InProcessBus is an in-memory bus for local mode (no RabbitMQ). Published
// messages are delivered synchronously to registered handlers by routing key.
type InProcessBus struct {
	handlers map[string][]MessageHandler
	logger   *slog.Logger
	mu       sync.Mutex
}

// NewInProcessBus creates a new in-process bus.
func NewInProcessBus(logger *slog.Logger) *InProcessBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessBus{
		handlers: make(map[string][]MessageHandler),
		logger:   logger,
	}
}

// Subscribe registers a handler for a routing key.
func (b *InProcessBus) Subscribe(routingKey string, handler MessageHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[routingKey] = append(b.handlers[routingKey], handler)
}

// Publish delivers the payload to every handler subscribed to the routing
// key. Handler errors are logged but do not fail the publish, matching the
// fire-and-forget semantics of the RabbitMQ publisher.
func (b *InProcessBus) Publish(ctx context.Context, routingKey string, payload []byte) error {
	b.mu.Lock()
	handlers := b.handlers[routingKey]
	b.mu.Unlock()

	if len(handlers) == 0 {
		b.logger.Debug("no subscribers for routing key", "routing_key", routingKey)
		return nil
	}

	for _, handler := range handlers {
		start := time.Now()
		if err := handler(ctx, payload); err != nil {
			b.logger.Error("in-process handler failed",
				"routing_key", routingKey,
				"duration_ms", time.Since(start).Milliseconds(),
				"error", err,
			)
		}
	}
	return nil
}

// Close is a no-op for the in-process bus.
func (b *InProcessBus) Close() error {
	return nil
}
