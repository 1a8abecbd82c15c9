// Package eventbus connects the engine to RabbitMQ: decisions are published
// as events, and worker mode consumes scheduling requests from a queue.
package eventbus

import (
	"context"
)

// Publisher sends events to a message broker.
type Publisher interface {
	// Publish sends a message under the given routing key.
	Publish(ctx context.Context, routingKey string, payload []byte) error

	// Close closes the publisher connection.
	Close() error
}

// Routing keys used by the engine.
const (
	RoutingKeyDecisionMade = "schedule.decision.made"
)
