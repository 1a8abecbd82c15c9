package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/felixgeelhaar/convene/pkg/observability"
)

const (
	// RequestQueueName is the queue worker mode consumes scheduling
	// requests from.
	RequestQueueName = "convene.schedule.requests"

	// RoutingKeyScheduleRequest routes inbound scheduling requests.
	RoutingKeyScheduleRequest = "schedule.request.received"
)

// MessageHandler processes one consumed message body. A returned error nacks
// and requeues the message.
type MessageHandler func(ctx context.Context, payload []byte) error

// RabbitMQConsumer consumes scheduling requests from a durable queue and
// hands each message to the handler, one at a time.
type RabbitMQConsumer struct {
	conn      *amqp.Connection
	channel   *amqp.Channel
	queue     string
	handler   MessageHandler
	logger    *slog.Logger
	metrics   observability.Metrics
	mu        sync.Mutex
	running   bool
	closeChan chan struct{}
}

// RabbitMQConsumerConfig configures the consumer.
type RabbitMQConsumerConfig struct {
	URL       string
	QueueName string
	Logger    *slog.Logger
	Metrics   observability.Metrics
}

// NewRabbitMQConsumer connects, declares the queue, and binds it to the
// scheduling-request routing key on the shared exchange.
func NewRabbitMQConsumer(cfg RabbitMQConsumerConfig, handler MessageHandler) (*RabbitMQConsumer, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observability.NoopMetrics{}
	}
	if cfg.QueueName == "" {
		cfg.QueueName = RequestQueueName
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		ExchangeName,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	_, err = ch.QueueDeclare(
		cfg.QueueName,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := ch.QueueBind(cfg.QueueName, RoutingKeyScheduleRequest, ExchangeName, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	cfg.Logger.Info("RabbitMQ consumer connected",
		"queue", cfg.QueueName,
		"exchange", ExchangeName,
	)

	return &RabbitMQConsumer{
		conn:      conn,
		channel:   ch,
		queue:     cfg.QueueName,
		handler:   handler,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
		closeChan: make(chan struct{}),
	}, nil
}

// Start consumes messages until the context is cancelled or Close is called.
func (c *RabbitMQConsumer) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("consumer already running")
	}
	c.running = true
	c.mu.Unlock()

	// One message at a time: decisions are cheap but calendar fetches
	// are not.
	if err := c.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := c.channel.Consume(
		c.queue,
		"",    // consumer tag (auto-generated)
		false, // auto-ack (we manually ack)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	c.logger.Info("started consuming scheduling requests", "queue", c.queue)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("consumer context cancelled, stopping")
			return ctx.Err()

		case <-c.closeChan:
			c.logger.Info("consumer close requested, stopping")
			return nil

		case msg, ok := <-msgs:
			if !ok {
				c.logger.Warn("message channel closed")
				return fmt.Errorf("message channel closed unexpectedly")
			}
			c.handleDelivery(ctx, msg)
		}
	}
}

func (c *RabbitMQConsumer) handleDelivery(ctx context.Context, msg amqp.Delivery) {
	start := time.Now()
	err := c.handler(ctx, msg.Body)
	duration := time.Since(start)

	if err != nil {
		c.logger.Error("request processing failed",
			"routing_key", msg.RoutingKey,
			"duration_ms", duration.Milliseconds(),
			"error", err,
		)
		if nackErr := msg.Nack(false, true); nackErr != nil {
			c.logger.Error("failed to nack message", "error", nackErr)
		}
		return
	}

	if ackErr := msg.Ack(false); ackErr != nil {
		c.logger.Error("failed to ack message", "error", ackErr)
		return
	}

	c.metrics.Counter(observability.MetricEventsConsumed, 1,
		observability.T("routing_key", msg.RoutingKey))
	c.logger.Debug("request processed",
		"routing_key", msg.RoutingKey,
		"duration_ms", duration.Milliseconds(),
	)
}

// Close closes the consumer connection.
func (c *RabbitMQConsumer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	close(c.closeChan)
	c.running = false

	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.logger.Warn("error closing channel", "error", err)
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			return err
		}
	}

	c.logger.Info("RabbitMQ consumer closed")
	return nil
}
