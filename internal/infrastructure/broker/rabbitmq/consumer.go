package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/tiu-access/visit-access/internal/core/domain"
)

const (
	prefetch   = 32
	minBackoff = time.Second
	maxBackoff = 30 * time.Second
)

// Handler delivers one notification.
type Handler interface {
	Deliver(ctx context.Context, n domain.Notification) error
}

// Consumer reads notifications from the queue and hands them to a Handler.
// It reconnects with exponential backoff until its context is cancelled.
type Consumer struct {
	url     string
	queue   string
	handler Handler
	log     zerolog.Logger
}

func NewConsumer(url, queue string, handler Handler, log zerolog.Logger) *Consumer {
	if queue == "" {
		queue = DefaultQueue
	}
	return &Consumer{url: url, queue: queue, handler: handler, log: log}
}

// Run blocks until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) {
	backoff := minBackoff
	for ctx.Err() == nil {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn().Err(err).Dur("retry_in", backoff).Msg("rabbitmq consumer dial failed")
			if !sleep(ctx, backoff) {
				return
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}
		backoff = minBackoff

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return
		}
		c.log.Warn().Err(err).Msg("rabbitmq consume loop ended, reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(prefetch, 0, false); err != nil {
		c.log.Warn().Err(err).Msg("rabbitmq set QoS failed")
	}
	if err := declare(ch, c.queue); err != nil {
		return err
	}
	msgs, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}
	c.log.Info().Str("queue", c.queue).Msg("rabbitmq consumer started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.handle(ctx, d)
		}
	}
}

// handle acks on success. Undecodable messages are dropped; failed
// deliveries are requeued once and dropped on the second failure.
func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	var n domain.Notification
	if err := json.Unmarshal(d.Body, &n); err != nil {
		c.log.Error().Err(err).Str("message_id", d.MessageId).Msg("undecodable notification dropped")
		_ = d.Nack(false, false)
		return
	}
	if n.ID == "" {
		n.ID = d.MessageId
	}

	if err := c.handler.Deliver(ctx, n); err != nil {
		c.log.Error().Err(err).
			Str("kind", string(n.Kind)).
			Str("request_id", n.RequestID).
			Bool("redelivered", d.Redelivered).
			Msg("notification delivery failed")
		_ = d.Nack(false, !d.Redelivered)
		return
	}
	_ = d.Ack(false)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
