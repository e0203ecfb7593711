package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/starford/saigoneats/internal/models"
)

const (
	minBackoff = time.Second
	maxBackoff = 30 * time.Second
)

// Moderator applies moderation commands. *venueservice.Service implements it.
type Moderator interface {
	Approve(ctx context.Context, id string) (models.Venue, error)
	Reject(ctx context.Context, id string) error
	Resync(ctx context.Context) (models.SourceMeta, error)
}

// ErrBadMessage marks a message that can never be processed.
var ErrBadMessage = errors.New("bad moderation message")

// Consumer reads moderation messages from one durable queue.
type Consumer struct {
	url    string
	queue  string
	mod    Moderator
	logger *slog.Logger
}

// NewConsumer creates a Consumer for queue on the broker at url.
func NewConsumer(url, queue string, mod Moderator, logger *slog.Logger) *Consumer {
	return &Consumer{url: url, queue: queue, mod: mod, logger: logger}
}

// Run connects, consumes and reconnects with exponential backoff until ctx
// is cancelled. It only returns once ctx is done.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := minBackoff
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.logger.Warn("queue: dial failed",
				slog.String("error", err.Error()),
				slog.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return nil
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}
		backoff = minBackoff

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			c.logger.Info("queue: consumer stopped")
			return nil
		}
		c.logger.Warn("queue: consume loop ended, reconnecting", slog.String("error", err.Error()))
		if !sleep(ctx, 2*time.Second) {
			return nil
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("queue: channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(10, 0, false); err != nil {
		c.logger.Warn("queue: set QoS failed", slog.String("error", err.Error()))
	}
	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue: declare: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue: consume: %w", err)
	}

	c.logger.Info("queue: consuming", slog.String("queue", c.queue))
	for d := range msgs {
		if err := c.process(ctx, d.Body); err != nil {
			c.logger.Warn("queue: message failed",
				slog.String("error", err.Error()),
				slog.String("body", string(d.Body)))
			// Rejected without requeue to avoid tight redelivery loops.
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

// process decodes and applies one message body.
func (c *Consumer) process(ctx context.Context, body []byte) error {
	var msg ModerationMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("%w: %v", ErrBadMessage, err)
	}
	id := strings.TrimSpace(msg.SubmissionID)

	switch Action(strings.ToLower(strings.TrimSpace(string(msg.Action)))) {
	case ActionApprove:
		if id == "" {
			return fmt.Errorf("%w: approve without submissionId", ErrBadMessage)
		}
		_, err := c.mod.Approve(ctx, id)
		return err
	case ActionReject:
		if id == "" {
			return fmt.Errorf("%w: reject without submissionId", ErrBadMessage)
		}
		return c.mod.Reject(ctx, id)
	case ActionRefresh:
		_, err := c.mod.Resync(ctx)
		return err
	}
	return fmt.Errorf("%w: unknown action %q", ErrBadMessage, msg.Action)
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
