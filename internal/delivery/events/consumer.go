package events

import (
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/Pesokrava/product_reviews/internal/config"
	"github.com/Pesokrava/product_reviews/internal/domain"
	"github.com/Pesokrava/product_reviews/internal/pkg/logger"
)

// Consumer is a plain (non-durable) NATS subscriber used by the moderation notifier.
// It sees events as they are published; nothing is replayed after a restart.
type Consumer struct {
	nc     *nats.Conn
	logger *logger.Logger
	subs   []*nats.Subscription
}

// NewConsumer connects to NATS under the notifier's client name
func NewConsumer(cfg *config.Config, log *logger.Logger) (*Consumer, error) {
	nc, err := nats.Connect(cfg.NATS.URL, nats.Name(cfg.Notifier.ClientName))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.WithFields(map[string]any{
		"url":    cfg.NATS.URL,
		"client": cfg.Notifier.ClientName,
	}).Info("Connected to NATS")

	return &Consumer{
		nc:     nc,
		logger: log,
	}, nil
}

// QueueSubscribe joins the queue group so each message reaches one member of it.
// An empty queue subscribes on its own.
func (c *Consumer) QueueSubscribe(subject, queue string, handler func(data []byte) error) error {
	sub, err := c.nc.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		if err := handler(msg.Data); err != nil {
			c.logger.Errorf(err, "Failed to handle message on subject %s", msg.Subject)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w", subject, err)
	}

	c.subs = append(c.subs, sub)
	c.logger.WithFields(map[string]any{
		"subject": subject,
		"queue":   queue,
	}).Info("Subscribed to NATS subject")
	return nil
}

// Close drains the subscriptions, letting handlers finish queued messages, then closes the connection
func (c *Consumer) Close() {
	if c.nc == nil {
		return
	}
	if err := c.nc.Drain(); err != nil {
		c.logger.Warnf("Failed to drain NATS connection: %v", err)
		c.nc.Close()
	}
	c.logger.Info("NATS consumer connection closed")
}

// ModerationHandler logs review changes that need a moderator's attention
func ModerationHandler(log *logger.Logger) func(data []byte) error {
	return func(data []byte) error {
		event, err := Decode(data)
		if err != nil {
			return err
		}

		entry := log.WithFields(map[string]any{
			"event_type": event.EventType,
			"product_id": event.ProductID,
			"review_id":  event.ReviewID,
			"status":     event.Status,
		})

		switch {
		case event.EventType == ReviewCreated && event.Status == domain.StatusPending:
			entry.Info("New review awaiting moderation")
		case event.EventType == ReviewUpdated && event.Status == domain.StatusPending:
			entry.Info("Review edited by customer, awaiting moderation")
		case event.EventType == ReviewStatusChanged && event.Status == domain.StatusFlagged:
			entry.Warn("Review flagged")
		default:
			entry.Debug("Review event received")
		}

		return nil
	}
}
