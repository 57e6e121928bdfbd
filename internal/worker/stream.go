package worker

import (
	"context"
	"errors"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Pesokrava/product_reviews/internal/pkg/logger"
)

const (
	fetchWait  = 5 * time.Second
	fetchPause = 5 * time.Second
)

// Fetcher pulls message batches; *nats.Subscription from PullSubscribe satisfies it
type Fetcher interface {
	Fetch(batch int, opts ...nats.PullOpt) ([]*nats.Msg, error)
}

// Consume pulls batches from sub and feeds them to handle until ctx is cancelled.
// Handled messages are acked, failed ones are nacked for a backoff redelivery.
func Consume(ctx context.Context, sub Fetcher, batch int, handle func([]byte) error, log *logger.Logger) {
	if batch <= 0 {
		batch = 10
	}

	for {
		if ctx.Err() != nil {
			return
		}

		fetchCtx, cancel := context.WithTimeout(ctx, fetchWait)
		msgs, err := sub.Fetch(batch, nats.Context(fetchCtx))
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, nats.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			log.Error("Failed to fetch messages from JetStream", err)
			select {
			case <-time.After(fetchPause):
			case <-ctx.Done():
				return
			}
			continue
		}

		for _, msg := range msgs {
			if err := handle(msg.Data); err != nil {
				log.Error("Failed to handle event", err)
				if nakErr := msg.Nak(); nakErr != nil {
					log.Error("Failed to NAK message", nakErr)
				}
				continue
			}

			if ackErr := msg.Ack(); ackErr != nil {
				log.Error("Failed to ACK message", ackErr)
			}
		}
	}
}
