package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Pesokrava/movie_store/internal/pkg/logger"
)

const (
	fetchBatch   = 10
	fetchMaxWait = 5 * time.Second
	fetchPause   = 5 * time.Second
)

// PullConsumer feeds a durable JetStream consumer to handlers. A handler error naks the
// message so JetStream redelivers it with backoff.
type PullConsumer struct {
	js      nats.JetStreamContext
	durable string
	logger  *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	subs   []*nats.Subscription
}

// NewPullConsumer creates a pull consumer bound to the durable name
func NewPullConsumer(js nats.JetStreamContext, durable string, log *logger.Logger) *PullConsumer {
	ctx, cancel := context.WithCancel(context.Background())
	return &PullConsumer{
		js:      js,
		durable: durable,
		logger:  log,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Subscribe starts fetching messages of subject in the background
func (c *PullConsumer) Subscribe(subject string, handler Handler) error {
	sub, err := c.js.PullSubscribe(subject, c.durable, nats.ManualAck())
	if err != nil {
		return fmt.Errorf("failed to subscribe to JetStream consumer %s: %w", c.durable, err)
	}
	c.subs = append(c.subs, sub)

	c.logger.WithFields(map[string]any{
		"subject":  subject,
		"consumer": c.durable,
	}).Info("Subscribed to JetStream consumer")

	c.wg.Add(1)
	go c.run(sub, handler)
	return nil
}

func (c *PullConsumer) run(sub *nats.Subscription, handler Handler) {
	defer c.wg.Done()

	for c.ctx.Err() == nil {
		msgs, err := sub.Fetch(fetchBatch, nats.MaxWait(fetchMaxWait))
		if err != nil {
			if errors.Is(err, nats.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			if c.ctx.Err() != nil {
				return
			}
			c.logger.Error("Failed to fetch messages from JetStream", err)

			select {
			case <-time.After(fetchPause):
			case <-c.ctx.Done():
				return
			}
			continue
		}

		for _, msg := range msgs {
			if err := handler(msg.Data); err != nil {
				c.logger.Errorf(err, "Failed to handle event on %s", msg.Subject)

				// Redelivered with backoff until MaxDeliveryAttempts
				if nakErr := msg.Nak(); nakErr != nil {
					c.logger.Error("Failed to NAK message", nakErr)
				}
				continue
			}

			if ackErr := msg.Ack(); ackErr != nil {
				c.logger.Error("Failed to ACK message", ackErr)
			}
		}
	}
}

// Close stops fetching, waits for the in-flight batch and unsubscribes
func (c *PullConsumer) Close() {
	c.cancel()
	c.wg.Wait()

	for _, sub := range c.subs {
		if err := sub.Unsubscribe(); err != nil {
			c.logger.Error("Failed to unsubscribe from JetStream", err)
		}
	}
	c.subs = nil
}
