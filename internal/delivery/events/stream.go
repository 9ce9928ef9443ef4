package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Pesokrava/movie_store/internal/pkg/logger"
)

// Subjects carrying domain events
const (
	ReviewSubject = "reviews.events"
	OrderSubject  = "orders.events"
)

const (
	// RatingConsumer is the durable consumer of the rating worker
	RatingConsumer = "rating-worker"

	// MaxDeliveryAttempts is the max number of delivery attempts before discarding.
	// Rating recalculation reads the whole review set, so the next review event repairs a dropped one.
	MaxDeliveryAttempts = 3

	// AckWait is how long to wait for acknowledgment before redelivery
	AckWait = 30 * time.Second
)

// StreamSpec describes one JetStream stream
type StreamSpec struct {
	Name        string
	Subject     string
	Retention   nats.RetentionPolicy
	MaxAge      time.Duration
	Description string
}

var (
	// ReviewStream feeds the rating worker; acked messages are removed
	ReviewStream = StreamSpec{
		Name:        "REVIEWS",
		Subject:     ReviewSubject,
		Retention:   nats.WorkQueuePolicy,
		MaxAge:      24 * time.Hour,
		Description: "Review events stream for rating calculation",
	}

	// OrderStream keeps order events for a week for downstream readers
	OrderStream = StreamSpec{
		Name:        "ORDERS",
		Subject:     OrderSubject,
		Retention:   nats.LimitsPolicy,
		MaxAge:      7 * 24 * time.Hour,
		Description: "Order events stream",
	}
)

// StreamConfig ensures streams and consumers exist in JetStream
type StreamConfig struct {
	js     nats.JetStreamContext
	logger *logger.Logger
}

// NewStreamConfig creates a new stream configuration helper
func NewStreamConfig(js nats.JetStreamContext, log *logger.Logger) *StreamConfig {
	return &StreamConfig{
		js:     js,
		logger: log,
	}
}

// generateExponentialBackoff creates a backoff schedule for NATS redeliveries: 1s, 2s, 4s, ...
// MaxDeliver N requires N-1 backoff durations (first delivery is immediate)
func generateExponentialBackoff(maxDeliveryAttempts int) []time.Duration {
	if maxDeliveryAttempts <= 1 {
		return nil
	}

	backoff := make([]time.Duration, maxDeliveryAttempts-1)
	for i := range backoff {
		backoff[i] = time.Duration(1<<i) * time.Second
	}
	return backoff
}

// EnsureStreams creates every missing stream
func (s *StreamConfig) EnsureStreams(specs ...StreamSpec) error {
	for _, spec := range specs {
		if err := s.EnsureStream(spec); err != nil {
			return err
		}
	}
	return nil
}

// EnsureStream creates the stream when it does not exist yet. Streams are file backed,
// single replica, and drop the oldest messages once MaxAge is reached.
func (s *StreamConfig) EnsureStream(spec StreamSpec) error {
	stream, err := s.js.StreamInfo(spec.Name)

	if errors.Is(err, nats.ErrStreamNotFound) {
		s.logger.WithFields(map[string]any{
			"stream":   spec.Name,
			"subjects": spec.Subject,
		}).Info("Creating JetStream stream")

		_, err = s.js.AddStream(&nats.StreamConfig{
			Name:        spec.Name,
			Subjects:    []string{spec.Subject},
			Retention:   spec.Retention,
			Storage:     nats.FileStorage,
			Replicas:    1,
			MaxAge:      spec.MaxAge,
			Discard:     nats.DiscardOld,
			Description: spec.Description,
		})
		if err != nil {
			return fmt.Errorf("failed to create stream %s: %w", spec.Name, err)
		}

		s.logger.Infof("JetStream stream %s created successfully", spec.Name)
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to get stream info for %s: %w", spec.Name, err)
	}

	s.logger.WithFields(map[string]any{
		"stream":   stream.Config.Name,
		"messages": stream.State.Msgs,
		"bytes":    stream.State.Bytes,
	}).Info("JetStream stream already exists")

	return nil
}

// EnsureConsumer creates the durable consumer on the stream when missing.
// Messages need an explicit ack within AckWait and are retried with exponential
// backoff until MaxDeliveryAttempts, then discarded.
func (s *StreamConfig) EnsureConsumer(spec StreamSpec, durable string) error {
	consumerInfo, err := s.js.ConsumerInfo(spec.Name, durable)

	if errors.Is(err, nats.ErrConsumerNotFound) {
		s.logger.WithFields(map[string]any{
			"stream":   spec.Name,
			"consumer": durable,
		}).Info("Creating JetStream consumer")

		_, err = s.js.AddConsumer(spec.Name, &nats.ConsumerConfig{
			Durable:       durable,
			AckPolicy:     nats.AckExplicitPolicy,
			AckWait:       AckWait,
			MaxDeliver:    MaxDeliveryAttempts,
			FilterSubject: spec.Subject,
			BackOff:       generateExponentialBackoff(MaxDeliveryAttempts),
			Description:   fmt.Sprintf("%s consumer for %s", durable, spec.Subject),
		})
		if err != nil {
			return fmt.Errorf("failed to create consumer %s: %w", durable, err)
		}

		s.logger.Infof("JetStream consumer %s created successfully", durable)
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to get consumer info for %s: %w", durable, err)
	}

	s.logger.WithFields(map[string]any{
		"consumer":    consumerInfo.Name,
		"pending":     consumerInfo.NumPending,
		"redelivered": consumerInfo.NumRedelivered,
		"ack_pending": consumerInfo.NumAckPending,
	}).Info("JetStream consumer already exists")

	return nil
}
