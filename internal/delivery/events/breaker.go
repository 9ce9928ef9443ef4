package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/Pesokrava/movie_store/internal/pkg/logger"
	"github.com/Pesokrava/movie_store/internal/pkg/metrics"
)

// Publish outcomes recorded in metrics
const (
	resultPublished = "published"
	resultFailed    = "failed"
	resultRejected  = "rejected"
)

// ErrBrokerUnavailable is returned while the breaker rejects publishes
var ErrBrokerUnavailable = errors.New("event broker unavailable")

// BreakerSettings configures the publish circuit breaker
type BreakerSettings struct {
	Name             string
	FailureThreshold uint32
	OpenTimeout      time.Duration
	HalfOpenRequests uint32
	// PublishTimeout bounds a single publish; zero keeps the caller's deadline
	PublishTimeout   time.Duration
}

// BreakerPublisher stops calling a failing broker until it had time to recover
type BreakerPublisher struct {
	next    Publisher
	cb      *gobreaker.CircuitBreaker[interface{}]
	timeout time.Duration
	logger  *logger.Logger
}

// NewBreakerPublisher wraps next with a circuit breaker. The breaker opens after
// FailureThreshold consecutive failures and lets HalfOpenRequests probes through
// once OpenTimeout has passed.
func NewBreakerPublisher(next Publisher, s BreakerSettings, log *logger.Logger) *BreakerPublisher {
	if s.FailureThreshold == 0 {
		s.FailureThreshold = 5
	}
	if s.HalfOpenRequests == 0 {
		s.HalfOpenRequests = 1
	}

	settings := gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: s.HalfOpenRequests,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.SetBreakerState(name, int(to))
			log.WithFields(map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Event publisher circuit breaker changed state")
		},
	}
	metrics.SetBreakerState(s.Name, int(gobreaker.StateClosed))

	return &BreakerPublisher{
		next:    next,
		cb:      gobreaker.NewCircuitBreaker[interface{}](settings),
		timeout: s.PublishTimeout,
		logger:  log,
	}
}

// Publish forwards to the wrapped publisher unless the breaker is open
func (b *BreakerPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.Publish(ctx, subject, data)
	})

	switch {
	case err == nil:
		metrics.RecordEventPublish(subject, resultPublished)
		return nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordEventPublish(subject, resultRejected)
		return fmt.Errorf("publish to %s: %w", subject, ErrBrokerUnavailable)
	default:
		metrics.RecordEventPublish(subject, resultFailed)
		return err
	}
}

// State reports the current breaker state
func (b *BreakerPublisher) State() gobreaker.State {
	return b.cb.State()
}

// Close closes the wrapped publisher
func (b *BreakerPublisher) Close() {
	b.next.Close()
}
