package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Pesokrava/movie_store/internal/pkg/logger"
)

const (
	// Debounce window - collect events for same movie within this duration
	debounceWindow = 1 * time.Second

	// Retry configuration
	maxRetries     = 3
	initialBackoff = 100 * time.Millisecond
	attemptTimeout = 5 * time.Second
)

// ReviewEvent is the part of a review event the worker needs
type ReviewEvent struct {
	Type      string    `json:"event_type"`
	MovieID   uuid.UUID `json:"movie_id"`
	Timestamp time.Time `json:"timestamp"`
}

// RatingWorker processes review events and updates movie ratings asynchronously
type RatingWorker struct {
	calculator *Calculator
	logger     *logger.Logger

	// Debouncing state
	mu             sync.Mutex
	pendingUpdates map[uuid.UUID]*pendingUpdate
	shutdownCh     chan struct{}
	shutdownOnce   sync.Once
	wg             sync.WaitGroup
	ctx            context.Context
	cancel         context.CancelFunc
}

type pendingUpdate struct {
	movieID   uuid.UUID
	timestamp time.Time
	timer     *time.Timer
}

// NewRatingWorker creates a new rating worker
func NewRatingWorker(calculator *Calculator, logger *logger.Logger) *RatingWorker {
	ctx, cancel := context.WithCancel(context.Background())

	return &RatingWorker{
		calculator:     calculator,
		logger:         logger,
		pendingUpdates: make(map[uuid.UUID]*pendingUpdate),
		shutdownCh:     make(chan struct{}),
		ctx:            ctx,
		cancel:         cancel,
	}
}

// HandleEvent processes a review event. Malformed events return an error so the broker
// can drop them after its redelivery limit.
func (w *RatingWorker) HandleEvent(data []byte) error {
	var event ReviewEvent
	if err := json.Unmarshal(data, &event); err != nil {
		w.logger.Error("Failed to unmarshal review event", err)
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}

	if event.MovieID == uuid.Nil {
		w.logger.Warnf("Ignoring %q event without movie id", event.Type)
		return nil
	}

	w.logger.WithFields(map[string]any{
		"type":      event.Type,
		"movie_id":  event.MovieID.String(),
		"timestamp": event.Timestamp,
	}).Info("Received review event")

	w.scheduleUpdate(event.MovieID, event.Timestamp)

	return nil
}

// scheduleUpdate debounces events: several events for the same movie within the
// window result in a single recalculation
func (w *RatingWorker) scheduleUpdate(movieID uuid.UUID, timestamp time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	select {
	case <-w.shutdownCh:
		w.logger.Info("Worker shutting down, ignoring new event")
		return
	default:
	}

	if existing, found := w.pendingUpdates[movieID]; found {
		if timestamp.Before(existing.timestamp) {
			w.logger.WithFields(map[string]any{
				"movie_id":    movieID.String(),
				"existing_ts": existing.timestamp,
				"event_ts":    timestamp,
			}).Debug("Ignoring stale event")
			return
		}

		// A timer that already fired owns its WaitGroup slot until processUpdate returns
		if existing.timer.Stop() {
			w.wg.Done()
		}
		w.logger.WithFields(map[string]any{
			"movie_id": movieID.String(),
		}).Debug("Debouncing: resetting timer for movie")
	}

	update := &pendingUpdate{
		movieID:   movieID,
		timestamp: timestamp,
	}
	w.wg.Add(1)
	update.timer = time.AfterFunc(debounceWindow, func() {
		w.processUpdate(update)
	})
	w.pendingUpdates[movieID] = update
}

// processUpdate executes the rating calculation with retry logic
func (w *RatingWorker) processUpdate(update *pendingUpdate) {
	defer w.wg.Done()

	w.mu.Lock()
	if w.pendingUpdates[update.movieID] == update {
		delete(w.pendingUpdates, update.movieID)
	}
	w.mu.Unlock()

	movieID := update.movieID
	w.logger.WithFields(map[string]any{
		"movie_id": movieID.String(),
	}).Info("Processing rating update")

	var lastErr error
	backoff := initialBackoff

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			w.logger.WithFields(map[string]any{
				"movie_id":   movieID.String(),
				"attempt":    attempt + 1,
				"backoff_ms": backoff.Milliseconds(),
			}).Warn("Retrying rating update")

			select {
			case <-time.After(backoff):
			case <-w.ctx.Done():
				w.logger.Info("Worker context cancelled, aborting retry")
				return
			}

			backoff *= 2
		}

		ctx, cancel := context.WithTimeout(w.ctx, attemptTimeout)
		err := w.calculator.CalculateAndUpdate(ctx, movieID)
		cancel()

		if err == nil {
			return
		}

		lastErr = err
		w.logger.WithFields(map[string]any{
			"movie_id": movieID.String(),
			"attempt":  attempt + 1,
		}).Error("Failed to update rating", err)

		if w.ctx.Err() != nil {
			return
		}
	}

	w.logger.WithFields(map[string]any{
		"movie_id":    movieID.String(),
		"max_retries": maxRetries,
	}).Error("Rating update failed after all retries", lastErr)
}

// Shutdown cancels pending timers and waits for in-flight updates to complete
func (w *RatingWorker) Shutdown(ctx context.Context) error {
	w.logger.Info("Shutting down rating worker...")

	w.mu.Lock()
	w.shutdownOnce.Do(func() { close(w.shutdownCh) })
	w.cancel()

	cancelled := 0
	for _, update := range w.pendingUpdates {
		if update.timer.Stop() {
			w.wg.Done()
			cancelled++
		}
	}
	w.pendingUpdates = make(map[uuid.UUID]*pendingUpdate)
	w.mu.Unlock()

	w.logger.WithFields(map[string]any{
		"cancelled_updates": cancelled,
	}).Info("Cancelled pending updates")

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("All in-flight updates completed")
		return nil
	case <-ctx.Done():
		w.logger.Warn("Shutdown timeout reached, forcing exit")
		return ctx.Err()
	}
}

// GetPendingCount returns the number of pending updates (used for monitoring/testing)
func (w *RatingWorker) GetPendingCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pendingUpdates)
}
