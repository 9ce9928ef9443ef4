package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Pesokrava/movie_store/internal/domain"
	"github.com/Pesokrava/movie_store/internal/pkg/logger"
	"github.com/Pesokrava/movie_store/internal/pkg/metrics"
)

// Subject carries order events
const Subject = "orders.events"

// EventCreated is published after a successful checkout
const EventCreated = "order.created"

const (
	maxCityLength  = 100
	publishTimeout = 5 * time.Second
)

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// Event represents an order event
type Event struct {
	EventType string        `json:"event_type"`
	Timestamp time.Time     `json:"timestamp"`
	Order     *domain.Order `json:"order"`
}

// Service handles checkout and order history
type Service struct {
	repo      domain.OrderRepository
	publisher EventPublisher
	logger    *logger.Logger
}

// NewService creates a new order service
func NewService(repo domain.OrderRepository, publisher EventPublisher, log *logger.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    log,
	}
}

// Checkout turns the cart into an order for userID. Prices are captured from the catalog
// at the moment of purchase. Entries whose movie no longer exists are skipped and
// reported in the result. The cart is cleared only when an order was created; the caller
// persists it.
func (s *Service) Checkout(ctx context.Context, userID uuid.UUID, cart *domain.Cart, region, city string) (*domain.CheckoutResult, error) {
	region, err := domain.NormalizeRegion(region)
	if err != nil {
		return nil, err
	}

	city = strings.TrimSpace(city)
	if utf8.RuneCountInString(city) > maxCityLength {
		return nil, fmt.Errorf("%w: city must be at most %d characters", domain.ErrInvalidInput, maxCityLength)
	}

	var skipped []string
	lines := make([]domain.OrderLine, 0, len(cart.Entries))
	for _, e := range cart.Entries {
		id, err := uuid.Parse(e.MovieID)
		if err != nil || e.Quantity < 1 || e.Quantity > domain.MaxQuantity {
			skipped = append(skipped, e.MovieID)
			continue
		}
		lines = append(lines, domain.OrderLine{MovieID: id, Quantity: e.Quantity})
	}

	if len(lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	order := &domain.Order{
		UserID: userID,
		Region: region,
		City:   city,
	}

	missing, err := s.repo.CreateWithItems(ctx, order, lines)
	if err != nil {
		if !errors.Is(err, domain.ErrEmptyCart) {
			s.logger.Error("Failed to create order", err)
		}
		return nil, err
	}

	for _, id := range missing {
		skipped = append(skipped, id.String())
	}

	cart.Clear()

	if len(skipped) > 0 {
		s.logger.WithFields(map[string]interface{}{
			"order_id": order.ID,
			"skipped":  skipped,
		}).Warn("Checkout skipped cart entries for unavailable movies")
	}

	total, _ := order.TotalAmount.Float64()
	metrics.RecordOrder(order.Region, total, len(skipped))
	s.publishEvent(order)

	s.logger.WithFields(map[string]interface{}{
		"order_id": order.ID,
		"user_id":  userID,
		"items":    len(order.Items),
		"total":    order.TotalAmount.StringFixed(2),
		"region":   order.Region,
	}).Info("Order created successfully")

	if skipped == nil {
		skipped = []string{}
	}
	return &domain.CheckoutResult{Order: order, Skipped: skipped}, nil
}

// ListByUser returns the user's orders, newest first
func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list orders", err)
		return nil, err
	}
	return orders, nil
}

// GetByID returns one of the user's orders. Orders of other users are reported as not found.
func (s *Service) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Debugf("Order not found: %s", id)
		} else {
			s.logger.Error("Failed to get order", err)
		}
		return nil, err
	}

	if order.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

func (s *Service) publishEvent(order *domain.Order) {
	data, err := json.Marshal(Event{
		EventType: EventCreated,
		Timestamp: time.Now(),
		Order:     order,
	})
	if err != nil {
		s.logger.Errorf(err, "Failed to marshal event for order %s", order.ID)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := s.publisher.Publish(ctx, Subject, data); err != nil {
			s.logger.Errorf(err, "Failed to publish event for order %s", order.ID)
		}
	}()
}
