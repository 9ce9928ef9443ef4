package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Pesokrava/movie_store/internal/domain"
)

// SessionStore keeps carts in Redis, one key per session, expiring after ttl of inactivity
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore creates a Redis-backed session store
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("session:%s:cart", sessionID)
}

// LoadCart returns the stored cart or an empty one
func (s *SessionStore) LoadCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	data, err := s.client.Get(ctx, cartKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.NewCart(), nil
		}
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	return decodeCart(data)
}

// SaveCart stores the cart and refreshes its expiry
func (s *SessionStore) SaveCart(ctx context.Context, sessionID string, cart *domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	if err := s.client.Set(ctx, cartKey(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// decodeCart parses a stored cart, dropping entries a valid cart can never hold
func decodeCart(data []byte) (*domain.Cart, error) {
	var stored domain.Cart
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}

	cart := domain.NewCart()
	for _, e := range stored.Entries {
		if e.MovieID == "" || !cart.CanAdd(e.MovieID, e.Quantity) {
			continue
		}
		cart.Add(e.MovieID, e.Quantity)
	}
	return cart, nil
}
