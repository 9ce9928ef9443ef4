package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/Pesokrava/movie_store/internal/domain"
)

// Cache is a mock of the rating and review list caches
type Cache struct {
	mock.Mock
}

func (m *Cache) GetMovieRating(ctx context.Context, movieID uuid.UUID) (float64, error) {
	args := m.Called(ctx, movieID)
	return args.Get(0).(float64), args.Error(1)
}

func (m *Cache) SetMovieRating(ctx context.Context, movieID uuid.UUID, rating float64) error {
	args := m.Called(ctx, movieID, rating)
	return args.Error(0)
}

func (m *Cache) GetReviewsList(ctx context.Context, movieID uuid.UUID, limit, offset int) ([]*domain.Review, error) {
	args := m.Called(ctx, movieID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Review), args.Error(1)
}

func (m *Cache) SetReviewsList(ctx context.Context, movieID uuid.UUID, limit, offset int, reviews []*domain.Review) error {
	args := m.Called(ctx, movieID, limit, offset, reviews)
	return args.Error(0)
}

func (m *Cache) InvalidateReviewsList(ctx context.Context, movieID uuid.UUID) error {
	args := m.Called(ctx, movieID)
	return args.Error(0)
}

func (m *Cache) InvalidateMovie(ctx context.Context, movieID uuid.UUID) error {
	args := m.Called(ctx, movieID)
	return args.Error(0)
}

// EventPublisher is a mock event publisher
type EventPublisher struct {
	mock.Mock
}

func (m *EventPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

// SessionStore is an in-memory domain.SessionStore
type SessionStore struct {
	mu    sync.Mutex
	carts map[string]*domain.Cart
	Err   error
}

// NewSessionStore returns an empty in-memory session store
func NewSessionStore() *SessionStore {
	return &SessionStore{carts: make(map[string]*domain.Cart)}
}

func (s *SessionStore) LoadCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	cart, ok := s.carts[sessionID]
	if !ok {
		return domain.NewCart(), nil
	}
	copied := domain.NewCart()
	copied.Entries = append(copied.Entries, cart.Entries...)
	return copied, nil
}

func (s *SessionStore) SaveCart(ctx context.Context, sessionID string, cart *domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	copied := domain.NewCart()
	copied.Entries = append(copied.Entries, cart.Entries...)
	s.carts[sessionID] = copied
	return nil
}
