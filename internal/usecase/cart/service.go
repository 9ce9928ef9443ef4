package cart

import (
	"context"
	"iter"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Pesokrava/movie_store/internal/domain"
	"github.com/Pesokrava/movie_store/internal/pkg/logger"
	"github.com/Pesokrava/movie_store/internal/pkg/metrics"
)

// ParseQuantity reads a requested quantity. Empty input means 1; anything outside
// 1..domain.MaxQuantity is domain.ErrInvalidQuantity.
func ParseQuantity(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > domain.MaxQuantity {
		return 0, domain.ErrInvalidQuantity
	}
	return n, nil
}

// Service manages session carts
type Service struct {
	movies domain.MovieRepository
	store  domain.SessionStore
	logger *logger.Logger
}

// NewService creates a new cart service
func NewService(movies domain.MovieRepository, store domain.SessionStore, log *logger.Logger) *Service {
	return &Service{
		movies: movies,
		store:  store,
		logger: log,
	}
}

// Load returns the session's cart
func (s *Service) Load(ctx context.Context, sessionID string) (*domain.Cart, error) {
	cart, err := s.store.LoadCart(ctx, sessionID)
	if err != nil {
		s.logger.Error("Failed to load cart", err)
		return nil, err
	}
	return cart, nil
}

// Save persists the session's cart
func (s *Service) Save(ctx context.Context, sessionID string, cart *domain.Cart) error {
	if err := s.store.SaveCart(ctx, sessionID, cart); err != nil {
		s.logger.Error("Failed to save cart", err)
		return err
	}
	return nil
}

// Add puts quantity copies of an existing movie into the cart. The entry may not grow
// beyond domain.MaxQuantity. On any error the cart is left unchanged.
func (s *Service) Add(ctx context.Context, cart *domain.Cart, movieID uuid.UUID, quantity int) error {
	if !cart.CanAdd(movieID.String(), quantity) {
		return domain.ErrInvalidQuantity
	}

	if _, err := s.movies.GetByID(ctx, movieID); err != nil {
		return err
	}

	cart.Add(movieID.String(), quantity)
	metrics.RecordCartOperation("add")

	s.logger.WithFields(map[string]interface{}{
		"movie_id": movieID,
		"quantity": cart.Quantity(movieID.String()),
	}).Debug("Movie added to cart")

	return nil
}

// AddToSession loads the session cart, adds the movie and saves the cart back
func (s *Service) AddToSession(ctx context.Context, sessionID string, movieID uuid.UUID, quantity int) (*domain.Cart, error) {
	cart, err := s.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := s.Add(ctx, cart, movieID, quantity); err != nil {
		return nil, err
	}

	if err := s.Save(ctx, sessionID, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Clear empties the cart
func (s *Service) Clear(cart *domain.Cart) {
	cart.Clear()
	metrics.RecordCartOperation("clear")
}

// ClearSession empties the session's cart
func (s *Service) ClearSession(ctx context.Context, sessionID string) error {
	cart := domain.NewCart()
	s.Clear(cart)
	return s.Save(ctx, sessionID, cart)
}

// View resolves the cart against the catalog with one query and returns the lines of
// entries whose movie still exists, in insertion order. The sequence can be ranged over
// any number of times; entries with unknown or malformed ids are skipped.
func (s *Service) View(ctx context.Context, cart *domain.Cart) (iter.Seq[domain.CartLine], error) {
	entries := append([]domain.CartEntry(nil), cart.Entries...)

	ids := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		if id, err := uuid.Parse(e.MovieID); err == nil {
			ids = append(ids, id)
		}
	}

	movies, err := s.movies.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("Failed to resolve cart movies", err)
		return nil, err
	}

	byID := make(map[string]*domain.Movie, len(movies))
	for _, m := range movies {
		byID[m.ID.String()] = m
	}

	return func(yield func(domain.CartLine) bool) {
		for _, e := range entries {
			movie, ok := byID[e.MovieID]
			if !ok {
				continue
			}
			line := domain.CartLine{
				Movie:     movie,
				Quantity:  e.Quantity,
				LineTotal: movie.Price.Mul(decimal.NewFromInt(int64(e.Quantity))),
			}
			if !yield(line) {
				return
			}
		}
	}, nil
}

// Total sums the line totals of the cart's valid entries
func (s *Service) Total(ctx context.Context, cart *domain.Cart) (decimal.Decimal, error) {
	lines, err := s.View(ctx, cart)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for line := range lines {
		total = total.Add(line.LineTotal)
	}
	return total, nil
}

// Summary collects the cart's valid lines with their total and item count
func (s *Service) Summary(ctx context.Context, cart *domain.Cart) (*domain.CartSummary, error) {
	lines, err := s.View(ctx, cart)
	if err != nil {
		return nil, err
	}

	summary := &domain.CartSummary{Lines: []domain.CartLine{}, Total: decimal.Zero}
	for line := range lines {
		summary.Lines = append(summary.Lines, line)
		summary.Total = summary.Total.Add(line.LineTotal)
		summary.ItemCount += line.Quantity
	}
	return summary, nil
}
