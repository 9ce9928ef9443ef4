// Package mocks holds testify mocks of the domain repositories and service
// dependencies, shared by usecase and handler tests.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/Pesokrava/movie_store/internal/domain"
)

// MovieRepository is a mock implementation of domain.MovieRepository
type MovieRepository struct {
	mock.Mock
}

func (m *MovieRepository) Create(ctx context.Context, movie *domain.Movie) error {
	args := m.Called(ctx, movie)
	return args.Error(0)
}

func (m *MovieRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Movie, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Movie), args.Error(1)
}

func (m *MovieRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Movie, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Movie), args.Error(1)
}

func (m *MovieRepository) List(ctx context.Context, filter domain.MovieFilter) ([]*domain.Movie, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Movie), args.Error(1)
}

func (m *MovieRepository) Count(ctx context.Context, filter domain.MovieFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *MovieRepository) Update(ctx context.Context, movie *domain.Movie) error {
	args := m.Called(ctx, movie)
	return args.Error(0)
}

func (m *MovieRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MovieRepository) AverageRating(ctx context.Context, id uuid.UUID) (float64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MovieRepository) PurchasedQuantity(ctx context.Context, id uuid.UUID, region string) (int, error) {
	args := m.Called(ctx, id, region)
	return args.Int(0), args.Error(1)
}

func (m *MovieRepository) TrendingInRegion(ctx context.Context, region string, limit int) ([]*domain.TrendingMovie, error) {
	args := m.Called(ctx, region, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.TrendingMovie), args.Error(1)
}

func (m *MovieRepository) CountOrdersInRegion(ctx context.Context, region string) (int, error) {
	args := m.Called(ctx, region)
	return args.Int(0), args.Error(1)
}

// ReviewRepository is a mock implementation of domain.ReviewRepository
type ReviewRepository struct {
	mock.Mock
}

func (m *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *ReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *ReviewRepository) GetByUserAndMovie(ctx context.Context, userID, movieID uuid.UUID) (*domain.Review, error) {
	args := m.Called(ctx, userID, movieID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *ReviewRepository) GetByMovieID(ctx context.Context, movieID uuid.UUID, limit, offset int) ([]*domain.Review, error) {
	args := m.Called(ctx, movieID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Review), args.Error(1)
}

func (m *ReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *ReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ReviewRepository) CountByMovieID(ctx context.Context, movieID uuid.UUID) (int, error) {
	args := m.Called(ctx, movieID)
	return args.Int(0), args.Error(1)
}

func (m *ReviewRepository) ToggleLike(ctx context.Context, userID, reviewID uuid.UUID) (*domain.LikeResult, error) {
	args := m.Called(ctx, userID, reviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LikeResult), args.Error(1)
}

// OrderRepository is a mock implementation of domain.OrderRepository
type OrderRepository struct {
	mock.Mock
}

func (m *OrderRepository) CreateWithItems(ctx context.Context, order *domain.Order, lines []domain.OrderLine) ([]uuid.UUID, error) {
	args := m.Called(ctx, order, lines)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *OrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Order), args.Error(1)
}

// PetitionRepository is a mock implementation of domain.PetitionRepository
type PetitionRepository struct {
	mock.Mock
}

func (m *PetitionRepository) Create(ctx context.Context, p *domain.MoviePetition) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *PetitionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.MoviePetition, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MoviePetition), args.Error(1)
}

func (m *PetitionRepository) List(ctx context.Context, limit, offset int) ([]*domain.MoviePetition, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.MoviePetition), args.Error(1)
}

func (m *PetitionRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *PetitionRepository) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]*domain.MoviePetition, error) {
	args := m.Called(ctx, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.MoviePetition), args.Error(1)
}

func (m *PetitionRepository) Tally(ctx context.Context, petitionID uuid.UUID) (domain.VoteTally, error) {
	args := m.Called(ctx, petitionID)
	return args.Get(0).(domain.VoteTally), args.Error(1)
}

func (m *PetitionRepository) GetVote(ctx context.Context, petitionID, userID uuid.UUID) (*domain.PetitionVote, error) {
	args := m.Called(ctx, petitionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PetitionVote), args.Error(1)
}

func (m *PetitionRepository) UpsertVote(ctx context.Context, petitionID, userID uuid.UUID, choice string) (domain.VoteOutcome, error) {
	args := m.Called(ctx, petitionID, userID, choice)
	return args.Get(0).(domain.VoteOutcome), args.Error(1)
}

// HiddenMovieRepository is a mock implementation of domain.HiddenMovieRepository
type HiddenMovieRepository struct {
	mock.Mock
}

func (m *HiddenMovieRepository) Hide(ctx context.Context, userID, movieID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, movieID)
	return args.Bool(0), args.Error(1)
}

func (m *HiddenMovieRepository) Unhide(ctx context.Context, userID, movieID uuid.UUID) error {
	args := m.Called(ctx, userID, movieID)
	return args.Error(0)
}

func (m *HiddenMovieRepository) Toggle(ctx context.Context, userID, movieID uuid.UUID) (domain.VisibilityChange, error) {
	args := m.Called(ctx, userID, movieID)
	return args.Get(0).(domain.VisibilityChange), args.Error(1)
}

func (m *HiddenMovieRepository) ListMovies(ctx context.Context, userID uuid.UUID) ([]*domain.Movie, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Movie), args.Error(1)
}
