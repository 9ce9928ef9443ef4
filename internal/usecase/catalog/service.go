package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Pesokrava/movie_store/internal/domain"
	"github.com/Pesokrava/movie_store/internal/pkg/logger"
	validatorpkg "github.com/Pesokrava/movie_store/internal/pkg/validator"
)

const (
	defaultLimit    = 20
	maxLimit        = 100
	defaultTrending = 3
)

// RatingCache caches computed movie ratings
type RatingCache interface {
	GetMovieRating(ctx context.Context, movieID uuid.UUID) (float64, error)
	SetMovieRating(ctx context.Context, movieID uuid.UUID, rating float64) error
	InvalidateMovie(ctx context.Context, movieID uuid.UUID) error
}

// Service handles catalog business logic
type Service struct {
	repo          domain.MovieRepository
	cache         RatingCache
	validate      *validator.Validate
	logger        *logger.Logger
	trendingLimit int
}

// NewService creates a new catalog service. trendingLimit is the default number of
// movies per region in the trending report.
func NewService(repo domain.MovieRepository, cache RatingCache, log *logger.Logger, trendingLimit int) *Service {
	if trendingLimit <= 0 {
		trendingLimit = defaultTrending
	}
	return &Service{
		repo:          repo,
		cache:         cache,
		validate:      validatorpkg.Get(),
		logger:        log,
		trendingLimit: trendingLimit,
	}
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// List returns movies newest first, filtered by title substring and, for a known viewer,
// without the movies they have hidden. uuid.Nil means an anonymous viewer.
func (s *Service) List(ctx context.Context, search string, viewer uuid.UUID, limit, offset int) ([]*domain.Movie, int, error) {
	limit, offset = clampPage(limit, offset)

	filter := domain.MovieFilter{
		Search:           strings.TrimSpace(search),
		ExcludeHiddenFor: viewer,
		Limit:            limit,
		Offset:           offset,
	}

	movies, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list movies", err)
		return nil, 0, err
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to count movies", err)
		return nil, 0, err
	}

	return movies, total, nil
}

// GetByID retrieves a movie by ID
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*domain.Movie, error) {
	movie, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Debugf("Movie not found: %s", id)
		} else {
			s.logger.Error("Failed to get movie", err)
		}
		return nil, err
	}

	return movie, nil
}

// AverageRating returns the mean review rating of an existing movie, rounded to one decimal
func (s *Service) AverageRating(ctx context.Context, id uuid.UUID) (float64, error) {
	if rating, err := s.cache.GetMovieRating(ctx, id); err == nil {
		return rating, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		s.logger.Warnf("Failed to read cached rating for movie %s: %v", id, err)
	}

	if _, err := s.GetByID(ctx, id); err != nil {
		return 0, err
	}

	rating, err := s.repo.AverageRating(ctx, id)
	if err != nil {
		s.logger.Error("Failed to compute average rating", err)
		return 0, err
	}

	if err := s.cache.SetMovieRating(ctx, id, rating); err != nil {
		s.logger.Warnf("Failed to cache rating for movie %s: %v", id, err)
	}

	return rating, nil
}

// RegionalPurchases sums purchased quantities of a movie. An empty region counts every region;
// otherwise the region must be one of domain.Regions or domain.UnknownRegion.
func (s *Service) RegionalPurchases(ctx context.Context, id uuid.UUID, region string) (int, error) {
	region = strings.TrimSpace(region)
	switch {
	case region == "":
	case strings.EqualFold(region, domain.UnknownRegion):
		region = domain.UnknownRegion
	default:
		normalized, err := domain.NormalizeRegion(region)
		if err != nil {
			return 0, err
		}
		region = normalized
	}

	if _, err := s.GetByID(ctx, id); err != nil {
		return 0, err
	}

	total, err := s.repo.PurchasedQuantity(ctx, id, region)
	if err != nil {
		s.logger.Error("Failed to sum purchases", err)
		return 0, err
	}

	return total, nil
}

// Trending builds the per-region report of the most purchased movies. Regions without
// purchases report an empty movie list.
func (s *Service) Trending(ctx context.Context, limit int) ([]*domain.RegionalTrending, error) {
	if limit <= 0 || limit > maxLimit {
		limit = s.trendingLimit
	}

	report := make([]*domain.RegionalTrending, 0, len(domain.Regions))
	for _, region := range domain.Regions {
		movies, err := s.repo.TrendingInRegion(ctx, region.Name, limit)
		if err != nil {
			s.logger.Error("Failed to load trending movies", err)
			return nil, err
		}

		orders, err := s.repo.CountOrdersInRegion(ctx, region.Name)
		if err != nil {
			s.logger.Error("Failed to count regional orders", err)
			return nil, err
		}

		if movies == nil {
			movies = []*domain.TrendingMovie{}
		}
		report = append(report, &domain.RegionalTrending{
			Region:      region,
			Movies:      movies,
			TotalOrders: orders,
		})
	}

	return report, nil
}

// Create adds a movie to the catalog
func (s *Service) Create(ctx context.Context, movie *domain.Movie) error {
	if err := s.validate.Struct(movie); err != nil {
		s.logger.Error("Movie validation failed", err)
		return domain.ErrInvalidInput
	}

	if err := s.repo.Create(ctx, movie); err != nil {
		s.logger.Error("Failed to create movie", err)
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"movie_id": movie.ID,
		"title":    movie.Title,
	}).Info("Movie created successfully")

	return nil
}

// Update updates an existing movie; a stale version yields domain.ErrConflict
func (s *Service) Update(ctx context.Context, movie *domain.Movie) error {
	if err := s.validate.Struct(movie); err != nil {
		s.logger.Error("Movie validation failed", err)
		return domain.ErrInvalidInput
	}

	if err := s.repo.Update(ctx, movie); err != nil {
		s.logger.Error("Failed to update movie", err)
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"movie_id": movie.ID,
		"version":  movie.Version,
	}).Info("Movie updated successfully")

	return nil
}

// Delete soft-deletes a movie
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete movie", err)
		return err
	}

	if err := s.cache.InvalidateMovie(ctx, id); err != nil {
		s.logger.Warnf("Failed to invalidate cache for movie %s: %v", id, err)
	}

	s.logger.WithFields(map[string]interface{}{
		"movie_id": id,
	}).Info("Movie deleted successfully")

	return nil
}
