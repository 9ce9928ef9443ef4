package review

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Pesokrava/movie_store/internal/domain"
	"github.com/Pesokrava/movie_store/internal/pkg/logger"
	validatorpkg "github.com/Pesokrava/movie_store/internal/pkg/validator"
)

// Subject carries review lifecycle events
const Subject = "reviews.events"

// Event types published on Subject
const (
	EventCreated = "review.created"
	EventUpdated = "review.updated"
	EventDeleted = "review.deleted"
)

const publishTimeout = 5 * time.Second

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// ReviewCache caches review pages and ratings per movie
type ReviewCache interface {
	GetReviewsList(ctx context.Context, movieID uuid.UUID, limit, offset int) ([]*domain.Review, error)
	SetReviewsList(ctx context.Context, movieID uuid.UUID, limit, offset int, reviews []*domain.Review) error
	InvalidateReviewsList(ctx context.Context, movieID uuid.UUID) error
	InvalidateMovie(ctx context.Context, movieID uuid.UUID) error
}

// Event represents an event related to a review
type Event struct {
	EventType string         `json:"event_type"`
	Timestamp time.Time      `json:"timestamp"`
	MovieID   uuid.UUID      `json:"movie_id"`
	Review    *domain.Review `json:"review"`
}

// Service handles review business logic with caching and event publishing
type Service struct {
	repo      domain.ReviewRepository
	cache     ReviewCache
	publisher EventPublisher
	validate  *validator.Validate
	logger    *logger.Logger
}

// NewService creates a new review service
func NewService(
	repo domain.ReviewRepository,
	cache ReviewCache,
	publisher EventPublisher,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		validate:  validatorpkg.Get(),
		logger:    log,
	}
}

// Create stores the first review of a user for a movie. A second review for the same
// pair fails with domain.ErrDuplicateReview.
func (s *Service) Create(ctx context.Context, review *domain.Review) error {
	if err := s.validate.Struct(review); err != nil {
		s.logger.Error("Review validation failed", err)
		return domain.ErrInvalidInput
	}

	existing, err := s.repo.GetByUserAndMovie(ctx, review.UserID, review.MovieID)
	switch {
	case err == nil && existing != nil:
		return domain.ErrDuplicateReview
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		s.logger.Error("Failed to check existing review", err)
		return err
	}

	if err := s.repo.Create(ctx, review); err != nil {
		if errors.Is(err, domain.ErrDuplicateReview) {
			s.logger.Debugf("Concurrent duplicate review for movie %s", review.MovieID)
		} else if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("Failed to create review", err)
		}
		return err
	}

	s.invalidate(ctx, review.MovieID)
	s.publishEvent(EventCreated, review)

	s.logger.WithFields(map[string]interface{}{
		"review_id": review.ID,
		"movie_id":  review.MovieID,
		"rating":    review.Rating,
	}).Info("Review created successfully")

	return nil
}

// GetByID retrieves a review by ID
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Debugf("Review not found: %s", id)
		} else {
			s.logger.Error("Failed to get review", err)
		}
		return nil, err
	}

	return review, nil
}

// GetForUser returns the user's own review of a movie, or domain.ErrNotFound
func (s *Service) GetForUser(ctx context.Context, userID, movieID uuid.UUID) (*domain.Review, error) {
	review, err := s.repo.GetByUserAndMovie(ctx, userID, movieID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("Failed to get user review", err)
		}
		return nil, err
	}
	return review, nil
}

// ListByMovie retrieves a page of a movie's reviews, newest first, with caching
func (s *Service) ListByMovie(ctx context.Context, movieID uuid.UUID, limit, offset int) ([]*domain.Review, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	reviews, err := s.cache.GetReviewsList(ctx, movieID, limit, offset)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warnf("Failed to read cached reviews for movie %s: %v", movieID, err)
		}
		s.logger.Debugf("Cache miss for movie %s reviews (limit=%d, offset=%d)", movieID, limit, offset)

		reviews, err = s.repo.GetByMovieID(ctx, movieID, limit, offset)
		if err != nil {
			s.logger.Error("Failed to get reviews by movie ID", err)
			return nil, 0, err
		}

		if err := s.cache.SetReviewsList(ctx, movieID, limit, offset, reviews); err != nil {
			s.logger.Warnf("Failed to cache reviews for movie %s (limit=%d, offset=%d): %v", movieID, limit, offset, err)
		}
	}

	total, err := s.repo.CountByMovieID(ctx, movieID)
	if err != nil {
		s.logger.Error("Failed to count reviews", err)
		return nil, 0, err
	}

	return reviews, total, nil
}

// Update changes the content and rating of the actor's own review
func (s *Service) Update(ctx context.Context, actor, id uuid.UUID, content string, rating int) (*domain.Review, error) {
	review, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	review.Content = content
	review.Rating = rating
	if err := s.validate.Struct(review); err != nil {
		s.logger.Error("Review validation failed", err)
		return nil, domain.ErrInvalidInput
	}

	if err := s.repo.Update(ctx, review); err != nil {
		s.logger.Error("Failed to update review", err)
		return nil, err
	}

	s.invalidate(ctx, review.MovieID)
	s.publishEvent(EventUpdated, review)

	s.logger.WithFields(map[string]interface{}{
		"review_id": review.ID,
		"movie_id":  review.MovieID,
		"rating":    review.Rating,
	}).Info("Review updated successfully")

	return review, nil
}

// Delete removes the actor's own review
func (s *Service) Delete(ctx context.Context, actor, id uuid.UUID) error {
	review, err := s.owned(ctx, actor, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete review", err)
		return err
	}

	s.invalidate(ctx, review.MovieID)
	s.publishEvent(EventDeleted, review)

	s.logger.WithFields(map[string]interface{}{
		"review_id": id,
		"movie_id":  review.MovieID,
	}).Info("Review deleted successfully")

	return nil
}

// ToggleLike likes the review for the user or takes the like back
func (s *Service) ToggleLike(ctx context.Context, userID, reviewID uuid.UUID) (*domain.LikeResult, error) {
	review, err := s.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	result, err := s.repo.ToggleLike(ctx, userID, reviewID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("Failed to toggle like", err)
		}
		return nil, err
	}

	if err := s.cache.InvalidateReviewsList(ctx, review.MovieID); err != nil {
		s.logger.Warnf("Failed to invalidate reviews cache for movie %s: %v", review.MovieID, err)
	}

	s.logger.WithFields(map[string]interface{}{
		"review_id":  reviewID,
		"liked":      result.Liked,
		"like_count": result.LikeCount,
	}).Debug("Review like toggled")

	return result, nil
}

func (s *Service) owned(ctx context.Context, actor, id uuid.UUID) (*domain.Review, error) {
	review, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if review.UserID != actor {
		return nil, domain.ErrForbidden
	}
	return review, nil
}

// invalidate drops the movie's cached rating and review pages; stale entries would show
// outdated ratings and lists
func (s *Service) invalidate(ctx context.Context, movieID uuid.UUID) {
	if err := s.cache.InvalidateMovie(ctx, movieID); err != nil {
		s.logger.Warnf("Failed to invalidate cache for movie %s: %v", movieID, err)
	}
}

// publishEvent publishes a review event without blocking the caller
func (s *Service) publishEvent(eventType string, review *domain.Review) {
	event := Event{
		EventType: eventType,
		Timestamp: time.Now(),
		MovieID:   review.MovieID,
		Review:    review,
	}

	data, err := json.Marshal(event)
	if err != nil {
		s.logger.Errorf(err, "Failed to marshal event for review %s", review.ID)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := s.publisher.Publish(ctx, Subject, data); err != nil {
			s.logger.Errorf(err, "Failed to publish event for review %s", review.ID)
		}
	}()
}
