package visibility

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Pesokrava/movie_store/internal/domain"
	"github.com/Pesokrava/movie_store/internal/pkg/logger"
)

// Service manages the movies each user has hidden from their catalog view
type Service struct {
	hidden domain.HiddenMovieRepository
	movies domain.MovieRepository
	logger *logger.Logger
}

// NewService creates a new visibility service
func NewService(hidden domain.HiddenMovieRepository, movies domain.MovieRepository, log *logger.Logger) *Service {
	return &Service{
		hidden: hidden,
		movies: movies,
		logger: log,
	}
}

func (s *Service) requireMovie(ctx context.Context, movieID uuid.UUID) error {
	if _, err := s.movies.GetByID(ctx, movieID); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("Failed to get movie", err)
		}
		return err
	}
	return nil
}

// Hide hides a movie for the user. Hiding an already hidden movie is not an error.
func (s *Service) Hide(ctx context.Context, userID, movieID uuid.UUID) (domain.VisibilityChange, error) {
	if err := s.requireMovie(ctx, movieID); err != nil {
		return "", err
	}

	created, err := s.hidden.Hide(ctx, userID, movieID)
	if err != nil {
		s.logger.Error("Failed to hide movie", err)
		return "", err
	}

	if !created {
		return domain.MovieAlreadyHidden, nil
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id":  userID,
		"movie_id": movieID,
	}).Info("Movie hidden successfully")

	return domain.MovieHidden, nil
}

// Unhide makes a hidden movie visible again; domain.ErrNotFound if it was not hidden
func (s *Service) Unhide(ctx context.Context, userID, movieID uuid.UUID) error {
	if err := s.hidden.Unhide(ctx, userID, movieID); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("Failed to unhide movie", err)
		}
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id":  userID,
		"movie_id": movieID,
	}).Info("Movie unhidden successfully")

	return nil
}

// Toggle flips the hidden state of a movie for the user
func (s *Service) Toggle(ctx context.Context, userID, movieID uuid.UUID) (domain.VisibilityChange, error) {
	if err := s.requireMovie(ctx, movieID); err != nil {
		return "", err
	}

	change, err := s.hidden.Toggle(ctx, userID, movieID)
	if err != nil {
		s.logger.Error("Failed to toggle movie visibility", err)
		return "", err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id":  userID,
		"movie_id": movieID,
		"change":   change,
	}).Info("Movie visibility toggled")

	return change, nil
}

// ListHidden returns the user's hidden movies
func (s *Service) ListHidden(ctx context.Context, userID uuid.UUID) ([]*domain.Movie, error) {
	movies, err := s.hidden.ListMovies(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list hidden movies", err)
		return nil, err
	}
	return movies, nil
}
