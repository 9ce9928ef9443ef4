package domain

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	topCommentMinLikes  = 3
	topCommentMinLength = 100
)

// Review represents a user's review of a movie
type Review struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id" validate:"required"`
	MovieID   uuid.UUID `json:"movie_id" db:"movie_id" validate:"required"`
	Content   string    `json:"content" db:"content" validate:"required,min=1,max=5000"`
	Rating    int       `json:"rating" db:"rating" validate:"required,min=1,max=5"`
	LikeCount int       `json:"like_count" db:"like_count"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsTopComment reports whether the review is popular or substantial enough to highlight
func (r *Review) IsTopComment() bool {
	return r.LikeCount >= topCommentMinLikes || utf8.RuneCountInString(r.Content) > topCommentMinLength
}

// LikeResult is the outcome of toggling a like
type LikeResult struct {
	ReviewID  uuid.UUID `json:"review_id"`
	Liked     bool      `json:"liked"`
	LikeCount int       `json:"like_count"`
}

// ReviewRepository defines the interface for review data access
type ReviewRepository interface {
	// Create creates a new review; a duplicate (user, movie) pair yields ErrDuplicateReview
	Create(ctx context.Context, review *Review) error

	// GetByID retrieves a review by ID
	GetByID(ctx context.Context, id uuid.UUID) (*Review, error)

	// GetByUserAndMovie retrieves the user's review of a movie
	GetByUserAndMovie(ctx context.Context, userID, movieID uuid.UUID) (*Review, error)

	// GetByMovieID retrieves reviews for a movie with pagination, newest first
	GetByMovieID(ctx context.Context, movieID uuid.UUID, limit, offset int) ([]*Review, error)

	// Update updates the content and rating of a review
	Update(ctx context.Context, review *Review) error

	// Delete removes a review and its likes
	Delete(ctx context.Context, id uuid.UUID) error

	// CountByMovieID returns the total number of reviews for a movie
	CountByMovieID(ctx context.Context, movieID uuid.UUID) (int, error)

	// ToggleLike adds or removes the user's like and adjusts like_count in one transaction
	ToggleLike(ctx context.Context, userID, reviewID uuid.UUID) (*LikeResult, error)
}
