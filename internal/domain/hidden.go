package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// VisibilityChange describes what a hide/unhide/toggle did
type VisibilityChange string

const (
	MovieHidden        VisibilityChange = "hidden"
	MovieAlreadyHidden VisibilityChange = "already_hidden"
	MovieUnhidden      VisibilityChange = "unhidden"
)

// HiddenMovie records that a user hid a movie from their catalog view
type HiddenMovie struct {
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	MovieID   uuid.UUID `json:"movie_id" db:"movie_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// HiddenMovieRepository defines the interface for hidden movie data access
type HiddenMovieRepository interface {
	// Hide records the movie as hidden; returns false if it was already hidden
	Hide(ctx context.Context, userID, movieID uuid.UUID) (bool, error)

	// Unhide removes the record; ErrNotFound if the movie was not hidden
	Unhide(ctx context.Context, userID, movieID uuid.UUID) error

	// Toggle flips the hidden state in one transaction
	Toggle(ctx context.Context, userID, movieID uuid.UUID) (VisibilityChange, error)

	// ListMovies returns the movies a user has hidden
	ListMovies(ctx context.Context, userID uuid.UUID) ([]*Movie, error)
}
