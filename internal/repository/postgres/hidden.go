package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Pesokrava/movie_store/internal/domain"
)

// HiddenMovieRepository implements domain.HiddenMovieRepository for PostgreSQL
type HiddenMovieRepository struct {
	db *sqlx.DB
}

// NewHiddenMovieRepository creates a new PostgreSQL hidden movie repository
func NewHiddenMovieRepository(db *sqlx.DB) *HiddenMovieRepository {
	return &HiddenMovieRepository{db: db}
}

const (
	hideMovieQuery   = `INSERT INTO hidden_movies (user_id, movie_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	unhideMovieQuery = `DELETE FROM hidden_movies WHERE user_id = $1 AND movie_id = $2`
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func execAffected(ctx context.Context, db execer, query string, args ...interface{}) (int64, error) {
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Hide marks a movie hidden for the user; false means it was already hidden
func (r *HiddenMovieRepository) Hide(ctx context.Context, userID, movieID uuid.UUID) (bool, error) {
	n, err := execAffected(ctx, r.db, hideMovieQuery, userID, movieID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Unhide makes a hidden movie visible again
func (r *HiddenMovieRepository) Unhide(ctx context.Context, userID, movieID uuid.UUID) error {
	n, err := execAffected(ctx, r.db, unhideMovieQuery, userID, movieID)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Toggle unhides the movie if hidden, hides it otherwise
func (r *HiddenMovieRepository) Toggle(ctx context.Context, userID, movieID uuid.UUID) (domain.VisibilityChange, error) {
	var change domain.VisibilityChange

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		removed, err := execAffected(ctx, tx, unhideMovieQuery, userID, movieID)
		if err != nil {
			return err
		}
		if removed > 0 {
			change = domain.MovieUnhidden
			return nil
		}

		if _, err := execAffected(ctx, tx, hideMovieQuery, userID, movieID); err != nil {
			return err
		}
		change = domain.MovieHidden
		return nil
	})
	if err != nil {
		return "", err
	}

	return change, nil
}

// ListMovies returns the user's hidden movies, most recently hidden first
func (r *HiddenMovieRepository) ListMovies(ctx context.Context, userID uuid.UUID) ([]*domain.Movie, error) {
	query := `
		SELECT m.id, m.title, m.description, m.price, m.image_url, m.average_rating, m.rating_count,
		       m.version, m.created_at, m.updated_at, m.deleted_at
		FROM hidden_movies h
		JOIN movies m ON m.id = h.movie_id
		WHERE h.user_id = $1 AND m.deleted_at IS NULL
		ORDER BY h.created_at DESC, m.id
	`

	movies := []*domain.Movie{}
	if err := r.db.SelectContext(ctx, &movies, query, userID); err != nil {
		return nil, err
	}
	return movies, nil
}
