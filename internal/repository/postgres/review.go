package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Pesokrava/movie_store/internal/domain"
)

const reviewColumns = `id, user_id, movie_id, content, rating, like_count, created_at, updated_at`

// ReviewRepository implements domain.ReviewRepository for PostgreSQL
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository creates a new PostgreSQL review repository
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create creates a new review
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	// Return domain.ErrNotFound instead of a foreign key violation
	var exists bool
	checkQuery := `SELECT EXISTS(SELECT 1 FROM movies WHERE id = $1 AND deleted_at IS NULL)`
	if err := r.db.GetContext(ctx, &exists, checkQuery, review.MovieID); err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}

	query := `
		INSERT INTO reviews (user_id, movie_id, content, rating)
		VALUES ($1, $2, $3, $4)
		RETURNING id, like_count, created_at, updated_at
	`

	err := r.db.QueryRowxContext(
		ctx,
		query,
		review.UserID,
		review.MovieID,
		review.Content,
		review.Rating,
	).Scan(
		&review.ID,
		&review.LikeCount,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateReview
		}
		return err
	}

	return nil
}

// GetByID retrieves a review by ID
func (r *ReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`

	var review domain.Review
	if err := r.db.GetContext(ctx, &review, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return &review, nil
}

// GetByUserAndMovie retrieves the review a user wrote for a movie
func (r *ReviewRepository) GetByUserAndMovie(ctx context.Context, userID, movieID uuid.UUID) (*domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE user_id = $1 AND movie_id = $2`

	var review domain.Review
	if err := r.db.GetContext(ctx, &review, query, userID, movieID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return &review, nil
}

// GetByMovieID retrieves reviews for a movie with pagination
func (r *ReviewRepository) GetByMovieID(ctx context.Context, movieID uuid.UUID, limit, offset int) ([]*domain.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE movie_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`

	reviews := []*domain.Review{}
	if err := r.db.SelectContext(ctx, &reviews, query, movieID, limit, offset); err != nil {
		return nil, err
	}

	return reviews, nil
}

// Update updates the content and rating of a review
func (r *ReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	query := `
		UPDATE reviews
		SET content = $1, rating = $2, updated_at = $3
		WHERE id = $4
		RETURNING like_count, updated_at
	`

	review.UpdatedAt = time.Now()

	err := r.db.QueryRowxContext(
		ctx,
		query,
		review.Content,
		review.Rating,
		review.UpdatedAt,
		review.ID,
	).Scan(&review.LikeCount, &review.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}

	return nil
}

// Delete removes a review; its likes go with it through the foreign key cascade
func (r *ReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// CountByMovieID returns the total number of reviews for a movie
func (r *ReviewRepository) CountByMovieID(ctx context.Context, movieID uuid.UUID) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM reviews WHERE movie_id = $1`, movieID); err != nil {
		return 0, err
	}
	return count, nil
}

// ToggleLike removes the user's like if present, otherwise adds it. The review row is
// locked for the duration so concurrent toggles serialize and like_count never drifts.
func (r *ReviewRepository) ToggleLike(ctx context.Context, userID, reviewID uuid.UUID) (*domain.LikeResult, error) {
	result := &domain.LikeResult{ReviewID: reviewID}

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var current int
		err := tx.GetContext(ctx, &current, `SELECT like_count FROM reviews WHERE id = $1 FOR UPDATE`, reviewID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrNotFound
			}
			return err
		}

		res, err := tx.ExecContext(ctx,
			`DELETE FROM review_likes WHERE user_id = $1 AND review_id = $2`, userID, reviewID)
		if err != nil {
			return err
		}
		removed, err := res.RowsAffected()
		if err != nil {
			return err
		}

		if removed > 0 {
			result.Liked = false
			return tx.GetContext(ctx, &result.LikeCount,
				`UPDATE reviews SET like_count = GREATEST(like_count - 1, 0) WHERE id = $1 RETURNING like_count`, reviewID)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO review_likes (user_id, review_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, userID, reviewID); err != nil {
			return err
		}
		result.Liked = true
		return tx.GetContext(ctx, &result.LikeCount,
			`UPDATE reviews SET like_count = like_count + 1 WHERE id = $1 RETURNING like_count`, reviewID)
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
