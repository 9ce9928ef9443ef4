package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Pesokrava/movie_store/internal/pkg/logger"
	"github.com/Pesokrava/movie_store/internal/pkg/metrics"
)

// RatingStats is the denormalized rating data stored on a movie
type RatingStats struct {
	AverageRating float64 `db:"average_rating"`
	RatingCount   int     `db:"rating_count"`
}

// Calculator handles rating calculation and database updates
type Calculator struct {
	db     *sqlx.DB
	logger *logger.Logger
}

// NewCalculator creates a new rating calculator
func NewCalculator(db *sqlx.DB, logger *logger.Logger) *Calculator {
	return &Calculator{
		db:     db,
		logger: logger,
	}
}

// CalculateAndUpdate recomputes the average rating and review count of a movie from its
// reviews. The full recalculation makes repeated or dropped events harmless.
func (c *Calculator) CalculateAndUpdate(ctx context.Context, movieID uuid.UUID) (err error) {
	defer func() { metrics.RecordRatingRecalculation(err) }()

	query := `
		UPDATE movies
		SET
			average_rating = COALESCE(
				(SELECT ROUND(AVG(rating)::numeric, 1) FROM reviews WHERE movie_id = $1),
				0
			),
			rating_count = (SELECT COUNT(*) FROM reviews WHERE movie_id = $1),
			updated_at = $2
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := c.db.ExecContext(ctx, query, movieID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update movie rating: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		c.logger.WithFields(map[string]any{
			"movie_id": movieID.String(),
		}).Info("Movie not found or deleted, skipping rating update")
		return nil
	}

	c.logger.WithFields(map[string]any{
		"movie_id": movieID.String(),
	}).Info("Successfully updated movie rating")

	return nil
}

// GetCurrentRating reads the stored rating stats of a movie
func (c *Calculator) GetCurrentRating(ctx context.Context, movieID uuid.UUID) (*RatingStats, error) {
	var stats RatingStats
	query := `SELECT average_rating, rating_count FROM movies WHERE id = $1 AND deleted_at IS NULL`

	if err := c.db.GetContext(ctx, &stats, query, movieID); err != nil {
		return nil, fmt.Errorf("failed to get current rating: %w", err)
	}

	return &stats, nil
}
