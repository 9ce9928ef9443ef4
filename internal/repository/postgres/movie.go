package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Pesokrava/movie_store/internal/domain"
)

const movieColumns = `id, title, description, price, image_url, average_rating, rating_count, version, created_at, updated_at, deleted_at`

// MovieRepository implements domain.MovieRepository for PostgreSQL
type MovieRepository struct {
	db *sqlx.DB
}

// NewMovieRepository creates a new PostgreSQL movie repository
func NewMovieRepository(db *sqlx.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// Create creates a new movie
func (r *MovieRepository) Create(ctx context.Context, movie *domain.Movie) error {
	query := `
		INSERT INTO movies (title, description, price, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, average_rating, rating_count, version, created_at, updated_at
	`

	now := time.Now()
	movie.CreatedAt = now
	movie.UpdatedAt = now

	return r.db.QueryRowxContext(
		ctx,
		query,
		movie.Title,
		movie.Description,
		movie.Price,
		movie.ImageURL,
		movie.CreatedAt,
		movie.UpdatedAt,
	).Scan(
		&movie.ID,
		&movie.AverageRating,
		&movie.RatingCount,
		&movie.Version,
		&movie.CreatedAt,
		&movie.UpdatedAt,
	)
}

// GetByID retrieves a movie by ID
func (r *MovieRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Movie, error) {
	query := `SELECT ` + movieColumns + ` FROM movies WHERE id = $1 AND deleted_at IS NULL`

	var movie domain.Movie
	err := r.db.GetContext(ctx, &movie, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return &movie, nil
}

// GetByIDs retrieves the movies among ids that still exist, in no particular order
func (r *MovieRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Movie, error) {
	if len(ids) == 0 {
		return []*domain.Movie{}, nil
	}

	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = id.String()
	}

	query := `SELECT ` + movieColumns + ` FROM movies WHERE id = ANY($1::uuid[]) AND deleted_at IS NULL`

	var movies []*domain.Movie
	if err := r.db.SelectContext(ctx, &movies, query, pq.StringArray(raw)); err != nil {
		return nil, err
	}

	return movies, nil
}

// movieFilterWhere renders the WHERE clause for a filter; args are numbered from 1
func movieFilterWhere(filter domain.MovieFilter) (string, []interface{}) {
	conditions := []string{"deleted_at IS NULL"}
	var args []interface{}

	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, containsPattern(search))
		conditions = append(conditions, fmt.Sprintf(`title ILIKE $%d ESCAPE '\'`, len(args)))
	}

	if filter.ExcludeHiddenFor != uuid.Nil {
		args = append(args, filter.ExcludeHiddenFor)
		conditions = append(conditions, fmt.Sprintf(
			"NOT EXISTS (SELECT 1 FROM hidden_movies h WHERE h.movie_id = movies.id AND h.user_id = $%d)", len(args)))
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}

// List retrieves a filtered, paginated list of movies, newest first
func (r *MovieRepository) List(ctx context.Context, filter domain.MovieFilter) ([]*domain.Movie, error) {
	where, args := movieFilterWhere(filter)
	args = append(args, filter.Limit, filter.Offset)

	query := fmt.Sprintf(
		`SELECT %s FROM movies %s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		movieColumns, where, len(args)-1, len(args),
	)

	var movies []*domain.Movie
	if err := r.db.SelectContext(ctx, &movies, query, args...); err != nil {
		return nil, err
	}

	return movies, nil
}

// Count returns the number of movies matching the filter
func (r *MovieRepository) Count(ctx context.Context, filter domain.MovieFilter) (int, error) {
	where, args := movieFilterWhere(filter)

	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM movies `+where, args...); err != nil {
		return 0, err
	}

	return count, nil
}

// Update updates an existing movie
func (r *MovieRepository) Update(ctx context.Context, movie *domain.Movie) error {
	query := `
		UPDATE movies
		SET title = $1, description = $2, price = $3, image_url = $4, updated_at = $5, version = version + 1
		WHERE id = $6 AND deleted_at IS NULL AND version = $7
		RETURNING version, updated_at
	`

	movie.UpdatedAt = time.Now()

	err := r.db.QueryRowxContext(
		ctx,
		query,
		movie.Title,
		movie.Description,
		movie.Price,
		movie.ImageURL,
		movie.UpdatedAt,
		movie.ID,
		movie.Version,
	).Scan(&movie.Version, &movie.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrConflict
		}
		return err
	}

	return nil
}

// Delete soft-deletes a movie
func (r *MovieRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE movies SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
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

// AverageRating computes the mean review rating of a movie rounded to one decimal
func (r *MovieRepository) AverageRating(ctx context.Context, id uuid.UUID) (float64, error) {
	query := `SELECT COALESCE(ROUND(AVG(rating)::numeric, 1), 0) FROM reviews WHERE movie_id = $1`

	var avg float64
	if err := r.db.GetContext(ctx, &avg, query, id); err != nil {
		return 0, err
	}

	return avg, nil
}

// PurchasedQuantity sums purchased quantities of a movie; an empty region means all regions
func (r *MovieRepository) PurchasedQuantity(ctx context.Context, id uuid.UUID, region string) (int, error) {
	query := `
		SELECT COALESCE(SUM(quantity), 0)
		FROM order_items
		WHERE movie_id = $1 AND ($2::text = '' OR region = $2)
	`

	var total int
	if err := r.db.GetContext(ctx, &total, query, id, region); err != nil {
		return 0, err
	}

	return total, nil
}

// TrendingInRegion ranks movies by purchased quantity within a region
func (r *MovieRepository) TrendingInRegion(ctx context.Context, region string, limit int) ([]*domain.TrendingMovie, error) {
	query := `
		SELECT m.id, m.title, m.price, SUM(oi.quantity) AS purchases
		FROM order_items oi
		JOIN movies m ON m.id = oi.movie_id
		WHERE oi.region = $1 AND m.deleted_at IS NULL
		GROUP BY m.id, m.title, m.price
		ORDER BY purchases DESC, m.title ASC
		LIMIT $2
	`

	movies := []*domain.TrendingMovie{}
	if err := r.db.SelectContext(ctx, &movies, query, region, limit); err != nil {
		return nil, err
	}

	return movies, nil
}

// CountOrdersInRegion returns the number of orders placed in a region
func (r *MovieRepository) CountOrdersInRegion(ctx context.Context, region string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM orders WHERE region = $1`, region); err != nil {
		return 0, err
	}
	return count, nil
}
