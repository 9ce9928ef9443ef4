package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Movie represents a movie in the catalog
type Movie struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	Title         string          `json:"title" db:"title" validate:"required,min=1,max=200"`
	Description   string          `json:"description" db:"description"`
	Price         decimal.Decimal `json:"price" db:"price" validate:"gte=0.01"`
	ImageURL      *string         `json:"image_url,omitempty" db:"image_url" validate:"omitempty,max=500"`
	AverageRating float64         `json:"average_rating" db:"average_rating"`
	RatingCount   int             `json:"rating_count" db:"rating_count"`
	Version       int             `json:"version" db:"version"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
	DeletedAt     *time.Time      `json:"deleted_at,omitempty" db:"deleted_at"`
}

// MovieFilter narrows a catalog listing
type MovieFilter struct {
	// Search is a case-insensitive substring of the title
	Search string
	// ExcludeHiddenFor drops movies hidden by this user; uuid.Nil disables the filter
	ExcludeHiddenFor uuid.UUID
	Limit            int
	Offset           int
}

// TrendingMovie is a movie ranked by purchased quantity within a region
type TrendingMovie struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	Title     string          `json:"title" db:"title"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Purchases int             `json:"purchases" db:"purchases"`
}

// MovieRepository defines the interface for movie data access
type MovieRepository interface {
	// Create creates a new movie
	Create(ctx context.Context, movie *Movie) error

	// GetByID retrieves a movie by ID (excludes soft-deleted)
	GetByID(ctx context.Context, id uuid.UUID) (*Movie, error)

	// GetByIDs retrieves all existing movies among ids (excludes soft-deleted)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*Movie, error)

	// List retrieves a filtered, paginated list of movies
	List(ctx context.Context, filter MovieFilter) ([]*Movie, error)

	// Count returns the number of movies matching the filter (limit/offset ignored)
	Count(ctx context.Context, filter MovieFilter) (int, error)

	// Update updates an existing movie using optimistic locking
	Update(ctx context.Context, movie *Movie) error

	// Delete soft-deletes a movie
	Delete(ctx context.Context, id uuid.UUID) error

	// AverageRating returns the mean review rating rounded to one decimal, 0 without reviews
	AverageRating(ctx context.Context, id uuid.UUID) (float64, error)

	// PurchasedQuantity sums order item quantities for a movie, optionally within one region
	PurchasedQuantity(ctx context.Context, id uuid.UUID, region string) (int, error)

	// TrendingInRegion returns the most purchased movies in a region
	TrendingInRegion(ctx context.Context, region string, limit int) ([]*TrendingMovie, error)

	// CountOrdersInRegion returns the number of orders tagged with a region
	CountOrdersInRegion(ctx context.Context, region string) (int, error)
}
