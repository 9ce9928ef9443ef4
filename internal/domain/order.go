package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UnknownRegion tags orders placed without a region
const UnknownRegion = "Unknown"

// Order represents a completed checkout
type Order struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	UserID      uuid.UUID       `json:"user_id" db:"user_id"`
	TotalAmount decimal.Decimal `json:"total_amount" db:"total_amount"`
	Region      string          `json:"region" db:"region"`
	City        string          `json:"city" db:"city"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	Items       []*OrderItem    `json:"items" db:"-"`
}

// OrderItem is one purchased movie with the price captured at checkout
type OrderItem struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	OrderID    uuid.UUID       `json:"order_id" db:"order_id"`
	MovieID    uuid.UUID       `json:"movie_id" db:"movie_id"`
	MovieTitle string          `json:"movie_title" db:"movie_title"`
	Quantity   int             `json:"quantity" db:"quantity"`
	Price      decimal.Decimal `json:"price" db:"price"`
	Region     string          `json:"region" db:"region"`
}

// Subtotal returns quantity times the captured unit price
func (i *OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderLine is a requested purchase of one movie
type OrderLine struct {
	MovieID  uuid.UUID
	Quantity int
}

// CheckoutResult is the created order and the cart entries that could not be purchased
type CheckoutResult struct {
	Order   *Order   `json:"order"`
	Skipped []string `json:"skipped_movie_ids"`
}

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	// CreateWithItems inserts the order and its items in one transaction, copying each movie's
	// current price. Lines whose movie no longer exists are skipped and returned. If no line
	// could be inserted nothing is persisted and ErrEmptyCart is returned.
	CreateWithItems(ctx context.Context, order *Order, lines []OrderLine) ([]uuid.UUID, error)

	// GetByID retrieves an order with its items
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// ListByUser retrieves a user's orders with items, newest first
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Order, error)
}
