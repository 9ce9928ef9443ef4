package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Pesokrava/movie_store/internal/domain"
)

// OrderRepository implements domain.OrderRepository for PostgreSQL
type OrderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository creates a new PostgreSQL order repository
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

const insertOrderItemQuery = `
	WITH m AS (
		SELECT id, title, price FROM movies WHERE id = $2 AND deleted_at IS NULL
	), ins AS (
		INSERT INTO order_items (order_id, movie_id, quantity, price, region)
		SELECT $1, m.id, $3, m.price, $4 FROM m
		RETURNING id, order_id, movie_id, quantity, price, region
	)
	SELECT ins.id, ins.order_id, ins.movie_id, m.title AS movie_title, ins.quantity, ins.price, ins.region
	FROM ins JOIN m ON m.id = ins.movie_id
`

// CreateWithItems persists the order and its items atomically. The unit price of every
// item is read from the movie row inside the same transaction.
func (r *OrderRepository) CreateWithItems(ctx context.Context, order *domain.Order, lines []domain.OrderLine) ([]uuid.UUID, error) {
	var skipped []uuid.UUID

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		skipped = nil
		order.Items = nil

		err := tx.QueryRowxContext(ctx, `
			INSERT INTO orders (user_id, total_amount, region, city)
			VALUES ($1, 0, $2, $3)
			RETURNING id, created_at
		`, order.UserID, order.Region, order.City).Scan(&order.ID, &order.CreatedAt)
		if err != nil {
			return err
		}

		for _, line := range lines {
			var item domain.OrderItem
			err := tx.QueryRowxContext(ctx, insertOrderItemQuery,
				order.ID, line.MovieID, line.Quantity, order.Region,
			).StructScan(&item)
			if errors.Is(err, sql.ErrNoRows) {
				skipped = append(skipped, line.MovieID)
				continue
			}
			if err != nil {
				return err
			}
			order.Items = append(order.Items, &item)
		}

		if len(order.Items) == 0 {
			return domain.ErrEmptyCart
		}

		return tx.QueryRowxContext(ctx, `
			UPDATE orders
			SET total_amount = (SELECT COALESCE(SUM(quantity * price), 0) FROM order_items WHERE order_id = $1)
			WHERE id = $1
			RETURNING total_amount
		`, order.ID).Scan(&order.TotalAmount)
	})
	if err != nil {
		return nil, err
	}

	return skipped, nil
}

// GetByID retrieves an order with its items
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT id, user_id, total_amount, region, city, created_at FROM orders WHERE id = $1`

	var order domain.Order
	if err := r.db.GetContext(ctx, &order, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if err := r.attachItems(ctx, []*domain.Order{&order}); err != nil {
		return nil, err
	}

	return &order, nil
}

// ListByUser retrieves a user's orders with items, newest first
func (r *OrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	query := `
		SELECT id, user_id, total_amount, region, city, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC, id
	`

	orders := []*domain.Order{}
	if err := r.db.SelectContext(ctx, &orders, query, userID); err != nil {
		return nil, err
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

// attachItems loads the items of all given orders with one query
func (r *OrderRepository) attachItems(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, len(orders))
	byID := make(map[uuid.UUID]*domain.Order, len(orders))
	for i, o := range orders {
		ids[i] = o.ID.String()
		o.Items = []*domain.OrderItem{}
		byID[o.ID] = o
	}

	query := `
		SELECT oi.id, oi.order_id, oi.movie_id, m.title AS movie_title, oi.quantity, oi.price, oi.region
		FROM order_items oi
		JOIN movies m ON m.id = oi.movie_id
		WHERE oi.order_id = ANY($1::uuid[])
		ORDER BY m.title, oi.id
	`

	var items []*domain.OrderItem
	if err := r.db.SelectContext(ctx, &items, query, pq.StringArray(ids)); err != nil {
		return err
	}

	for _, item := range items {
		if o, ok := byID[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}

	return nil
}
