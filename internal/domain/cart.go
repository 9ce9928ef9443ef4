package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// MaxQuantity caps the quantity of a single cart entry
const MaxQuantity = 1000

// CartEntry is one movie reference held in a session cart
type CartEntry struct {
	MovieID  string `json:"movie_id"`
	Quantity int    `json:"quantity"`
}

// Cart is the per-session mapping of movie identifier to quantity.
// Entries keep insertion order and every quantity is at least 1.
type Cart struct {
	Entries []CartEntry `json:"entries"`
}

// NewCart returns an empty cart
func NewCart() *Cart {
	return &Cart{Entries: []CartEntry{}}
}

// Add increments the quantity of an existing entry or appends a new one.
// Callers validate quantity before adding.
func (c *Cart) Add(movieID string, quantity int) {
	for i := range c.Entries {
		if c.Entries[i].MovieID == movieID {
			c.Entries[i].Quantity += quantity
			return
		}
	}
	c.Entries = append(c.Entries, CartEntry{MovieID: movieID, Quantity: quantity})
}

// CanAdd reports whether adding quantity copies of the movie keeps the entry within
// 1..MaxQuantity
func (c *Cart) CanAdd(movieID string, quantity int) bool {
	return quantity >= 1 && quantity <= MaxQuantity-c.Quantity(movieID)
}

// Quantity returns the quantity held for a movie, 0 if absent
func (c *Cart) Quantity(movieID string) int {
	for _, e := range c.Entries {
		if e.MovieID == movieID {
			return e.Quantity
		}
	}
	return 0
}

// Clear removes every entry
func (c *Cart) Clear() {
	c.Entries = []CartEntry{}
}

// IsEmpty reports whether the cart has no entries at all (valid or not)
func (c *Cart) IsEmpty() bool {
	return len(c.Entries) == 0
}

// CartLine is a cart entry resolved against the catalog
type CartLine struct {
	Movie     *Movie          `json:"movie"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// CartSummary is the resolved view of a cart
type CartSummary struct {
	Lines     []CartLine      `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

// SessionStore persists carts between requests of one session
type SessionStore interface {
	// LoadCart returns the session's cart, or an empty cart if none was stored
	LoadCart(ctx context.Context, sessionID string) (*Cart, error)

	// SaveCart stores the cart and refreshes the session TTL
	SaveCart(ctx context.Context, sessionID string, cart *Cart) error
}
