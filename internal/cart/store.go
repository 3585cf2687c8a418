// Package cart holds the session-scoped shopping cart state. A Store is
// owned by whoever created it and injected where it is needed; all mutations
// go through one mutex, so two rapid submits for the same session serialize
// instead of racing.
package cart

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Item is one line of the cart. Title and Price are snapshots taken when the
// item was added; a discount active at add time is already folded into Price.
type Item struct {
	ID       int             `json:"id"`
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	Quantity uint            `json:"quantity"`
}

// Store keeps the items a shopper intends to purchase, in insertion order.
// At most one Item per product id: adding an already-present product merges
// into its quantity.
type Store struct {
	mu    sync.Mutex
	items []Item
}

func NewStore() *Store {
	return &Store{}
}

// Add merges quantity into an existing line or appends a new one. Callers
// clamp quantity to [1,99] before calling; the store does not enforce it.
func (s *Store) Add(id int, title string, price decimal.Decimal, quantity uint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Quantity += quantity
			return
		}
	}
	s.items = append(s.items, Item{ID: id, Title: title, Price: price, Quantity: quantity})
}

// Remove drops the line with the given id. Absent id is a no-op, not an error.
func (s *Store) Remove(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

// UpdateQuantity sets the quantity verbatim, with no clamping at this layer.
// The HTTP handlers clamp to [1,99] the way the storefront's quantity buttons
// did; direct callers own their own bounds. No-op when id is absent.
func (s *Store) UpdateQuantity(id int, quantity uint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Quantity = quantity
			return
		}
	}
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}

// Items returns a copy of the lines in insertion order.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Total recomputes the running total on every read. The cart holds tens of
// items at most, so there is nothing worth caching.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, it := range s.items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}
