package cart

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Store holds the line items of a single shopper cart. Derived totals are never
// stored; they are recomputed under the same lock as the lines on every read.
type Store struct {
	mu    sync.RWMutex
	items []Item
}

func NewStore() *Store {
	return &Store{}
}

// AddItem increments the quantity of an existing line by one, or appends the
// item with quantity 1.
func (s *Store) AddItem(it Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ProductID == it.ProductID {
			s.items[i].Quantity++
			return
		}
	}
	it.Quantity = 1
	s.items = append(s.items, it)
}

func (s *Store) RemoveItem(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(productID)
}

// SetQuantity sets the quantity of an existing line. Negative values are
// clamped to zero and a zero quantity removes the line. Unknown products are ignored.
func (s *Store) SetQuantity(productID string, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if qty <= 0 {
		s.removeLocked(productID)
		return
	}
	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items[i].Quantity = qty
			return
		}
	}
}

func (s *Store) Clear() {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Items:        make([]Item, len(s.items)),
		Subtotal:     decimal.Zero,
		ShippingCost: ShippingCost,
	}
	copy(snap.Items, s.items)

	for _, it := range s.items {
		snap.Subtotal = snap.Subtotal.Add(it.LineTotal())
		snap.ItemCount += it.Quantity
	}
	snap.Total = snap.Subtotal.Add(snap.ShippingCost)
	return snap
}

func (s *Store) removeLocked(productID string) {
	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}
