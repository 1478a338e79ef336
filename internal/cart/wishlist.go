package cart

import (
	"sync"

	"github.com/shopspring/decimal"
)

type WishlistItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug,omitempty"`
	Image     string          `json:"image,omitempty"`
	Price     decimal.Decimal `json:"price"`
}

// Wishlist is a session's saved products, in insertion order. Adding a
// product that is already saved is a no-op.
type Wishlist struct {
	mu    sync.RWMutex
	items []WishlistItem
}

func NewWishlist() *Wishlist {
	return &Wishlist{}
}

// Add reports whether the product was newly saved.
func (w *Wishlist) Add(it WishlistItem) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, existing := range w.items {
		if existing.ProductID == it.ProductID {
			return false
		}
	}
	w.items = append(w.items, it)
	return true
}

func (w *Wishlist) Remove(productID string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for i := range w.items {
		if w.items[i].ProductID == productID {
			w.items = append(w.items[:i], w.items[i+1:]...)
			return
		}
	}
}

func (w *Wishlist) Clear() {
	w.mu.Lock()
	w.items = nil
	w.mu.Unlock()
}

func (w *Wishlist) Items() []WishlistItem {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]WishlistItem, len(w.items))
	copy(out, w.items)
	return out
}
