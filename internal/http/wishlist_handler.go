package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
)

type wishlistResponse struct {
	Items []cart.WishlistItem `json:"items"`
	Count int                 `json:"count"`
}

func (h *Handler) sessionWishlist(r *http.Request) *cart.Wishlist {
	return h.carts.Wishlist(middleware.GetSessionID(r.Context()))
}

func wishlistBody(wl *cart.Wishlist) wishlistResponse {
	items := wl.Items()
	return wishlistResponse{Items: items, Count: len(items)}
}

func (h *Handler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, wishlistBody(h.sessionWishlist(r)))
}

// AddToWishlist saves a product; 201 when newly saved, 200 when it was
// already there.
func (h *Handler) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.ProductID = strings.TrimSpace(req.ProductID)
	if req.ProductID == "" {
		writeError(w, r, http.StatusBadRequest, "productId is required")
		return
	}

	p, ok := h.lookupProduct(w, r, req.ProductID)
	if !ok {
		return
	}

	wl := h.sessionWishlist(r)
	status := http.StatusOK
	if wl.Add(cart.WishlistItem{
		ProductID: req.ProductID,
		Name:      p.Name,
		Slug:      p.Slug,
		Image:     p.Image,
		Price:     p.Price,
	}) {
		status = http.StatusCreated
	}
	writeJSON(w, status, wishlistBody(wl))
}

func (h *Handler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	wl := h.sessionWishlist(r)
	wl.Remove(chi.URLParam(r, "productId"))
	writeJSON(w, http.StatusOK, wishlistBody(wl))
}

func (h *Handler) ClearWishlist(w http.ResponseWriter, r *http.Request) {
	wl := h.sessionWishlist(r)
	wl.Clear()
	writeJSON(w, http.StatusOK, wishlistBody(wl))
}
