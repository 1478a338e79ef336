package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
)

type addItemRequest struct {
	ProductID string `json:"productId"`
}

type setQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

func (h *Handler) sessionCart(r *http.Request) *cart.Store {
	return h.carts.Get(middleware.GetSessionID(r.Context()))
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sessionCart(r).Snapshot())
}

// AddItem adds one unit of the product at its catalog price. Any quantity or
// price in the body is ignored.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
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
	if p.Price.IsNegative() {
		writeError(w, r, http.StatusBadGateway, "catalog returned a negative price")
		return
	}

	store := h.sessionCart(r)
	store.AddItem(cart.Item{
		ProductID:   req.ProductID,
		Name:        p.Name,
		Image:       p.Image,
		Description: p.Description,
		UnitPrice:   p.Price,
	})
	writeJSON(w, http.StatusOK, store.Snapshot())
}

func (h *Handler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	var req setQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Quantity == nil {
		writeError(w, r, http.StatusBadRequest, "quantity is required")
		return
	}

	store := h.sessionCart(r)
	store.SetQuantity(chi.URLParam(r, "productId"), *req.Quantity)
	writeJSON(w, http.StatusOK, store.Snapshot())
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	store := h.sessionCart(r)
	store.RemoveItem(chi.URLParam(r, "productId"))
	writeJSON(w, http.StatusOK, store.Snapshot())
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	store := h.sessionCart(r)
	store.Clear()
	writeJSON(w, http.StatusOK, store.Snapshot())
}
