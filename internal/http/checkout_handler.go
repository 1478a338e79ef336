package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
)

func (h *Handler) session(r *http.Request) *checkout.Orchestrator {
	ctx := r.Context()
	return h.checkout.Session(middleware.GetSessionID(ctx), middleware.GetUserID(ctx))
}

func (h *Handler) SubmitCheckout(w http.ResponseWriter, r *http.Request) {
	var form checkout.ShippingForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	attempt, err := h.session(r).Submit(r.Context(), form)
	if err != nil {
		writeCheckoutError(w, r, err, &attempt)
		return
	}

	status := http.StatusCreated
	if attempt.State == checkout.StateAwaitingPayment {
		status = http.StatusAccepted
	}
	writeJSON(w, status, attempt)
}

func (h *Handler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.session(r).Snapshot())
}

// CancelCheckout is called when the checkout view is torn down.
func (h *Handler) CancelCheckout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.session(r).Cancel())
}

func (h *Handler) ResumeCheckout(w http.ResponseWriter, r *http.Request) {
	attempt, err := h.session(r).Resume(r.Context())
	if err != nil {
		writeCheckoutError(w, r, err, &attempt)
		return
	}
	writeJSON(w, http.StatusOK, attempt)
}

func (h *Handler) VerifyOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.checkout.Verify(r.Context(), chi.URLParam(r, "orderId"))
	if err != nil {
		writeCheckoutError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}
