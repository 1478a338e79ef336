package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/logging"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
)

const ordersPath = "/orders"

type Handler struct {
	carts    *cart.Registry
	checkout *checkout.Service
	catalog  *clients.CatalogClient
}

func NewHandler(carts *cart.Registry, svc *checkout.Service, catalog *clients.CatalogClient) *Handler {
	return &Handler{carts: carts, checkout: svc, catalog: catalog}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type errorBody struct {
	Error         string            `json:"error"`
	Fields        map[string]string `json:"fields,omitempty"`
	Redirect      string            `json:"redirect,omitempty"`
	Checkout      *checkout.Attempt `json:"checkout,omitempty"`
	CorrelationID string            `json:"correlationId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg, CorrelationID: middleware.GetCorrelationID(r.Context())})
}

// writeCheckoutError maps checkout and upstream errors to HTTP responses.
// attempt is echoed back when the caller has one.
func writeCheckoutError(w http.ResponseWriter, r *http.Request, err error, attempt *checkout.Attempt) {
	body := errorBody{
		Error:         err.Error(),
		Checkout:      attempt,
		CorrelationID: middleware.GetCorrelationID(r.Context()),
	}
	status := http.StatusInternalServerError

	var (
		verr   *checkout.ValidationError
		vfyErr *checkout.VerificationError
		reqErr *clients.RequestError
	)
	switch {
	case errors.As(err, &verr):
		status = http.StatusUnprocessableEntity
		body.Error = "invalid checkout form"
		body.Fields = verr.Fields
	case errors.As(err, &vfyErr):
		status = http.StatusConflict
		body.Error = vfyErr.Reason
		body.Redirect = ordersPath
	case errors.As(err, &reqErr):
		status = http.StatusBadGateway
		if reqErr.Status == http.StatusServiceUnavailable {
			status = http.StatusServiceUnavailable
		}
		body.Error = reqErr.Message
	case errors.Is(err, checkout.ErrEmptyCart):
		status = http.StatusBadRequest
	case errors.Is(err, checkout.ErrSubmitInProgress):
		status = http.StatusConflict
	case errors.Is(err, checkout.ErrNoPendingOrder):
		status = http.StatusNotFound
	default:
		body.Error = "internal error"
	}

	if status >= http.StatusInternalServerError {
		logging.FromCtx(r.Context()).Error("request failed", "status", status, "error", err)
	} else {
		logging.FromCtx(r.Context()).Info("request rejected", "status", status, "error", err)
	}
	writeJSON(w, status, body)
}

// requestLogger stores a logger tagged with the correlation id in the request context.
func requestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := base.With("correlationId", middleware.GetCorrelationID(r.Context()))
			next.ServeHTTP(w, r.WithContext(logging.WithCtx(r.Context(), l)))
		})
	}
}
