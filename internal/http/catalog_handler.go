package httpapi

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/logging"
)

// forwardedHeaders are the request headers passed through to the catalog.
var forwardedHeaders = []string{"Accept", "Accept-Language"}

func proxyHeaders(r *http.Request) http.Header {
	out := http.Header{}
	for _, k := range forwardedHeaders {
		if v := r.Header.Get(k); v != "" {
			out.Set(k, v)
		}
	}
	return out
}

func copyUpstreamResponse(w http.ResponseWriter, resp *http.Response) {
	for k, vv := range resp.Header {
		for _, v := range vv {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = io.Copy(w, resp.Body)
}

func (h *Handler) proxyCatalog(w http.ResponseWriter, r *http.Request, resp *http.Response, err error) {
	if err != nil {
		status := http.StatusBadGateway
		var reqErr *clients.RequestError
		if errors.As(err, &reqErr) && reqErr.Status == http.StatusServiceUnavailable {
			status = http.StatusServiceUnavailable
		}
		logging.FromCtx(r.Context()).Error("catalog request failed", "path", r.URL.Path, "error", err)
		writeError(w, r, status, "catalog request failed")
		return
	}
	defer resp.Body.Close()
	copyUpstreamResponse(w, resp)
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	resp, err := h.catalog.ListProducts(r.Context(), r.URL.RawQuery, proxyHeaders(r))
	h.proxyCatalog(w, r, resp, err)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	resp, err := h.catalog.GetProduct(r.Context(), chi.URLParam(r, "id"), r.URL.RawQuery, proxyHeaders(r))
	h.proxyCatalog(w, r, resp, err)
}

func (h *Handler) GetProductBySlug(w http.ResponseWriter, r *http.Request) {
	resp, err := h.catalog.GetProductBySlug(r.Context(), chi.URLParam(r, "slug"), r.URL.RawQuery, proxyHeaders(r))
	h.proxyCatalog(w, r, resp, err)
}

// lookupProduct resolves a product for the cart or wishlist, writing the error
// response itself when it fails.
func (h *Handler) lookupProduct(w http.ResponseWriter, r *http.Request, id string) (*clients.Product, bool) {
	p, err := h.catalog.LookupProduct(r.Context(), id)
	if err == nil {
		return p, true
	}
	var reqErr *clients.RequestError
	if errors.As(err, &reqErr) && reqErr.Status == http.StatusNotFound {
		writeError(w, r, http.StatusNotFound, "product not found")
		return nil, false
	}
	writeCheckoutError(w, r, err, nil)
	return nil, false
}
