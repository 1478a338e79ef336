package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/metrics"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
)

type RouterOptions struct {
	CORSAllowOrigins []string
	Metrics          *metrics.Metrics
	Logger           *slog.Logger
}

func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Logger)
	r.Use(middleware.CORS(opts.CORSAllowOrigins))
	r.Use(middleware.CorrelationID)
	r.Use(requestLogger(logger))
	r.Use(opts.Metrics.Middleware)

	r.Get("/health", h.Health)
	r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())

	r.Get("/orders/{orderId}/verify", h.VerifyOrder)

	r.Get("/products", h.ListProducts)
	r.Get("/products/{id}", h.GetProduct)
	r.Get("/products/slug/{slug}", h.GetProductBySlug)

	r.Route("/me", func(r chi.Router) {
		r.Use(middleware.RequireSession)

		r.Get("/cart", h.GetCart)
		r.Post("/cart/items", h.AddItem)
		r.Put("/cart/items/{productId}", h.SetQuantity)
		r.Delete("/cart/items/{productId}", h.RemoveItem)
		r.Delete("/cart", h.ClearCart)

		r.Get("/wishlist", h.GetWishlist)
		r.Post("/wishlist", h.AddToWishlist)
		r.Delete("/wishlist/{productId}", h.RemoveFromWishlist)
		r.Delete("/wishlist", h.ClearWishlist)

		r.Post("/checkout", h.SubmitCheckout)
		r.Get("/checkout", h.GetCheckout)
		r.Delete("/checkout", h.CancelCheckout)
		r.Post("/checkout/resume", h.ResumeCheckout)
	})

	return r
}
