//go:build integration
// +build integration

package integration

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/db"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/pending"
)

func startPostgres(ctx context.Context, t *testing.T) string {
	t.Helper()

	pgC, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("storefront"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgC.Terminate(context.Background()); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

func TestPostgresPendingStore(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	dsn := startPostgres(ctx, t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, db.RunMigrations(dsn, logger))
	require.NoError(t, db.RunMigrations(dsn, logger), "migrations are idempotent")

	pool, err := db.NewPool(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	store := pending.NewPostgresStore(pool)
	ts := time.Now().UTC().Truncate(time.Microsecond)

	require.NoError(t, store.Save(ctx, pending.Marker{SessionID: "sess-1", OrderID: "ord-1", CreatedAt: ts}))
	require.NoError(t, store.Save(ctx, pending.Marker{SessionID: "sess-1", OrderID: "ord-2", PaymentURL: "https://pay.example/p/2", CreatedAt: ts}))

	m, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "ord-2", m.OrderID)
	assert.Equal(t, "https://pay.example/p/2", m.PaymentURL)
	assert.True(t, ts.Equal(m.CreatedAt))

	require.NoError(t, store.Delete(ctx, "sess-1"))
	_, err = store.Get(ctx, "sess-1")
	require.ErrorIs(t, err, pending.ErrNotFound)
}

// A shopper sent to the payment page survives a storefront restart: the
// second service instance finds the marker and completes the checkout.
func TestCheckoutResumesAfterRestart(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	dsn := startPostgres(ctx, t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, db.RunMigrations(dsn, logger))

	pool, err := db.NewPool(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	var paid atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/orders", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{"_id": "ord-42"})
	})
	mux.HandleFunc("POST /api/payment/create-payment", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{"paymentUrl": "https://pay.example.com/s/42"})
	})
	mux.HandleFunc("GET /api/orders/{id}/status", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{"isPaid": paid.Load()})
	})
	backend := httptest.NewServer(mux)
	defer backend.Close()

	newService := func(carts *cart.Registry) *checkout.Service {
		base := clients.NewClient("backend", backend.URL, backend.Client(), clients.DefaultBreakerConfig())
		return checkout.NewService(carts, checkout.Deps{
			Orders:   clients.NewOrderClient(base),
			Payments: clients.NewPaymentClient(base),
			Pending:  pending.NewPostgresStore(pool),
			Logger:   logger,
		}, checkout.Config{PollInterval: 20 * time.Millisecond})
	}

	carts := cart.NewRegistry()
	carts.Get("sess-1").AddItem(cart.Item{ProductID: "p1", Name: "Lamp", UnitPrice: decimal.NewFromInt(100)})

	first := newService(carts)
	attempt, err := first.Session("sess-1", "guest").Submit(ctx, checkout.ShippingForm{
		FirstName: "Mona", LastName: "Hassan", Email: "mona@example.com", Phone: "01012345678",
		Address: "12 Nile St", City: "Giza", State: "Giza", Zip: "12511", PaymentMethod: checkout.CreditCard,
	})
	require.NoError(t, err)
	require.Equal(t, checkout.StateAwaitingPayment, attempt.State)
	first.Shutdown()

	paid.Store(true)
	restartedCarts := cart.NewRegistry()
	second := newService(restartedCarts)
	defer second.Shutdown()

	attempt, err = second.Session("sess-1", "guest").Resume(ctx)
	require.NoError(t, err)
	assert.Equal(t, checkout.StateCompleted, attempt.State)
	assert.Equal(t, "ord-42", attempt.OrderID)

	_, err = pending.NewPostgresStore(pool).Get(ctx, "sess-1")
	require.ErrorIs(t, err, pending.ErrNotFound)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
