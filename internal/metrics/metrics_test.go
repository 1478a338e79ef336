package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveCheckout("creditCard", OutcomeFailed)
	m.ObservePoll(PollError)
	m.WatcherStarted()
	m.WatcherStopped()

	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestCheckoutCounters(t *testing.T) {
	m := New()
	m.ObserveCheckout("cashOnDelivery", OutcomeCompleted)
	m.ObserveCheckout("cashOnDelivery", OutcomeCompleted)
	m.ObservePoll(PollUnpaid)
	m.WatcherStarted()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CheckoutsTotal.WithLabelValues("cashOnDelivery", OutcomeCompleted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PaymentPollsTotal.WithLabelValues(PollUnpaid)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActiveWatchers))
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/orders/{orderId}/verify", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/abc/verify", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/orders/{orderId}/verify", "200")))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "storefront_http_requests_total")
}
