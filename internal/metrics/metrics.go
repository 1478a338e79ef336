// Package metrics holds the Prometheus collectors of the storefront.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

// Checkout outcomes.
const (
	OutcomeCompleted       = "completed"
	OutcomeAwaitingPayment = "awaiting_payment"
	OutcomeRejected        = "rejected"
	OutcomeFailed          = "failed"
	OutcomeTimeout         = "timeout"
)

// Poll results.
const (
	PollPaid   = "paid"
	PollUnpaid = "unpaid"
	PollError  = "error"
)

// Metrics is nil-safe: every method on a nil *Metrics is a no-op.
type Metrics struct {
	registry *prometheus.Registry

	CheckoutsTotal      *prometheus.CounterVec
	PaymentPollsTotal   *prometheus.CounterVec
	ActiveWatchers      prometheus.Gauge
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them on a fresh registry
// together with the Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		CheckoutsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "attempts_total",
			Help:      "Checkout attempts by payment method and outcome",
		}, []string{"payment_method", "outcome"}),
		PaymentPollsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "payment_polls_total",
			Help:      "Payment status polls by result",
		}, []string{"result"}),
		ActiveWatchers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "active_watchers",
			Help:      "Payment confirmation watchers currently polling",
		}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.CheckoutsTotal,
		m.PaymentPollsTotal,
		m.ActiveWatchers,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveCheckout(paymentMethod, outcome string) {
	if m == nil {
		return
	}
	m.CheckoutsTotal.WithLabelValues(paymentMethod, outcome).Inc()
}

func (m *Metrics) ObservePoll(result string) {
	if m == nil {
		return
	}
	m.PaymentPollsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) WatcherStarted() {
	if m == nil {
		return
	}
	m.ActiveWatchers.Inc()
}

func (m *Metrics) WatcherStopped() {
	if m == nil {
		return
	}
	m.ActiveWatchers.Dec()
}

// Middleware records request counts and latency labelled by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
