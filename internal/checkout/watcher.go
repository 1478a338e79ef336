package checkout

import (
	"context"
	"log/slog"
	"time"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/metrics"
)

const DefaultPollInterval = 3 * time.Second

// StatusChecker reads the payment status of an order.
type StatusChecker interface {
	GetOrderStatus(ctx context.Context, orderID string) (*clients.OrderStatus, error)
}

type WatcherConfig struct {
	OrderID     string
	Interval    time.Duration
	MaxDuration time.Duration

	// OnPaid runs once, after polling has stopped.
	OnPaid func(ctx context.Context)
	// OnTimeout runs once when MaxDuration elapses without payment.
	OnTimeout func()
}

// Watcher polls the order status until the order is paid, the watcher is
// cancelled, or the maximum duration elapses. The first poll happens one
// interval after start.
type Watcher struct {
	orders  StatusChecker
	cfg     WatcherConfig
	logger  *slog.Logger
	metrics *metrics.Metrics

	cancel context.CancelFunc
	done   chan struct{}
}

func StartWatcher(ctx context.Context, orders StatusChecker, cfg WatcherConfig, logger *slog.Logger, m *metrics.Metrics) *Watcher {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(ctx)
	w := &Watcher{
		orders:  orders,
		cfg:     cfg,
		logger:  logger.With("orderId", cfg.OrderID),
		metrics: m,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	m.WatcherStarted()
	go w.run(ctx)
	return w
}

// Cancel stops polling. It does not wait for an in-flight poll to return.
func (w *Watcher) Cancel() {
	w.cancel()
}

// Done is closed once the polling goroutine has exited.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)
	defer w.metrics.WatcherStopped()
	defer w.cancel()

	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	var deadline <-chan time.Time
	if w.cfg.MaxDuration > 0 {
		timer := time.NewTimer(w.cfg.MaxDuration)
		defer timer.Stop()
		deadline = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-deadline:
			w.logger.Warn("payment not confirmed before deadline", "maxDuration", w.cfg.MaxDuration)
			if w.cfg.OnTimeout != nil {
				w.cfg.OnTimeout()
			}
			return
		case <-ticker.C:
			if w.poll(ctx) {
				if w.cfg.OnPaid != nil {
					w.cfg.OnPaid(ctx)
				}
				return
			}
		}
	}
}

func (w *Watcher) poll(ctx context.Context) bool {
	st, err := w.orders.GetOrderStatus(ctx, w.cfg.OrderID)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		w.metrics.ObservePoll(metrics.PollError)
		w.logger.Warn("payment status poll failed", "error", err)
		return false
	}
	if !st.IsPaid {
		w.metrics.ObservePoll(metrics.PollUnpaid)
		return false
	}
	w.metrics.ObservePoll(metrics.PollPaid)
	return true
}
