package checkout

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/events"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/metrics"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/pending"
)

const (
	DefaultPollMaxDuration = 15 * time.Minute
	DefaultPendingMaxAge   = 24 * time.Hour
	DefaultSessionIdleTTL  = 2 * time.Hour
	DefaultSweepInterval   = time.Minute

	paymentNotConfirmed = "Payment not confirmed yet"
)

type OrderService interface {
	StatusChecker
	CreateOrder(ctx context.Context, req clients.OrderRequest) (*clients.CreatedOrder, error)
	VerifyOrder(ctx context.Context, orderID string) (*clients.VerifiedOrder, error)
}

type PaymentService interface {
	CreatePayment(ctx context.Context, req clients.PaymentRequest) (*clients.PaymentSession, error)
}

type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, meta events.EventMeta, payload events.OrderPlacedPayload) error
	PublishCheckoutCompleted(ctx context.Context, meta events.EventMeta, payload events.CheckoutCompletedPayload) error
}

type Config struct {
	PollInterval    time.Duration
	PollMaxDuration time.Duration
	PendingMaxAge   time.Duration
	// SessionIdleTTL is how long an untouched, settled session keeps its
	// orchestrator, cart and wishlist.
	SessionIdleTTL time.Duration
	SweepInterval  time.Duration
}

// Deps are the collaborators shared by every session. Orders and Payments
// are required; the rest fall back to in-process defaults.
type Deps struct {
	Orders   OrderService
	Payments PaymentService
	Pending  pending.Store
	Opener   PaymentPageOpener
	Events   EventPublisher
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

// Service owns one Orchestrator per shopper session.
type Service struct {
	carts    *cart.Registry
	orders   OrderService
	payments PaymentService
	pending  pending.Store
	opener   PaymentPageOpener
	events   EventPublisher
	metrics  *metrics.Metrics
	logger   *slog.Logger
	cfg      Config
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*Orchestrator
}

func NewService(carts *cart.Registry, deps Deps, cfg Config) *Service {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.PollMaxDuration < 0 {
		cfg.PollMaxDuration = 0
	}
	if cfg.PendingMaxAge == 0 {
		cfg.PendingMaxAge = DefaultPendingMaxAge
	}
	if cfg.SessionIdleTTL <= 0 {
		cfg.SessionIdleTTL = DefaultSessionIdleTTL
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	s := &Service{
		carts:    carts,
		orders:   deps.Orders,
		payments: deps.Payments,
		pending:  deps.Pending,
		opener:   deps.Opener,
		events:   deps.Events,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
		cfg:      cfg,
		now:      time.Now,
		sessions: make(map[string]*Orchestrator),
	}
	if s.pending == nil {
		s.pending = pending.NewMemoryStore()
	}
	if s.opener == nil {
		s.opener = RedirectOpener{}
	}
	if s.events == nil {
		s.events = events.NopPublisher{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "checkout")
	return s
}

// Session returns the orchestrator for sessionID, creating it on first use.
// Every call counts as activity for the idle sweep.
func (s *Service) Session(sessionID, userID string) *Orchestrator {
	s.mu.Lock()
	store := s.carts.Get(sessionID)
	o, ok := s.sessions[sessionID]
	if !ok {
		o = newOrchestrator(s, sessionID, store)
		s.sessions[sessionID] = o
	}
	s.mu.Unlock()

	o.setUser(userID)
	return o
}

// Verify confirms an order for the success view. An unpaid card order is
// reported as a *VerificationError.
func (s *Service) Verify(ctx context.Context, orderID string) (*clients.VerifiedOrder, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, &VerificationError{Reason: "missing order id"}
	}
	order, err := s.orders.VerifyOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.IsPaid && isCardPayment(order.PaymentMethod) {
		return nil, &VerificationError{OrderID: orderID, Reason: paymentNotConfirmed}
	}
	return order, nil
}

// Sweep releases sessions idle for longer than SessionIdleTTL whose checkout
// is settled. The orchestrator, cart and wishlist go together; sessions with
// a running watcher or an in-flight submit are kept.
func (s *Service) Sweep() int {
	cutoff := s.now().Add(-s.cfg.SessionIdleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	released := 0
	for _, id := range s.carts.IdleSince(cutoff) {
		if o, ok := s.sessions[id]; ok {
			if !o.settled() {
				continue
			}
			delete(s.sessions, id)
		}
		s.carts.Forget(id)
		released++
	}
	return released
}

// Run sweeps idle sessions every SweepInterval until ctx is done.
func (s *Service) Run(ctx context.Context) {
	t := time.NewTicker(s.cfg.SweepInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Info("released idle sessions", "count", n)
			}
		}
	}
}

// Shutdown cancels every running payment watcher. Pending markers are kept.
func (s *Service) Shutdown() {
	s.mu.Lock()
	sessions := make([]*Orchestrator, 0, len(s.sessions))
	for _, o := range s.sessions {
		sessions = append(sessions, o)
	}
	s.mu.Unlock()

	for _, o := range sessions {
		o.Cancel()
	}
}

func isCardPayment(method string) bool {
	switch method {
	case "credit_card", string(CreditCard):
		return true
	}
	return false
}
