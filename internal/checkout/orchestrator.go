package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/events"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/metrics"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/pending"
)

const successPath = "/checkout/success"

// SuccessPath is where the shopper lands after a completed checkout.
func SuccessPath(orderID string) string {
	return successPath + "?orderId=" + url.QueryEscape(orderID)
}

// Attempt is a point-in-time view of a session's checkout.
type Attempt struct {
	State         State         `json:"state"`
	OrderID       string        `json:"orderId,omitempty"`
	PaymentMethod PaymentMethod `json:"paymentMethod,omitempty"`
	PaymentURL    string        `json:"paymentUrl,omitempty"`
	Redirect      string        `json:"redirect,omitempty"`
	Error         string        `json:"error,omitempty"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// Orchestrator drives one shopper session through order creation, payment
// and confirmation. All methods are safe for concurrent use.
type Orchestrator struct {
	svc       *Service
	sessionID string
	cart      *cart.Store
	logger    *slog.Logger

	mu       sync.Mutex
	userID   string
	busy     bool
	attempt  Attempt
	watcher  *Watcher
	watchGen uint64
	page     PaymentPage
}

func newOrchestrator(svc *Service, sessionID string, store *cart.Store) *Orchestrator {
	return &Orchestrator{
		svc:       svc,
		sessionID: sessionID,
		cart:      store,
		logger:    svc.logger.With("sessionId", sessionID),
		attempt:   Attempt{State: StateIdle, UpdatedAt: svc.now()},
	}
}

func (o *Orchestrator) Snapshot() Attempt {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.attempt
}

func (o *Orchestrator) setUser(userID string) {
	o.mu.Lock()
	o.userID = userID
	o.mu.Unlock()
}

func (o *Orchestrator) user() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.userID
}

// Submit validates the form, creates the order and, for card payments,
// starts the payment flow. Guards that fail issue no upstream request.
func (o *Orchestrator) Submit(ctx context.Context, form ShippingForm) (Attempt, error) {
	if err := o.acquire(); err != nil {
		return o.Snapshot(), err
	}
	defer o.release()

	form = form.Normalized()
	method := string(form.PaymentMethod)

	snap := o.cart.Snapshot()
	if snap.Empty() {
		o.svc.metrics.ObserveCheckout(method, metrics.OutcomeRejected)
		return o.Snapshot(), ErrEmptyCart
	}
	if err := form.Validate(); err != nil {
		o.svc.metrics.ObserveCheckout(method, metrics.OutcomeRejected)
		return o.Snapshot(), err
	}

	if err := o.begin(form.PaymentMethod); err != nil {
		return o.Snapshot(), err
	}

	userID := o.user()
	created, err := o.svc.orders.CreateOrder(ctx, BuildOrderRequest(userID, snap, form))
	if err != nil {
		return o.fail(method, err)
	}
	orderID := created.ID
	if err := o.move(StateOrderCreated, func(a *Attempt) { a.OrderID = orderID }); err != nil {
		return o.fail(method, err)
	}
	o.logger.Info("order created", "orderId", orderID, "paymentMethod", method)
	o.publishOrderPlaced(ctx, orderID, userID, method, snap)

	if form.PaymentMethod == CashOnDelivery {
		o.cart.Clear()
		if err := o.complete(orderID); err != nil {
			return o.fail(method, err)
		}
		o.publishCompleted(ctx, orderID, userID, method)
		o.svc.metrics.ObserveCheckout(method, metrics.OutcomeCompleted)
		return o.Snapshot(), nil
	}

	session, err := o.svc.payments.CreatePayment(ctx, BuildPaymentRequest(userID, orderID, snap, form))
	if err != nil {
		o.dropMarker(ctx)
		return o.fail(method, err)
	}

	marker := pending.Marker{
		SessionID:  o.sessionID,
		OrderID:    orderID,
		PaymentURL: session.PaymentURL,
		CreatedAt:  o.svc.now().UTC(),
	}
	if err := o.svc.pending.Save(ctx, marker); err != nil {
		o.logger.Warn("save pending order failed", "orderId", orderID, "error", err)
	}
	page, err := o.svc.opener.Open(ctx, session.PaymentURL)
	if err != nil {
		o.dropMarker(ctx)
		return o.fail(method, fmt.Errorf("open payment page: %w", err))
	}

	o.mu.Lock()
	if err := o.transitionLocked(StateAwaitingPayment); err != nil {
		o.mu.Unlock()
		_ = page.Close()
		return o.fail(method, err)
	}
	o.attempt.PaymentURL = session.PaymentURL
	o.attempt.Redirect = session.PaymentURL
	o.page = page
	o.startWatcherLocked(ctx, orderID)
	a := o.attempt
	o.mu.Unlock()

	o.logger.Info("awaiting payment", "orderId", orderID)
	o.svc.metrics.ObserveCheckout(method, metrics.OutcomeAwaitingPayment)
	return a, nil
}

// Cancel stops payment polling for the session and returns the attempt to
// idle. The pending marker stays so Resume can pick the order up again.
func (o *Orchestrator) Cancel() Attempt {
	o.mu.Lock()
	w, page := o.watcher, o.page
	if w == nil {
		a := o.attempt
		o.mu.Unlock()
		return a
	}
	o.watcher, o.page = nil, nil
	o.watchGen++
	if err := o.transitionLocked(StateIdle); err != nil {
		o.logger.Error("cancel checkout", "error", err)
	}
	o.attempt.PaymentURL = ""
	o.attempt.Redirect = ""
	a := o.attempt
	o.mu.Unlock()

	w.Cancel()
	o.closePage(page)
	o.logger.Info("payment watcher cancelled", "orderId", a.OrderID)
	return a
}

// Resume reconciles a pending card payment left by an earlier visit.
func (o *Orchestrator) Resume(ctx context.Context) (Attempt, error) {
	o.mu.Lock()
	if o.busy {
		a := o.attempt
		o.mu.Unlock()
		return a, ErrSubmitInProgress
	}
	if o.watcher != nil {
		a := o.attempt
		o.mu.Unlock()
		return a, nil
	}
	if o.attempt.State == StateAwaitingPayment {
		// a confirmation or timeout is finishing this attempt
		a := o.attempt
		o.mu.Unlock()
		return a, ErrSubmitInProgress
	}
	o.busy = true
	o.mu.Unlock()
	defer o.release()

	marker, err := o.svc.pending.Get(ctx, o.sessionID)
	if errors.Is(err, pending.ErrNotFound) {
		return o.Snapshot(), ErrNoPendingOrder
	}
	if err != nil {
		return o.Snapshot(), fmt.Errorf("load pending order: %w", err)
	}
	if marker.Stale(o.svc.now(), o.svc.cfg.PendingMaxAge) {
		o.logger.Info("discarding stale pending order", "orderId", marker.OrderID, "createdAt", marker.CreatedAt)
		o.dropMarker(ctx)
		return o.Snapshot(), ErrNoPendingOrder
	}

	status, err := o.svc.orders.GetOrderStatus(ctx, marker.OrderID)
	if err != nil {
		return o.Snapshot(), err
	}

	method := string(CreditCard)
	if status.IsPaid {
		o.cart.Clear()
		o.dropMarker(ctx)
		if err := o.complete(marker.OrderID); err != nil {
			return o.Snapshot(), err
		}
		o.publishCompleted(ctx, marker.OrderID, o.user(), method)
		o.svc.metrics.ObserveCheckout(method, metrics.OutcomeCompleted)
		return o.Snapshot(), nil
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.transitionLocked(StateAwaitingPayment); err != nil {
		return o.attempt, err
	}
	o.attempt.OrderID = marker.OrderID
	o.attempt.PaymentMethod = CreditCard
	o.attempt.PaymentURL = marker.PaymentURL
	o.attempt.Redirect = marker.PaymentURL
	o.attempt.Error = ""
	o.page = nopPage{}
	o.startWatcherLocked(ctx, marker.OrderID)
	o.logger.Info("payment watcher resumed", "orderId", marker.OrderID)
	return o.attempt, nil
}

// settled reports whether the session has no checkout work in flight.
func (o *Orchestrator) settled() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.busy || o.watcher != nil {
		return false
	}
	switch o.attempt.State {
	case StateIdle, StateCompleted, StateFailed:
		return true
	}
	return false
}

func (o *Orchestrator) acquire() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.busy || !o.attempt.State.Resubmittable() {
		return ErrSubmitInProgress
	}
	o.busy = true
	return nil
}

func (o *Orchestrator) release() {
	o.mu.Lock()
	o.busy = false
	o.mu.Unlock()
}

func (o *Orchestrator) begin(method PaymentMethod) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.transitionLocked(StateSubmitting); err != nil {
		return err
	}
	o.attempt = Attempt{State: StateSubmitting, PaymentMethod: method, UpdatedAt: o.svc.now()}
	return nil
}

func (o *Orchestrator) move(next State, mutate func(a *Attempt)) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.transitionLocked(next); err != nil {
		return err
	}
	if mutate != nil {
		mutate(&o.attempt)
	}
	return nil
}

func (o *Orchestrator) transitionLocked(next State) error {
	if !o.attempt.State.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, o.attempt.State, next)
	}
	o.attempt.State = next
	o.attempt.UpdatedAt = o.svc.now()
	return nil
}

func (o *Orchestrator) complete(orderID string) error {
	return o.move(StateCompleted, func(a *Attempt) {
		a.OrderID = orderID
		a.PaymentURL = ""
		a.Redirect = SuccessPath(orderID)
		a.Error = ""
	})
}

func (o *Orchestrator) fail(method string, err error) (Attempt, error) {
	msg := err.Error()
	var reqErr *clients.RequestError
	if errors.As(err, &reqErr) {
		msg = reqErr.Message
	}
	_ = o.move(StateFailed, func(a *Attempt) {
		a.Error = msg
		a.PaymentURL = ""
		a.Redirect = ""
	})
	o.logger.Warn("checkout failed", "paymentMethod", method, "error", err)
	o.svc.metrics.ObserveCheckout(method, metrics.OutcomeFailed)
	return o.Snapshot(), err
}

// startWatcherLocked must be called with o.mu held.
func (o *Orchestrator) startWatcherLocked(ctx context.Context, orderID string) {
	o.watchGen++
	gen := o.watchGen
	o.watcher = StartWatcher(context.WithoutCancel(ctx), o.svc.orders, WatcherConfig{
		OrderID:     orderID,
		Interval:    o.svc.cfg.PollInterval,
		MaxDuration: o.svc.cfg.PollMaxDuration,
		OnPaid:      func(ctx context.Context) { o.paymentConfirmed(ctx, gen) },
		OnTimeout:   func() { o.paymentTimedOut(gen) },
	}, o.logger, o.svc.metrics)
}

// detachWatcher hands the running watcher's page to the caller if gen is
// still current.
func (o *Orchestrator) detachWatcher(gen uint64) (PaymentPage, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.watcher == nil || o.watchGen != gen {
		return nil, false
	}
	page := o.page
	o.watcher, o.page = nil, nil
	return page, true
}

func (o *Orchestrator) paymentConfirmed(ctx context.Context, gen uint64) {
	page, ok := o.detachWatcher(gen)
	if !ok {
		return
	}
	o.closePage(page)
	o.cart.Clear()
	o.dropMarker(ctx)

	orderID := o.Snapshot().OrderID
	if err := o.complete(orderID); err != nil {
		o.logger.Error("complete checkout", "orderId", orderID, "error", err)
		return
	}
	o.logger.Info("payment confirmed", "orderId", orderID)
	o.publishCompleted(ctx, orderID, o.user(), string(CreditCard))
	o.svc.metrics.ObserveCheckout(string(CreditCard), metrics.OutcomeCompleted)
}

func (o *Orchestrator) paymentTimedOut(gen uint64) {
	page, ok := o.detachWatcher(gen)
	if !ok {
		return
	}
	o.closePage(page)
	_ = o.move(StateFailed, func(a *Attempt) {
		a.Error = ErrPaymentTimeout.Error()
		a.PaymentURL = ""
		a.Redirect = ""
	})
	o.svc.metrics.ObserveCheckout(string(CreditCard), metrics.OutcomeTimeout)
}

func (o *Orchestrator) closePage(page PaymentPage) {
	if page == nil {
		return
	}
	if err := page.Close(); err != nil {
		o.logger.Warn("close payment page", "error", err)
	}
}

func (o *Orchestrator) dropMarker(ctx context.Context) {
	if err := o.svc.pending.Delete(ctx, o.sessionID); err != nil {
		o.logger.Warn("delete pending order failed", "error", err)
	}
}

func (o *Orchestrator) publishOrderPlaced(ctx context.Context, orderID, userID, method string, snap cart.Snapshot) {
	err := o.svc.events.PublishOrderPlaced(ctx, eventMeta(ctx, orderID), events.OrderPlacedPayload{
		OrderID:       orderID,
		SessionID:     o.sessionID,
		UserID:        userID,
		PaymentMethod: method,
		ItemCount:     snap.ItemCount,
		TotalPrice:    snap.Total.InexactFloat64(),
	})
	if err != nil {
		o.logger.Warn("publish order placed failed", "orderId", orderID, "error", err)
	}
}

func (o *Orchestrator) publishCompleted(ctx context.Context, orderID, userID, method string) {
	err := o.svc.events.PublishCheckoutCompleted(ctx, eventMeta(ctx, orderID), events.CheckoutCompletedPayload{
		OrderID:       orderID,
		SessionID:     o.sessionID,
		UserID:        userID,
		PaymentMethod: method,
	})
	if err != nil {
		o.logger.Warn("publish checkout completed failed", "orderId", orderID, "error", err)
	}
}

func eventMeta(ctx context.Context, orderID string) events.EventMeta {
	return events.EventMeta{
		CorrelationID: middleware.GetCorrelationID(ctx),
		PartitionKey:  orderID,
	}
}
