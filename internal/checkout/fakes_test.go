package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/events"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/pending"
)

const testInterval = 10 * time.Millisecond

type fakeOrders struct {
	mu          sync.Mutex
	created     []clients.OrderRequest
	statusCalls int

	createFn func(req clients.OrderRequest) (*clients.CreatedOrder, error)
	statusFn func(call int) (*clients.OrderStatus, error)
	verifyFn func(orderID string) (*clients.VerifiedOrder, error)
}

func (f *fakeOrders) CreateOrder(_ context.Context, req clients.OrderRequest) (*clients.CreatedOrder, error) {
	f.mu.Lock()
	f.created = append(f.created, req)
	fn := f.createFn
	f.mu.Unlock()
	if fn != nil {
		return fn(req)
	}
	return &clients.CreatedOrder{ID: "ord-1"}, nil
}

func (f *fakeOrders) GetOrderStatus(_ context.Context, _ string) (*clients.OrderStatus, error) {
	f.mu.Lock()
	f.statusCalls++
	call := f.statusCalls
	fn := f.statusFn
	f.mu.Unlock()
	if fn != nil {
		return fn(call)
	}
	return &clients.OrderStatus{}, nil
}

func (f *fakeOrders) VerifyOrder(_ context.Context, orderID string) (*clients.VerifiedOrder, error) {
	if f.verifyFn != nil {
		return f.verifyFn(orderID)
	}
	return &clients.VerifiedOrder{ID: orderID, IsPaid: true}, nil
}

func (f *fakeOrders) createCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

func (f *fakeOrders) polls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statusCalls
}

// paidOnCall reports the order as paid from the given poll onwards.
func paidOnCall(n int) func(call int) (*clients.OrderStatus, error) {
	return func(call int) (*clients.OrderStatus, error) {
		return &clients.OrderStatus{IsPaid: call >= n}, nil
	}
}

type fakePayments struct {
	mu   sync.Mutex
	reqs []clients.PaymentRequest
	fn   func(req clients.PaymentRequest) (*clients.PaymentSession, error)
}

func (f *fakePayments) CreatePayment(_ context.Context, req clients.PaymentRequest) (*clients.PaymentSession, error) {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	fn := f.fn
	f.mu.Unlock()
	if fn != nil {
		return fn(req)
	}
	return &clients.PaymentSession{PaymentURL: "https://pay.example.com/session/1"}, nil
}

func (f *fakePayments) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reqs)
}

type countingStore struct {
	*pending.MemoryStore
	mu      sync.Mutex
	saves   int
	deletes int
}

func newCountingStore() *countingStore {
	return &countingStore{MemoryStore: pending.NewMemoryStore()}
}

func (s *countingStore) Save(ctx context.Context, m pending.Marker) error {
	s.mu.Lock()
	s.saves++
	s.mu.Unlock()
	return s.MemoryStore.Save(ctx, m)
}

func (s *countingStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	s.deletes++
	s.mu.Unlock()
	return s.MemoryStore.Delete(ctx, sessionID)
}

func (s *countingStore) deleteCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deletes
}

func (s *countingStore) has(sessionID string) bool {
	_, err := s.MemoryStore.Get(context.Background(), sessionID)
	return err == nil
}

type fakePage struct {
	mu     sync.Mutex
	closed int
}

func (p *fakePage) Close() error {
	p.mu.Lock()
	p.closed++
	p.mu.Unlock()
	return nil
}

func (p *fakePage) closeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

type recordingOpener struct {
	mu    sync.Mutex
	urls  []string
	pages []*fakePage
	err   error
}

func (r *recordingOpener) Open(_ context.Context, paymentURL string) (PaymentPage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	p := &fakePage{}
	r.urls = append(r.urls, paymentURL)
	r.pages = append(r.pages, p)
	return p, nil
}

func (r *recordingOpener) lastPage() *fakePage {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.pages) == 0 {
		return nil
	}
	return r.pages[len(r.pages)-1]
}

type fakeEvents struct {
	mu        sync.Mutex
	placed    []events.OrderPlacedPayload
	completed []events.CheckoutCompletedPayload
}

func (f *fakeEvents) PublishOrderPlaced(_ context.Context, _ events.EventMeta, p events.OrderPlacedPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.placed = append(f.placed, p)
	return nil
}

func (f *fakeEvents) PublishCheckoutCompleted(_ context.Context, _ events.EventMeta, p events.CheckoutCompletedPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = append(f.completed, p)
	return errors.New("broker unavailable")
}

func (f *fakeEvents) completedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.completed)
}

type harness struct {
	svc      *Service
	carts    *cart.Registry
	orders   *fakeOrders
	payments *fakePayments
	store    *countingStore
	opener   *recordingOpener
	events   *fakeEvents
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()
	if cfg.PollInterval == 0 {
		cfg.PollInterval = testInterval
	}
	h := &harness{
		carts:    cart.NewRegistry(),
		orders:   &fakeOrders{},
		payments: &fakePayments{},
		store:    newCountingStore(),
		opener:   &recordingOpener{},
		events:   &fakeEvents{},
	}
	h.svc = NewService(h.carts, Deps{
		Orders:   h.orders,
		Payments: h.payments,
		Pending:  h.store,
		Opener:   h.opener,
		Events:   h.events,
	}, cfg)
	t.Cleanup(h.svc.Shutdown)
	return h
}

func (h *harness) fillCart(sessionID string) {
	store := h.carts.Get(sessionID)
	store.AddItem(cart.Item{ProductID: "p1", Name: "Desk Lamp", Image: "/img/lamp.png", UnitPrice: decimal.NewFromInt(250)})
	store.AddItem(cart.Item{ProductID: "p1", Name: "Desk Lamp", Image: "/img/lamp.png", UnitPrice: decimal.NewFromInt(250)})
}

func validForm(method PaymentMethod) ShippingForm {
	return ShippingForm{
		FirstName:     "Mona",
		LastName:      "Hassan",
		Email:         "mona@example.com",
		Phone:         "01012345678",
		Address:       "12 Nile St",
		City:          "Giza",
		State:         "Giza",
		Zip:           "12511",
		PaymentMethod: method,
	}
}
