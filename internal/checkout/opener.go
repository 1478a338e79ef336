package checkout

import (
	"context"
	"fmt"
	"net/url"
	"sync/atomic"
)

// PaymentPage is a handle on the payment page shown to the shopper.
type PaymentPage interface {
	Close() error
}

// PaymentPageOpener presents the hosted payment page for a payment URL.
type PaymentPageOpener interface {
	Open(ctx context.Context, paymentURL string) (PaymentPage, error)
}

// RedirectOpener hands the payment URL back to the browser, which navigates
// to it. The returned page only tracks whether the attempt still wants it open.
type RedirectOpener struct{}

func (RedirectOpener) Open(_ context.Context, paymentURL string) (PaymentPage, error) {
	u, err := url.Parse(paymentURL)
	if err != nil || !u.IsAbs() || (u.Scheme != "https" && u.Scheme != "http") {
		return nil, fmt.Errorf("invalid payment url %q", paymentURL)
	}
	return &RedirectPage{URL: u.String()}, nil
}

type RedirectPage struct {
	URL    string
	closed atomic.Bool
}

func (p *RedirectPage) Close() error {
	p.closed.Store(true)
	return nil
}

func (p *RedirectPage) Closed() bool {
	return p.closed.Load()
}

// nopPage stands in when a watcher is restarted for a page opened in an
// earlier visit.
type nopPage struct{}

func (nopPage) Close() error { return nil }
