package pending

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("pending order not found")

// Marker records that a shopper was sent to the payment page for an order.
// It survives restarts so a returning shopper can be reconciled.
type Marker struct {
	SessionID  string    `json:"sessionId"`
	OrderID    string    `json:"orderId"`
	PaymentURL string    `json:"paymentUrl,omitempty"`
	CreatedAt  time.Time `json:"timestamp"`
}

// Stale reports whether the marker is older than maxAge at now.
// A non-positive maxAge never expires markers.
func (m Marker) Stale(now time.Time, maxAge time.Duration) bool {
	if maxAge <= 0 {
		return false
	}
	return now.Sub(m.CreatedAt) > maxAge
}

// Store persists at most one marker per shopper session.
type Store interface {
	Save(ctx context.Context, m Marker) error
	Get(ctx context.Context, sessionID string) (Marker, error)
	Delete(ctx context.Context, sessionID string) error
}
