package checkout

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrEmptyCart         = errors.New("cart is empty, nothing to checkout")
	ErrSubmitInProgress  = errors.New("checkout already in progress")
	ErrNoPendingOrder    = errors.New("no pending order to resume")
	ErrPaymentTimeout    = errors.New("payment was not confirmed in time, check your order status")
	ErrIllegalTransition = errors.New("illegal transition of checkout state")
)

// ValidationError lists the form fields that failed validation, keyed by the
// field's JSON name. Values are translation keys for the storefront UI.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	return "invalid checkout form: " + strings.Join(names, ", ")
}

// VerificationError is returned when the success view cannot confirm an order.
type VerificationError struct {
	OrderID string
	Reason  string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("order %s: %s", e.OrderID, e.Reason)
}
