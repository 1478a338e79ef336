package checkout

import (
	"strings"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
)

const (
	orderCountry   = "Egypt"
	paymentCountry = "EGY"
	defaultState   = "Cairo"
	defaultPostal  = "00000"
	notApplicable  = "NA"
	egyptDialCode  = "+20"

	maxPersonName     = 30
	maxItemName       = 50
	maxItemDesc       = 100
	maxStreet         = 100
	maxCity           = 30
	maxStateName      = 30
	pendingOrderState = "pending"
)

// BuildOrderRequest maps a cart snapshot and shipping form to the backend order body.
func BuildOrderRequest(userID string, snap cart.Snapshot, form ShippingForm) clients.OrderRequest {
	items := make([]clients.OrderItem, 0, len(snap.Items))
	for _, it := range snap.Items {
		items = append(items, clients.OrderItem{
			Product: it.ProductID,
			Name:    it.Name,
			Image:   it.Image,
			Price:   it.UnitPrice.InexactFloat64(),
			Qty:     it.Quantity,
		})
	}

	return clients.OrderRequest{
		User:       userID,
		OrderItems: items,
		ShippingAddress: clients.OrderShippingAddress{
			Address:    form.Address,
			City:       form.City,
			PostalCode: form.Zip,
			Country:    orderCountry,
		},
		PaymentMethod: string(form.PaymentMethod),
		Subtotal:      snap.Subtotal.InexactFloat64(),
		ShippingCost:  snap.ShippingCost.InexactFloat64(),
		TotalPrice:    snap.Total.InexactFloat64(),
		Status:        pendingOrderState,
	}
}

// BuildPaymentRequest maps the created order to the payment gateway body,
// applying the gateway's field limits and defaults.
func BuildPaymentRequest(userID, orderID string, snap cart.Snapshot, form ShippingForm) clients.PaymentRequest {
	items := make([]clients.PaymentItem, 0, len(snap.Items))
	for _, it := range snap.Items {
		desc := truncate(it.Description, maxItemDesc)
		if desc == "" {
			desc = truncate(it.Name, maxItemDesc)
		}
		items = append(items, clients.PaymentItem{
			Name:        truncate(it.Name, maxItemName),
			Description: desc,
			Price:       it.UnitPrice.InexactFloat64(),
			Quantity:    it.Quantity,
			ProductID:   it.ProductID,
		})
	}

	return clients.PaymentRequest{
		Amount:  snap.Total.InexactFloat64(),
		OrderID: orderID,
		UserID:  userID,
		Items:   items,
		Customer: clients.PaymentCustomer{
			FirstName:   truncate(form.FirstName, maxPersonName),
			LastName:    truncate(form.LastName, maxPersonName),
			Email:       form.Email,
			PhoneNumber: NormalizePhone(form.Phone),
		},
		ShippingAddress: clients.PaymentShippingAddress{
			Street:     truncate(form.Address, maxStreet),
			City:       truncate(form.City, maxCity),
			State:      orDefault(truncate(form.State, maxStateName), defaultState),
			PostalCode: orDefault(form.Zip, defaultPostal),
			Country:    paymentCountry,
			Apartment:  notApplicable,
			Floor:      notApplicable,
			Building:   notApplicable,
		},
	}
}

// NormalizePhone returns the number in +20 international form.
// Numbers already starting with +20 are kept as-is; otherwise one leading
// zero is dropped and the dial code prefixed.
func NormalizePhone(phone string) string {
	if strings.HasPrefix(phone, egyptDialCode) {
		return phone
	}
	return egyptDialCode + strings.TrimPrefix(phone, "0")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
