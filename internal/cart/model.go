package cart

import "github.com/shopspring/decimal"

// ShippingCost is the flat shipping fee applied at checkout regardless of cart contents.
var ShippingCost = decimal.NewFromInt(70)

type Item struct {
	ProductID   string          `json:"productId"`
	Name        string          `json:"name"`
	Image       string          `json:"image,omitempty"`
	Description string          `json:"description,omitempty"`
	UnitPrice   decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

// LineTotal is UnitPrice multiplied by Quantity.
func (it Item) LineTotal() decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// Snapshot is a point-in-time copy of a cart with its derived totals.
type Snapshot struct {
	Items        []Item          `json:"items"`
	ItemCount    int             `json:"itemCount"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	ShippingCost decimal.Decimal `json:"shippingCost"`
	Total        decimal.Decimal `json:"total"`
}

func (s Snapshot) Empty() bool { return len(s.Items) == 0 }
