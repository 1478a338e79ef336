package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

type OrderItem struct {
	Product string  `json:"product"`
	Name    string  `json:"name"`
	Image   string  `json:"image"`
	Price   float64 `json:"price"`
	Qty     int     `json:"qty"`
}

type OrderShippingAddress struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type OrderRequest struct {
	User            string               `json:"user"`
	OrderItems      []OrderItem          `json:"orderItems"`
	ShippingAddress OrderShippingAddress `json:"shippingAddress"`
	PaymentMethod   string               `json:"paymentMethod"`
	Subtotal        float64              `json:"subtotal"`
	ShippingCost    float64              `json:"shippingCost"`
	TotalPrice      float64              `json:"totalPrice"`
	Status          string               `json:"status"`
}

// CreatedOrder is the part of the created order the storefront keeps.
type CreatedOrder struct {
	ID string
}

// The order API answers with a document id ("_id"); plain "id" is accepted too.
func (o *CreatedOrder) UnmarshalJSON(b []byte) error {
	var raw struct {
		MongoID string `json:"_id"`
		ID      string `json:"id"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	o.ID = raw.MongoID
	if o.ID == "" {
		o.ID = raw.ID
	}
	return nil
}

type OrderStatus struct {
	IsPaid bool   `json:"isPaid"`
	Status string `json:"status,omitempty"`
}

type VerifiedOrder struct {
	ID            string  `json:"_id,omitempty"`
	IsPaid        bool    `json:"isPaid"`
	PaymentMethod string  `json:"paymentMethod"`
	Status        string  `json:"status,omitempty"`
	TotalPrice    float64 `json:"totalPrice,omitempty"`
}

type OrderClient struct{ c *Client }

func NewOrderClient(c *Client) *OrderClient { return &OrderClient{c: c} }

func (oc *OrderClient) CreateOrder(ctx context.Context, req OrderRequest) (*CreatedOrder, error) {
	var out CreatedOrder
	if err := oc.c.doJSON(ctx, call{Op: "create order", Method: http.MethodPost, Path: "/api/orders"}, req, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, &RequestError{Op: "create order", Status: http.StatusOK, Message: "order id missing in response"}
	}
	return &out, nil
}

func (oc *OrderClient) GetOrderStatus(ctx context.Context, orderID string) (*OrderStatus, error) {
	var out OrderStatus
	if err := oc.c.doJSON(ctx, call{Op: "get order status", Method: http.MethodGet, Path: "/api/orders/" + url.PathEscape(orderID) + "/status"}, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (oc *OrderClient) VerifyOrder(ctx context.Context, orderID string) (*VerifiedOrder, error) {
	var out struct {
		Order *VerifiedOrder `json:"order"`
	}
	if err := oc.c.doJSON(ctx, call{Op: "verify order", Method: http.MethodGet, Path: "/api/orders/" + url.PathEscape(orderID) + "/verify"}, nil, &out); err != nil {
		return nil, err
	}
	if out.Order == nil {
		return nil, &RequestError{Op: "verify order", Status: http.StatusOK, Message: "Verification failed"}
	}
	if out.Order.ID == "" {
		out.Order.ID = orderID
	}
	return out.Order, nil
}
