package clients

import (
	"context"
	"net/http"
)

type PaymentItem struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	ProductID   string  `json:"productId"`
}

type PaymentCustomer struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

type PaymentShippingAddress struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Apartment  string `json:"apartment"`
	Floor      string `json:"floor"`
	Building   string `json:"building"`
}

type PaymentRequest struct {
	Amount          float64                `json:"amount"`
	OrderID         string                 `json:"orderId"`
	UserID          string                 `json:"userId"`
	Items           []PaymentItem          `json:"items"`
	Customer        PaymentCustomer        `json:"customer"`
	ShippingAddress PaymentShippingAddress `json:"shipping_address"`
}

type PaymentSession struct {
	PaymentURL string `json:"paymentUrl"`
}

const paymentFailedMessage = "Payment processing failed"

type PaymentClient struct{ c *Client }

func NewPaymentClient(c *Client) *PaymentClient { return &PaymentClient{c: c} }

// CreatePayment asks the payment API for a hosted payment page. A 2xx answer
// without a paymentUrl is treated the same as a non-2xx one.
func (pc *PaymentClient) CreatePayment(ctx context.Context, req PaymentRequest) (*PaymentSession, error) {
	var out struct {
		PaymentSession
		Error string `json:"error"`
	}
	err := pc.c.doJSON(ctx, call{
		Op:       "create payment",
		Method:   http.MethodPost,
		Path:     "/api/payment/create-payment",
		Fallback: paymentFailedMessage,
	}, req, &out)
	if err != nil {
		return nil, err
	}
	if out.PaymentURL == "" {
		msg := out.Error
		if msg == "" {
			msg = paymentFailedMessage
		}
		return nil, &RequestError{Op: "create payment", Status: http.StatusOK, Message: msg}
	}
	return &out.PaymentSession, nil
}
