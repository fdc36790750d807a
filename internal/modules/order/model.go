package order

import (
	"time"

	"github.com/danupranata/kasirpos/internal/modules/basket"
)

// ServiceType indicates how the customer takes the order.
type ServiceType string

const (
	ServiceDineIn   ServiceType = "dinein"
	ServiceTakeaway ServiceType = "takeaway"
)

// Customer identifies the paying customer, when the cashier records one.
type Customer struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// Order is the submitted snapshot of a basket. It is built once per
// submission and immutable after the backend acknowledges it; the backend's
// salesId is the only field attached afterwards.
type Order struct {
	OrderID     string            `json:"orderId"`
	SalesID     string            `json:"salesId,omitempty"`
	MerchantID  string            `json:"merchantId"`
	Items       []basket.LineItem `json:"items"`
	Subtotal    int64             `json:"subtotal"`
	ServiceType ServiceType       `json:"serviceType"`
	TableNumber string            `json:"tableNumber,omitempty"`
	Customer    *Customer         `json:"customer,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// SubmitRequest is the payload for submitting the current basket.
type SubmitRequest struct {
	ServiceType string    `json:"service_type"`
	TableNumber string    `json:"table_number,omitempty"`
	Customer    *Customer `json:"customer,omitempty"`
}
