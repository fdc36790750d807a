package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danupranata/kasirpos/internal/modules/basket"
)

var (
	// ErrEmptyBasket blocks submission of an order with no lines.
	ErrEmptyBasket = errors.New("basket is empty")

	// ErrSubmissionFailed marks a failed order-create call. The basket is
	// left untouched so the cashier can retry.
	ErrSubmissionFailed = errors.New("order submission failed")
)

// Submitter converts a finalized basket into a persisted order. It is safe
// to call only once per basket snapshot; the caller owns the in-flight
// guard against duplicate submissions.
type Submitter interface {
	Submit(ctx context.Context, items []basket.LineItem, opts SubmitOptions) (*Order, error)
}

// SubmitOptions carries the per-order fields outside the basket itself.
type SubmitOptions struct {
	ServiceType ServiceType
	TableNumber string
	Customer    *Customer
}

// API is the backend order-create call.
type API interface {
	CreateOrder(ctx context.Context, o *Order) (*CreateOrderResponse, error)
}

type submitter struct {
	api        API
	merchantID string
}

// NewSubmitter creates an order submitter for one merchant.
func NewSubmitter(api API, merchantID string) Submitter {
	return &submitter{api: api, merchantID: merchantID}
}

func (s *submitter) Submit(ctx context.Context, items []basket.LineItem, opts SubmitOptions) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyBasket
	}

	serviceType := ServiceType(strings.ToLower(string(opts.ServiceType)))
	switch serviceType {
	case ServiceDineIn, ServiceTakeaway:
	default:
		return nil, fmt.Errorf("invalid service type: %q (allowed: dinein, takeaway)", opts.ServiceType)
	}

	o := &Order{
		OrderID:     uuid.NewString(),
		MerchantID:  s.merchantID,
		Items:       items,
		Subtotal:    basket.Total(items),
		ServiceType: serviceType,
		TableNumber: opts.TableNumber,
		Customer:    opts.Customer,
		CreatedAt:   time.Now(),
	}

	resp, err := s.api.CreateOrder(ctx, o)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}
	o.SalesID = resp.SalesID
	return o, nil
}
