package order

import (
	"context"

	"github.com/danupranata/kasirpos/internal/httpx"
)

// CreateOrderResponse is the backend's acknowledgment of a created order.
type CreateOrderResponse struct {
	SalesID string `json:"salesId"`
	OrderID string `json:"orderId"`
}

// BackendAPI submits orders over the merchant backend REST API.
type BackendAPI struct {
	http *httpx.Client
}

func NewBackendAPI(client *httpx.Client) *BackendAPI {
	return &BackendAPI{http: client}
}

func (a *BackendAPI) CreateOrder(ctx context.Context, o *Order) (*CreateOrderResponse, error) {
	var resp CreateOrderResponse
	if err := a.http.PostJSON(ctx, "/order/create", o, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
