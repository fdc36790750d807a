package payment

import (
	"context"
	"fmt"

	"github.com/danupranata/kasirpos/internal/httpx"
)

// InitiateRequest is the payload for requesting a payment QR from the
// backend.
type InitiateRequest struct {
	OrderID       string `json:"orderId"`
	Amount        int64  `json:"amount"`
	CustomerName  string `json:"customerName,omitempty"`
	CustomerPhone string `json:"customerPhone,omitempty"`
	Description   string `json:"description,omitempty"`
}

// InitiateResult is the normalized QR response. ExpiresIn is the remaining
// window in seconds when the backend resumes an existing bill; zero means
// the terminal applies its configured default.
type InitiateResult struct {
	QRPayload string
	ExpiresIn int
}

// API is the pair of backend payment calls the session controller needs.
type API interface {
	InitiatePayment(ctx context.Context, req *InitiateRequest) (*InitiateResult, error)
	CancelPayment(ctx context.Context, orderID string) (bool, error)
}

// BackendAPI talks to the merchant backend payment endpoints.
type BackendAPI struct {
	http *httpx.Client
}

func NewBackendAPI(client *httpx.Client) *BackendAPI {
	return &BackendAPI{http: client}
}

func (a *BackendAPI) InitiatePayment(ctx context.Context, req *InitiateRequest) (*InitiateResult, error) {
	// Providers differ on the field name; accept either and normalize.
	var resp struct {
		QRPayload string `json:"qrPayload"`
		QRContent string `json:"qrContent"`
		ExpiresIn int    `json:"expiresIn"`
	}
	if err := a.http.PostJSON(ctx, "/payment/initiate", req, &resp); err != nil {
		return nil, err
	}

	payload := resp.QRPayload
	if payload == "" {
		payload = resp.QRContent
	}
	if payload == "" {
		return nil, fmt.Errorf("backend returned no QR payload for order %s", req.OrderID)
	}
	return &InitiateResult{QRPayload: payload, ExpiresIn: resp.ExpiresIn}, nil
}

func (a *BackendAPI) CancelPayment(ctx context.Context, orderID string) (bool, error) {
	var resp struct {
		Success bool `json:"success"`
	}
	body := map[string]string{"orderId": orderID}
	if err := a.http.PostJSON(ctx, "/payment/cancel", body, &resp); err != nil {
		return false, err
	}
	return resp.Success, nil
}
