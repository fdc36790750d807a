package inventory

import (
	"context"

	"github.com/danupranata/kasirpos/internal/httpx"
)

// BackendAPI fetches the product list over the merchant backend REST API.
type BackendAPI struct {
	http *httpx.Client
}

func NewBackendAPI(client *httpx.Client) *BackendAPI {
	return &BackendAPI{http: client}
}

func (a *BackendAPI) ListProducts(ctx context.Context) ([]Product, error) {
	var resp struct {
		Products []Product `json:"products"`
	}
	if err := a.http.GetJSON(ctx, "/product/list", &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}
