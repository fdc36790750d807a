package inventory

import (
	"context"
	"fmt"
	"sync"
)

// Service is the terminal-side view of the catalog: a read-only cache of
// the backend's product list, refreshed on demand. Catalog management lives
// on the backend; the terminal only resolves products and stock bounds.
type Service interface {
	// Refresh replaces the cache with the backend's current product list.
	Refresh(ctx context.Context) error

	// Lookup resolves a product by id.
	Lookup(id string) (Product, bool)

	// List returns the cached products in catalog order.
	List() []Product
}

// API is the backend call the cache is fed from.
type API interface {
	ListProducts(ctx context.Context) ([]Product, error)
}

type service struct {
	api API

	mu    sync.RWMutex
	byID  map[string]Product
	order []string
}

// NewService creates an empty product cache over the backend API.
func NewService(api API) Service {
	return &service{api: api, byID: make(map[string]Product)}
}

func (s *service) Refresh(ctx context.Context) error {
	products, err := s.api.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh product list: %w", err)
	}

	byID := make(map[string]Product, len(products))
	order := make([]string, 0, len(products))
	for _, p := range products {
		if p.ID == "" {
			continue
		}
		if _, seen := byID[p.ID]; !seen {
			order = append(order, p.ID)
		}
		byID[p.ID] = p
	}

	s.mu.Lock()
	s.byID = byID
	s.order = order
	s.mu.Unlock()
	return nil
}

func (s *service) Lookup(id string) (Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	return p, ok
}

func (s *service) List() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Product, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}
