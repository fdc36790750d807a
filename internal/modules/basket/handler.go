package basket

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/danupranata/kasirpos/internal/modules/inventory"
)

// ProductLookup resolves catalog products for adds and stock clamps.
type ProductLookup interface {
	Lookup(id string) (inventory.Product, bool)
}

// Handler exposes basket HTTP endpoints for the POS front-end.
type Handler struct {
	store    *Store
	products ProductLookup
}

func NewHandler(store *Store, products ProductLookup) *Handler {
	return &Handler{store: store, products: products}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/basket", func(r chi.Router) {
		r.Get("/", h.getBasket)          // GET    /api/v1/basket
		r.Delete("/", h.clearBasket)     // DELETE /api/v1/basket
		r.Post("/items", h.addItem)      // POST   /api/v1/basket/items
		r.Put("/items/{key}", h.setItem) // PUT    /api/v1/basket/items/{key}
	})
}

// basketView is what every mutation returns: the canonical merged basket
// and the amount due.
type basketView struct {
	Items []LineItem `json:"items"`
	Total int64      `json:"total"`
}

func (h *Handler) view() basketView {
	merged := h.store.Merged()
	return basketView{Items: merged, Total: Total(merged)}
}

func (h *Handler) getBasket(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, h.view())
}

func (h *Handler) clearBasket(w http.ResponseWriter, r *http.Request) {
	h.store.Clear()
	respond(w, http.StatusOK, h.view())
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	var item LineItem
	if req.ProductID != "" {
		p, ok := h.products.Lookup(req.ProductID)
		if !ok {
			respond(w, http.StatusNotFound, map[string]string{"error": "product not found: " + req.ProductID})
			return
		}
		item = LineItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			UnitPrice:   p.Price,
			Quantity:    req.Quantity,
			Notes:       req.Notes,
		}
	} else {
		if req.ProductName == "" || req.UnitPrice <= 0 {
			respond(w, http.StatusBadRequest, map[string]string{"error": "product_id, or product_name with a positive unit_price, is required"})
			return
		}
		item = LineItem{
			ProductName: req.ProductName,
			UnitPrice:   req.UnitPrice,
			Quantity:    req.Quantity,
			Notes:       req.Notes,
		}
	}

	h.store.Add(item)
	respond(w, http.StatusOK, h.view())
}

func (h *Handler) setItem(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var req SetQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	// Text-field input: anything that does not parse as a positive number
	// means "remove the line".
	n, err := strconv.Atoi(strings.TrimSpace(req.Quantity))
	if err != nil {
		n = 0
	}

	var stock *int
	if p, ok := h.products.Lookup(key); ok && p.TrackStock {
		bound := p.Stock
		stock = &bound
	}

	if !h.store.SetQuantity(key, n, stock) {
		respond(w, http.StatusNotFound, map[string]string{"error": "no basket line for key: " + key})
		return
	}
	respond(w, http.StatusOK, h.view())
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
