package order

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/go-chi/chi/v5"

	"github.com/danupranata/kasirpos/internal/modules/basket"
)

// Handler exposes order submission. It owns the in-flight guard: a second
// submit while one is pending is rejected, and the basket is cleared only
// after the backend acknowledges the order.
type Handler struct {
	submitter Submitter
	store     *basket.Store
	inFlight  atomic.Bool
}

func NewHandler(submitter Submitter, store *basket.Store) *Handler {
	return &Handler{submitter: submitter, store: store}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Post("/api/v1/orders", h.submitOrder) // POST /api/v1/orders
}

func (h *Handler) submitOrder(w http.ResponseWriter, r *http.Request) {
	if !h.inFlight.CompareAndSwap(false, true) {
		respond(w, http.StatusConflict, map[string]string{"error": "an order submission is already in flight"})
		return
	}
	defer h.inFlight.Store(false)

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	o, err := h.submitter.Submit(r.Context(), h.store.Merged(), SubmitOptions{
		ServiceType: ServiceType(req.ServiceType),
		TableNumber: req.TableNumber,
		Customer:    req.Customer,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyBasket):
			respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, ErrSubmissionFailed):
			// basket stays intact for retry
			respond(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		default:
			respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return
	}

	h.store.Clear()
	respond(w, http.StatusCreated, o)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
