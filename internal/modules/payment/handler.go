package payment

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/danupranata/kasirpos/internal/logger"
	"github.com/danupranata/kasirpos/internal/realtime"
)

// Handler exposes payment session endpoints. One session is live per
// terminal; starting another replaces the previous one.
type Handler struct {
	api      API
	notifier realtime.Notifier
	log      *logger.Logger
	timeout  time.Duration

	mu      sync.Mutex
	current *Controller
}

func NewHandler(api API, notifier realtime.Notifier, log *logger.Logger, timeout time.Duration) *Handler {
	return &Handler{api: api, notifier: notifier, log: log, timeout: timeout}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/payments", func(r chi.Router) {
		r.Post("/", h.startSession)                // POST /api/v1/payments
		r.Get("/current", h.getCurrent)            // GET  /api/v1/payments/current
		r.Post("/current/cancel", h.cancelCurrent) // POST /api/v1/payments/current/cancel
	})
}

// StartSessionRequest is the payload for opening a payment session for a
// submitted order.
type StartSessionRequest struct {
	OrderID       string `json:"order_id"`
	Amount        int64  `json:"amount"`
	CustomerName  string `json:"customer_name,omitempty"`
	CustomerPhone string `json:"customer_phone,omitempty"`
	Description   string `json:"description,omitempty"`
}

// sessionView is the session as the front-end renders it: state, QR, and
// the countdown in whole seconds.
type sessionView struct {
	Session
	RemainingSeconds int `json:"remainingSeconds"`
}

func viewOf(c *Controller) sessionView {
	return sessionView{
		Session:          c.Session(),
		RemainingSeconds: int(c.Remaining() / time.Second),
	}
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request) {
	var req StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.OrderID == "" {
		respond(w, http.StatusBadRequest, map[string]string{"error": "order_id is required"})
		return
	}
	if req.Amount <= 0 {
		respond(w, http.StatusBadRequest, map[string]string{"error": "amount must be greater than 0"})
		return
	}

	ctl := NewController(h.api, h.notifier, h.log, &InitiateRequest{
		OrderID:       req.OrderID,
		Amount:        req.Amount,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Description:   req.Description,
	}, h.timeout)

	if err := ctl.Start(r.Context()); err != nil {
		if errors.Is(err, ErrPaymentRequestFailed) {
			respond(w, http.StatusBadGateway, map[string]interface{}{
				"error": err.Error(),
				"state": ctl.State(),
			})
			return
		}
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	h.mu.Lock()
	prev := h.current
	h.current = ctl
	h.mu.Unlock()

	// one live session per terminal: replace, never append
	if prev != nil {
		prev.Release()
	}

	respond(w, http.StatusCreated, viewOf(ctl))
}

func (h *Handler) getCurrent(w http.ResponseWriter, r *http.Request) {
	ctl := h.currentController()
	if ctl == nil {
		respond(w, http.StatusNotFound, map[string]string{"error": "no payment session"})
		return
	}
	respond(w, http.StatusOK, viewOf(ctl))
}

func (h *Handler) cancelCurrent(w http.ResponseWriter, r *http.Request) {
	ctl := h.currentController()
	if ctl == nil {
		respond(w, http.StatusNotFound, map[string]string{"error": "no payment session"})
		return
	}

	if err := ctl.Cancel(r.Context()); err != nil {
		code := http.StatusConflict
		if errors.Is(err, ErrCancelRejected) {
			code = http.StatusBadGateway
		}
		respond(w, code, map[string]interface{}{
			"error": err.Error(),
			"state": ctl.State(),
		})
		return
	}
	respond(w, http.StatusOK, viewOf(ctl))
}

func (h *Handler) currentController() *Controller {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
