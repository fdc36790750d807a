package payment

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/danupranata/kasirpos/internal/logger"
	"github.com/danupranata/kasirpos/internal/realtime"
)

// DefaultTimeout is the QR expiry window when neither the backend nor the
// configuration supplies one.
const DefaultTimeout = 300 * time.Second

// Controller owns the lifecycle of one payment session, from the QR request
// through exactly one terminal transition. The push channel and the expiry
// countdown race freely; whichever terminal transition lands first is
// authoritative and every later one is a no-op. Expiry is advisory for the
// cashier's screen; the backend stays the source of truth for whether a
// late payment still counts.
type Controller struct {
	api      API
	notifier realtime.Notifier
	log      *logger.Logger
	req      *InitiateRequest
	timeout  time.Duration

	mu          sync.Mutex
	sess        Session
	timer       *ExpiryTimer
	unsubscribe func()
	done        chan struct{}
}

// NewController prepares a session in REQUESTED for the order named in req.
// defaultTimeout <= 0 falls back to DefaultTimeout.
func NewController(api API, notifier realtime.Notifier, log *logger.Logger, req *InitiateRequest, defaultTimeout time.Duration) *Controller {
	if defaultTimeout <= 0 {
		defaultTimeout = DefaultTimeout
	}
	return &Controller{
		api:      api,
		notifier: notifier,
		log:      log,
		req:      req,
		timeout:  defaultTimeout,
		sess: Session{
			OrderID:   req.OrderID,
			Amount:    req.Amount,
			CreatedAt: time.Now(),
			State:     StateRequested,
		},
		done: make(chan struct{}),
	}
}

// Start requests the QR payload and, on success, activates the session:
// countdown running, push-channel listener attached. On failure the session
// is terminally REQUEST_FAILED and a retry needs a fresh controller.
func (c *Controller) Start(ctx context.Context) error {
	res, err := c.api.InitiatePayment(ctx, c.req)
	if err != nil {
		c.finish(StateRequestFailed)
		return fmt.Errorf("%w: %v", ErrPaymentRequestFailed, err)
	}

	events, unsubscribe, err := c.notifier.Subscribe(ctx, c.req.OrderID)
	if err != nil {
		c.finish(StateRequestFailed)
		return fmt.Errorf("%w: %v", ErrPaymentRequestFailed, err)
	}

	ttl := c.timeout
	if res.ExpiresIn > 0 {
		// resuming an existing bill: honor the server's remaining window
		ttl = time.Duration(res.ExpiresIn) * time.Second
	}

	c.mu.Lock()
	c.sess.QRPayload = res.QRPayload
	c.sess.ExpiresAt = time.Now().Add(ttl)
	c.sess.State = StateActive
	c.timer = NewExpiryTimer(c.sess.ExpiresAt)
	c.unsubscribe = unsubscribe
	timer := c.timer
	c.mu.Unlock()

	c.log.Info("session_active", "payment session active",
		slog.String("order_id", c.req.OrderID),
		slog.Int64("amount", c.req.Amount),
		slog.Duration("expires_in", ttl))

	go c.watch(events, timer)
	return nil
}

// watch resolves the session to its terminal state: the first of a matching
// payment confirmation, the countdown firing, or an external termination.
func (c *Controller) watch(events <-chan realtime.Event, timer *ExpiryTimer) {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				// channel torn down; the countdown still governs
				events = nil
				continue
			}
			if ev.OrderID != c.req.OrderID {
				// shared channel, somebody else's payment
				continue
			}
			if !paidStatus(ev.Status) {
				c.log.Debug("session_event", "ignoring non-paid status",
					slog.String("order_id", ev.OrderID),
					slog.String("status", ev.Status))
				continue
			}
			c.finish(StatePaid)
			return
		case <-timer.Expired():
			c.finish(StateExpired)
			return
		case <-c.done:
			return
		}
	}
}

// finish applies a terminal transition. The first caller wins; later calls
// are no-ops, which makes duplicate confirmations and timer/event races
// harmless. It always stops the countdown and detaches the push-channel
// listener.
func (c *Controller) finish(to State) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sess.State.Terminal() || !canTransition(c.sess.State, to) {
		return false
	}
	c.sess.State = to

	if c.timer != nil {
		c.timer.Stop()
	}
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	close(c.done)

	c.log.Info("session_terminal", "payment session resolved",
		slog.String("order_id", c.sess.OrderID),
		slog.String("state", string(to)))
	return true
}

// Cancel asks the backend to void the payment. Only the backend's
// acknowledgment cancels the session; a rejection leaves it ACTIVE and
// surfaces ErrCancelRejected.
func (c *Controller) Cancel(ctx context.Context) error {
	c.mu.Lock()
	state := c.sess.State
	c.mu.Unlock()

	if state != StateActive {
		return fmt.Errorf("cannot cancel payment in state %s", state)
	}

	ok, err := c.api.CancelPayment(ctx, c.req.OrderID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCancelRejected, err)
	}
	if !ok {
		return fmt.Errorf("%w: backend declined", ErrCancelRejected)
	}

	// If a confirmation or the countdown beat us here, the first terminal
	// transition already won and this is a no-op.
	c.finish(StateCancelled)
	return nil
}

// Release tears the session down when a new session replaces it. The
// session is marked CANCELLED locally; no backend call is made.
func (c *Controller) Release() {
	if c.finish(StateCancelled) {
		c.log.Info("session_replaced", "payment session replaced",
			slog.String("order_id", c.req.OrderID))
	}
}

// Session returns a snapshot of the session.
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess
}

// State returns the current session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess.State
}

// Remaining returns the time left on the countdown, zero when no countdown
// is running.
func (c *Controller) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer == nil || c.sess.State.Terminal() {
		return 0
	}
	return c.timer.Remaining()
}

// Done closes once the session reaches a terminal state.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}
