package realtime

import "context"

// ChannelPaymentSuccess is the push channel the backend publishes payment
// confirmations on. All terminals share it; events are routed to interested
// sessions by order id.
const ChannelPaymentSuccess = "payment:success"

// Event is one payment status push from the backend.
type Event struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
	Amount  int64  `json:"amount,omitempty"`
}

// Notifier delivers payment status events for a single order id. Subscribe
// returns a receive channel and an unsubscribe func; callers must invoke the
// latter when their session terminates so listeners never leak across
// sessions. The notifier owns the underlying connection lifecycle; callers
// only attach and detach.
type Notifier interface {
	Subscribe(ctx context.Context, orderID string) (<-chan Event, func(), error)
}
