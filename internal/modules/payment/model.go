package payment

import (
	"errors"
	"strings"
	"time"
)

// State is the lifecycle state of a payment session.
type State string

const (
	StateRequested     State = "REQUESTED"
	StateActive        State = "ACTIVE"
	StatePaid          State = "PAID"
	StateExpired       State = "EXPIRED"
	StateCancelled     State = "CANCELLED"
	StateRequestFailed State = "REQUEST_FAILED"
)

// validTransitions defines the session state machine. Terminal states have
// no exits; a new order needs a new controller.
var validTransitions = map[State][]State{
	StateRequested:     {StateActive, StateRequestFailed},
	StateActive:        {StatePaid, StateExpired, StateCancelled},
	StatePaid:          {},
	StateExpired:       {},
	StateCancelled:     {},
	StateRequestFailed: {},
}

// Terminal reports whether no further transitions are defined out of s.
func (s State) Terminal() bool {
	return len(validTransitions[s]) == 0
}

func canTransition(from, to State) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Session is the one payment attempt for an order: the QR the customer
// scans plus the countdown window the terminal honors.
type Session struct {
	OrderID   string    `json:"orderId"`
	QRPayload string    `json:"qrPayload"`
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	State     State     `json:"state"`
}

var (
	// ErrPaymentRequestFailed marks a failed QR-generation call; the
	// session lands in REQUEST_FAILED and a retry needs a new controller.
	ErrPaymentRequestFailed = errors.New("payment request failed")

	// ErrCancelRejected marks a cancel the backend declined; the session
	// stays ACTIVE.
	ErrCancelRejected = errors.New("payment cancel rejected")
)

// paidStatus reports whether a push-event status string confirms payment.
func paidStatus(status string) bool {
	switch strings.ToUpper(status) {
	case "PAID", "SUCCESS":
		return true
	}
	return false
}
