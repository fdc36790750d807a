package payment

import (
	"sync"
	"time"
)

// ExpiryTimer counts down to a deadline at one-second resolution and fires
// exactly once when the deadline passes. Stop cancels a timer that has not
// fired so an already-terminal session can never be expired afterwards.
type ExpiryTimer struct {
	expiresAt time.Time
	tick      time.Duration
	expired   chan struct{}
	stop      chan struct{}
	stopOnce  sync.Once
}

// NewExpiryTimer starts a countdown to expiresAt.
func NewExpiryTimer(expiresAt time.Time) *ExpiryTimer {
	return newExpiryTimer(expiresAt, time.Second)
}

func newExpiryTimer(expiresAt time.Time, tick time.Duration) *ExpiryTimer {
	t := &ExpiryTimer{
		expiresAt: expiresAt,
		tick:      tick,
		expired:   make(chan struct{}),
		stop:      make(chan struct{}),
	}
	go t.run()
	return t
}

func (t *ExpiryTimer) run() {
	ticker := time.NewTicker(t.tick)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			// stop wins a simultaneous tick
			select {
			case <-t.stop:
				return
			default:
			}
			if !time.Now().Before(t.expiresAt) {
				close(t.expired)
				return
			}
		}
	}
}

// Expired closes when the countdown reaches zero. It never fires after
// Stop.
func (t *ExpiryTimer) Expired() <-chan struct{} {
	return t.expired
}

// Stop cancels the countdown. Safe to call more than once and after the
// timer has fired.
func (t *ExpiryTimer) Stop() {
	t.stopOnce.Do(func() { close(t.stop) })
}

// Remaining returns the time left on the countdown, never negative.
func (t *ExpiryTimer) Remaining() time.Duration {
	d := time.Until(t.expiresAt)
	if d < 0 {
		return 0
	}
	return d
}
