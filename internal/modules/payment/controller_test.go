package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danupranata/kasirpos/internal/logger"
	"github.com/danupranata/kasirpos/internal/realtime"
)

type fakeAPI struct {
	mu          sync.Mutex
	initResult  *InitiateResult
	initErr     error
	cancelOK    bool
	cancelErr   error
	cancelCalls int
}

func (f *fakeAPI) InitiatePayment(ctx context.Context, req *InitiateRequest) (*InitiateResult, error) {
	if f.initErr != nil {
		return nil, f.initErr
	}
	if f.initResult != nil {
		return f.initResult, nil
	}
	return &InitiateResult{QRPayload: "00020101021226..."}, nil
}

func (f *fakeAPI) CancelPayment(ctx context.Context, orderID string) (bool, error) {
	f.mu.Lock()
	f.cancelCalls++
	f.mu.Unlock()
	if f.cancelErr != nil {
		return false, f.cancelErr
	}
	return f.cancelOK, nil
}

func newTestController(t *testing.T, api *fakeAPI, notifier *realtime.MemoryNotifier, orderID string) *Controller {
	t.Helper()
	return NewController(api, notifier, logger.New("test"), &InitiateRequest{
		OrderID: orderID,
		Amount:  25000,
	}, time.Minute)
}

func waitTerminal(t *testing.T, ctl *Controller, within time.Duration) {
	t.Helper()
	select {
	case <-ctl.Done():
	case <-time.After(within):
		t.Fatalf("session never reached a terminal state (still %s)", ctl.State())
	}
}

func TestStartActivatesSession(t *testing.T) {
	notifier := realtime.NewMemoryNotifier()
	ctl := newTestController(t, &fakeAPI{}, notifier, "ord-1")

	require.NoError(t, ctl.Start(context.Background()))

	sess := ctl.Session()
	assert.Equal(t, StateActive, sess.State)
	assert.Equal(t, "00020101021226...", sess.QRPayload)
	assert.Equal(t, 1, notifier.ListenerCount("ord-1"))
	assert.Greater(t, ctl.Remaining(), 50*time.Second)

	ctl.Release()
}

func TestStartFailureIsTerminal(t *testing.T) {
	notifier := realtime.NewMemoryNotifier()
	api := &fakeAPI{initErr: fmt.Errorf("gateway timeout")}
	ctl := newTestController(t, api, notifier, "ord-1")

	err := ctl.Start(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPaymentRequestFailed))
	assert.Equal(t, StateRequestFailed, ctl.State())

	waitTerminal(t, ctl, time.Second)
	assert.Zero(t, notifier.ListenerCount("ord-1"))
}

func TestPaidEventResolvesSession(t *testing.T) {
	notifier := realtime.NewMemoryNotifier()
	ctl := newTestController(t, &fakeAPI{}, notifier, "ord-x")
	require.NoError(t, ctl.Start(context.Background()))

	notifier.Publish(realtime.Event{OrderID: "ord-x", Status: "PAID", Amount: 25000})
	waitTerminal(t, ctl, time.Second)
	assert.Equal(t, StatePaid, ctl.State())

	// listener detached on terminal state
	assert.Zero(t, notifier.ListenerCount("ord-x"))

	// duplicate confirmation is a no-op
	notifier.Publish(realtime.Event{OrderID: "ord-x", Status: "PAID"})
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, StatePaid, ctl.State())
	assert.Equal(t, time.Duration(0), ctl.Remaining())
}

func TestSuccessStatusAlsoResolves(t *testing.T) {
	notifier := realtime.NewMemoryNotifier()
	ctl := newTestController(t, &fakeAPI{}, notifier, "ord-x")
	require.NoError(t, ctl.Start(context.Background()))

	notifier.Publish(realtime.Event{OrderID: "ord-x", Status: "SUCCESS"})
	waitTerminal(t, ctl, time.Second)
	assert.Equal(t, StatePaid, ctl.State())
}

func TestEventsForOtherOrdersIgnored(t *testing.T) {
	notifier := realtime.NewMemoryNotifier()
	ctl := newTestController(t, &fakeAPI{}, notifier, "ord-x")
	require.NoError(t, ctl.Start(context.Background()))
	defer ctl.Release()

	notifier.Publish(realtime.Event{OrderID: "ord-y", Status: "PAID"})
	notifier.Publish(realtime.Event{OrderID: "ord-x", Status: "FAILED"})

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, StateActive, ctl.State())
}

func TestCountdownExpiresSession(t *testing.T) {
	notifier := realtime.NewMemoryNotifier()
	api := &fakeAPI{initResult: &InitiateResult{QRPayload: "qr", ExpiresIn: 1}}
	ctl := newTestController(t, api, notifier, "ord-x")
	require.NoError(t, ctl.Start(context.Background()))

	waitTerminal(t, ctl, 3*time.Second)
	assert.Equal(t, StateExpired, ctl.State())
	assert.Zero(t, notifier.ListenerCount("ord-x"))

	// a confirmation arriving after expiry changes nothing
	notifier.Publish(realtime.Event{OrderID: "ord-x", Status: "PAID"})
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, StateExpired, ctl.State())
}

func TestPaymentBeatsCountdown(t *testing.T) {
	notifier := realtime.NewMemoryNotifier()
	api := &fakeAPI{initResult: &InitiateResult{QRPayload: "qr", ExpiresIn: 2}}
	ctl := newTestController(t, api, notifier, "ord-x")
	require.NoError(t, ctl.Start(context.Background()))

	notifier.Publish(realtime.Event{OrderID: "ord-x", Status: "PAID"})
	waitTerminal(t, ctl, time.Second)
	assert.Equal(t, StatePaid, ctl.State())

	// long after the original deadline the state is unchanged
	time.Sleep(2200 * time.Millisecond)
	assert.Equal(t, StatePaid, ctl.State())
}

func TestCancelAcknowledged(t *testing.T) {
	notifier := realtime.NewMemoryNotifier()
	api := &fakeAPI{cancelOK: true}
	ctl := newTestController(t, api, notifier, "ord-x")
	require.NoError(t, ctl.Start(context.Background()))

	require.NoError(t, ctl.Cancel(context.Background()))
	assert.Equal(t, StateCancelled, ctl.State())
	assert.Equal(t, time.Duration(0), ctl.Remaining())
	assert.Zero(t, notifier.ListenerCount("ord-x"))
	waitTerminal(t, ctl, time.Second)
}

func TestCancelRejectedStaysActive(t *testing.T) {
	notifier := realtime.NewMemoryNotifier()
	api := &fakeAPI{cancelOK: false}
	ctl := newTestController(t, api, notifier, "ord-x")
	require.NoError(t, ctl.Start(context.Background()))
	defer ctl.Release()

	err := ctl.Cancel(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCancelRejected))
	assert.Equal(t, StateActive, ctl.State())

	// the session is still live: a confirmation resolves it
	notifier.Publish(realtime.Event{OrderID: "ord-x", Status: "PAID"})
	waitTerminal(t, ctl, time.Second)
	assert.Equal(t, StatePaid, ctl.State())
}

func TestCancelOutsideActiveState(t *testing.T) {
	notifier := realtime.NewMemoryNotifier()
	ctl := newTestController(t, &fakeAPI{}, notifier, "ord-x")

	err := ctl.Cancel(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REQUESTED")
}

func TestExactlyOneTerminalTransition(t *testing.T) {
	notifier := realtime.NewMemoryNotifier()
	api := &fakeAPI{initResult: &InitiateResult{QRPayload: "qr", ExpiresIn: 1}, cancelOK: true}
	ctl := newTestController(t, api, notifier, "ord-x")
	require.NoError(t, ctl.Start(context.Background()))

	// fire everything at once; exactly one terminal state must stick
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		notifier.Publish(realtime.Event{OrderID: "ord-x", Status: "PAID"})
	}()
	go func() {
		defer wg.Done()
		_ = ctl.Cancel(context.Background())
	}()
	wg.Wait()

	waitTerminal(t, ctl, 3*time.Second)
	first := ctl.State()
	assert.True(t, first.Terminal())

	time.Sleep(1500 * time.Millisecond)
	assert.Equal(t, first, ctl.State(), "terminal state changed after the first transition")
}

func TestReleaseTearsDownSession(t *testing.T) {
	notifier := realtime.NewMemoryNotifier()
	ctl := newTestController(t, &fakeAPI{}, notifier, "ord-x")
	require.NoError(t, ctl.Start(context.Background()))

	ctl.Release()
	assert.Equal(t, StateCancelled, ctl.State())
	assert.Zero(t, notifier.ListenerCount("ord-x"))
	waitTerminal(t, ctl, time.Second)

	// releasing twice is harmless
	ctl.Release()
}
