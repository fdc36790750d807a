package payment

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danupranata/kasirpos/internal/logger"
	"github.com/danupranata/kasirpos/internal/realtime"
)

func newPaymentRouter(api API, notifier realtime.Notifier) *chi.Mux {
	r := chi.NewRouter()
	NewHandler(api, notifier, logger.New("test"), time.Minute).RegisterRoutes(r)
	return r
}

func postSession(t *testing.T, router http.Handler, body string) (*httptest.ResponseRecorder, sessionView) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var view sessionView
	if rec.Code < 400 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	}
	return rec, view
}

func TestStartSessionEndpoint(t *testing.T) {
	notifier := realtime.NewMemoryNotifier()
	router := newPaymentRouter(&fakeAPI{}, notifier)

	rec, view := postSession(t, router, `{"order_id":"ord-1","amount":25000}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, StateActive, view.State)
	assert.NotEmpty(t, view.QRPayload)
	assert.Greater(t, view.RemainingSeconds, 50)
	assert.Equal(t, 1, notifier.ListenerCount("ord-1"))
}

func TestStartSessionValidation(t *testing.T) {
	router := newPaymentRouter(&fakeAPI{}, realtime.NewMemoryNotifier())

	rec, _ := postSession(t, router, `{"amount":25000}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = postSession(t, router, `{"order_id":"ord-1","amount":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStartSessionBackendFailure(t *testing.T) {
	router := newPaymentRouter(&fakeAPI{initErr: fmt.Errorf("qris provider down")}, realtime.NewMemoryNotifier())

	rec, _ := postSession(t, router, `{"order_id":"ord-1","amount":25000}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(StateRequestFailed), body["state"])

	// a failed request leaves no current session behind
	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/current", nil)
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req)
	assert.Equal(t, http.StatusNotFound, rec2.Code)
}

func TestNewSessionReplacesPrevious(t *testing.T) {
	notifier := realtime.NewMemoryNotifier()
	router := newPaymentRouter(&fakeAPI{}, notifier)

	rec, _ := postSession(t, router, `{"order_id":"ord-1","amount":25000}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, view := postSession(t, router, `{"order_id":"ord-2","amount":30000}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "ord-2", view.OrderID)

	// the first session's listener is gone, only the new one remains
	assert.Zero(t, notifier.ListenerCount("ord-1"))
	assert.Equal(t, 1, notifier.ListenerCount("ord-2"))
}

func TestCancelEndpoint(t *testing.T) {
	notifier := realtime.NewMemoryNotifier()
	router := newPaymentRouter(&fakeAPI{cancelOK: true}, notifier)

	rec, _ := postSession(t, router, `{"order_id":"ord-1","amount":25000}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/current/cancel", nil)
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req)
	require.Equal(t, http.StatusOK, rec2.Code)

	var view sessionView
	require.NoError(t, json.Unmarshal(rec2.Body.Bytes(), &view))
	assert.Equal(t, StateCancelled, view.State)
	assert.Zero(t, view.RemainingSeconds)
}

func TestCancelWithoutSession(t *testing.T) {
	router := newPaymentRouter(&fakeAPI{}, realtime.NewMemoryNotifier())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/current/cancel", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelRejectedKeepsSession(t *testing.T) {
	notifier := realtime.NewMemoryNotifier()
	router := newPaymentRouter(&fakeAPI{cancelOK: false}, notifier)

	rec, _ := postSession(t, router, `{"order_id":"ord-1","amount":25000}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/current/cancel", nil)
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req)
	assert.Equal(t, http.StatusBadGateway, rec2.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec2.Body.Bytes(), &body))
	assert.Equal(t, string(StateActive), body["state"])
	assert.Equal(t, 1, notifier.ListenerCount("ord-1"))
}
