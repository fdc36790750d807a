package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-redis/redis/v8"

	"github.com/danupranata/kasirpos/internal/logger"
)

// RedisNotifier fans payment events out of a single shared Redis
// subscription to per-order listeners. The subscription is created lazily on
// first use and reconnects automatically; the composition root owns Close.
type RedisNotifier struct {
	client *redis.Client
	log    *logger.Logger

	mu      sync.Mutex
	subs    map[string]map[int]chan Event
	nextID  int
	started bool
	closed  bool
	pubsub  *redis.PubSub
	cancel  context.CancelFunc
}

// NewRedisNotifier creates a notifier over an established Redis client.
func NewRedisNotifier(client *redis.Client, log *logger.Logger) *RedisNotifier {
	return &RedisNotifier{
		client: client,
		log:    log,
		subs:   make(map[string]map[int]chan Event),
	}
}

// Subscribe registers a listener for payment events carrying orderID.
func (n *RedisNotifier) Subscribe(ctx context.Context, orderID string) (<-chan Event, func(), error) {
	if orderID == "" {
		return nil, nil, fmt.Errorf("orderID is required")
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return nil, nil, fmt.Errorf("notifier is closed")
	}

	if !n.started {
		runCtx, cancel := context.WithCancel(context.Background())
		pubsub := n.client.Subscribe(runCtx, ChannelPaymentSuccess)
		if _, err := pubsub.Receive(ctx); err != nil {
			cancel()
			_ = pubsub.Close()
			return nil, nil, fmt.Errorf("failed to subscribe to %s: %w", ChannelPaymentSuccess, err)
		}
		n.pubsub = pubsub
		n.cancel = cancel
		n.started = true
		go n.listen()
		n.log.Info("channel_subscribe", "subscribed to payment push channel",
			slog.String("channel", ChannelPaymentSuccess))
	}

	n.nextID++
	id := n.nextID
	ch := make(chan Event, 8)
	if n.subs[orderID] == nil {
		n.subs[orderID] = make(map[int]chan Event)
	}
	n.subs[orderID][id] = ch

	unsubscribe := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		set, ok := n.subs[orderID]
		if !ok {
			return
		}
		if c, ok := set[id]; ok {
			delete(set, id)
			close(c)
		}
		if len(set) == 0 {
			delete(n.subs, orderID)
		}
	}

	return ch, unsubscribe, nil
}

// Close tears the shared subscription down and closes every listener
// channel. Further Subscribe calls fail.
func (n *RedisNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return nil
	}
	n.closed = true

	if n.cancel != nil {
		n.cancel()
	}
	var err error
	if n.pubsub != nil {
		err = n.pubsub.Close()
	}
	for orderID, set := range n.subs {
		for _, ch := range set {
			close(ch)
		}
		delete(n.subs, orderID)
	}
	return err
}

// listen consumes the shared subscription until it is closed. Disconnects
// are handled inside go-redis; a dropped connection only delays delivery, it
// never fails a session (the expiry countdown still governs).
func (n *RedisNotifier) listen() {
	for msg := range n.pubsub.Channel() {
		n.dispatch([]byte(msg.Payload))
	}
	n.log.Info("channel_closed", "payment push channel closed")
}

func (n *RedisNotifier) dispatch(payload []byte) {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		n.log.Error("channel_decode", "dropping malformed payment event", err)
		return
	}
	if ev.OrderID == "" {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs[ev.OrderID] {
		select {
		case ch <- ev:
		default:
			n.log.Error("channel_dispatch", "listener buffer full, dropping event", nil,
				slog.String("order_id", ev.OrderID))
		}
	}
}
