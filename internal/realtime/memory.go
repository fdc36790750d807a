package realtime

import (
	"context"
	"fmt"
	"sync"
)

// MemoryNotifier is an in-process Notifier for tests and offline
// development. Publish stands in for the backend's push.
type MemoryNotifier struct {
	mu     sync.Mutex
	subs   map[string]map[int]chan Event
	nextID int
}

// NewMemoryNotifier creates an empty in-process notifier.
func NewMemoryNotifier() *MemoryNotifier {
	return &MemoryNotifier{subs: make(map[string]map[int]chan Event)}
}

// Subscribe registers a listener for events carrying orderID.
func (n *MemoryNotifier) Subscribe(ctx context.Context, orderID string) (<-chan Event, func(), error) {
	if orderID == "" {
		return nil, nil, fmt.Errorf("orderID is required")
	}

	n.mu.Lock()
	defer n.mu.Unlock()

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

// Publish delivers an event to every listener subscribed to its order id.
func (n *MemoryNotifier) Publish(ev Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs[ev.OrderID] {
		select {
		case ch <- ev:
		default:
		}
	}
}

// ListenerCount reports how many listeners are attached for an order id.
func (n *MemoryNotifier) ListenerCount(orderID string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs[orderID])
}
