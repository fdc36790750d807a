package basket

import "sync"

// Store holds the line items of one in-progress order. Lines merge by key on
// add, keep their first-seen position, and never survive at zero quantity.
type Store struct {
	mu     sync.Mutex
	policy PricingPolicy
	items  []LineItem
}

// NewStore creates an empty basket under the given pricing policy.
func NewStore(policy PricingPolicy) *Store {
	if policy == "" {
		policy = PriceAccumulates
	}
	return &Store{policy: policy}
}

// Add puts an item into the basket. A line with the same key absorbs the
// quantity (and, under PriceAccumulates, the price); a new key appends at
// the end. Quantity defaults to one more unit.
func (s *Store) Add(item LineItem) {
	qty := item.Quantity
	if qty <= 0 {
		qty = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].Key() != item.Key() {
			continue
		}
		s.items[i].Quantity += qty
		switch s.policy {
		case UnitPriceFixed:
			s.items[i].LinePrice = s.items[i].UnitPrice * int64(s.items[i].Quantity)
		default:
			s.items[i].LinePrice += item.UnitPrice * int64(qty)
		}
		if item.Notes != "" {
			s.items[i].Notes = item.Notes
		}
		return
	}

	item.Quantity = qty
	item.LinePrice = item.UnitPrice * int64(qty)
	s.items = append(s.items, item)
}

// SetQuantity adjusts an existing line to n units. n <= 0 removes the line.
// A non-nil stock bound silently clamps n; a clamp down to zero removes the
// line as well. Returns false when no line matches the key.
func (s *Store) SetQuantity(key string, n int, stock *int) bool {
	if stock != nil && n > *stock {
		n = *stock
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].Key() != key {
			continue
		}
		if n <= 0 {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
		s.items[i].Quantity = n
		s.items[i].LinePrice = s.items[i].UnitPrice * int64(n)
		return true
	}
	return false
}

// Items returns a copy of the raw basket lines in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// Merged returns the canonical basket: the raw lines collapsed by key.
func (s *Store) Merged() []LineItem {
	return Merge(s.Items(), s.policy)
}

// Total returns the amount due over the merged basket.
func (s *Store) Total() int64 {
	return Total(s.Merged())
}

// Len reports the number of distinct lines.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Clear empties the basket after submission or an explicit reset.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}

// Merge collapses a raw list of lines into one canonical basket: duplicate
// keys fold into the first occurrence, summing quantities and, under
// PriceAccumulates, line prices. First-seen ordering is preserved. Merging
// an already-merged basket is a no-op.
func Merge(items []LineItem, policy PricingPolicy) []LineItem {
	merged := make([]LineItem, 0, len(items))

next:
	for _, item := range items {
		for i := range merged {
			if merged[i].Key() == item.Key() {
				merged[i].Quantity += item.Quantity
				switch policy {
				case UnitPriceFixed:
					merged[i].LinePrice = merged[i].UnitPrice * int64(merged[i].Quantity)
				default:
					merged[i].LinePrice += item.LinePrice
				}
				continue next
			}
		}
		merged = append(merged, item)
	}
	return merged
}

// Total sums unitPrice x quantity over a merged basket.
func Total(merged []LineItem) int64 {
	var total int64
	for _, item := range merged {
		total += item.UnitPrice * int64(item.Quantity)
	}
	return total
}
