package cart

import "sync"

// Listener receives a snapshot of the items after a mutation. Snapshots are
// copies; listeners may keep them. Listeners run outside the store's lock,
// so a listener may call back into the Store; a mutation made from inside a
// listener is applied immediately and its notification delivered after the
// current one finishes.
type Listener func(items []LineItem)

// Store owns the ordered line-item sequence. All mutations go through it and
// each mutating call emits exactly one change notification, in call order.
type Store interface {
	// AddItem inserts the candidate with quantity 1, or bumps the quantity
	// by 1 when an item with the same ID already exists.
	AddItem(c Candidate)
	// RemoveItem deletes the item with the given ID. Absent ID is a no-op,
	// not an error.
	RemoveItem(id string)
	// UpdateQuantity sets the item's quantity. Quantity below 1 removes the
	// item instead; a zero-quantity line never exists.
	UpdateQuantity(id string, quantity int)
	// SetValidity records the external validator's verdict on an item.
	// Absent ID is a no-op.
	SetValidity(id string, v Validity)
	// Clear empties the cart unconditionally.
	Clear()
	// Replace swaps the whole sequence, e.g. on hydration or when the
	// backend cart is adopted. Input is sanitized: duplicate IDs collapse to
	// their first occurrence and quantities below 1 are dropped.
	Replace(items []LineItem)

	Items() []LineItem
	TotalItems() int
	Subtotal() int64
	// Subscribe registers a listener for subsequent mutations.
	Subscribe(l Listener)
}

type store struct {
	mu        sync.Mutex
	items     []LineItem
	listeners []Listener

	pending   [][]LineItem
	notifying bool
}

// NewStore returns an empty Store.
func NewStore() Store {
	return &store{}
}

func (s *store) AddItem(c Candidate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.index(c.ID); i >= 0 {
		s.items[i].Quantity++
	} else {
		s.items = append(s.items, LineItem{
			ID:       c.ID,
			Name:     c.Name,
			Price:    c.Price,
			Quantity: 1,
			Image:    c.Image,
		})
	}

	s.notify()
}

func (s *store) RemoveItem(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.remove(id)
	s.notify()
}

func (s *store) UpdateQuantity(id string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity < 1 {
		s.remove(id)
	} else if i := s.index(id); i >= 0 {
		s.items[i].Quantity = quantity
	}

	s.notify()
}

func (s *store) SetValidity(id string, v Validity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.index(id); i >= 0 {
		validity := v
		s.items[i].Validity = &validity
	}

	s.notify()
}

func (s *store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.notify()
}

func (s *store) Replace(items []LineItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = Sanitize(items)
	s.notify()
}

func (s *store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshot()
}

func (s *store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, it := range s.items {
		total += it.Quantity
	}
	return total
}

func (s *store) Subtotal() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sum int64
	for _, it := range s.items {
		sum += it.Price * int64(it.Quantity)
	}
	return sum
}

func (s *store) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listeners = append(s.listeners, l)
}

// Sanitize enforces the cart invariants on an arbitrary item sequence:
// duplicate IDs collapse to their first occurrence and entries with quantity
// below 1 are dropped. Order of survivors is preserved.
func Sanitize(items []LineItem) []LineItem {
	if len(items) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(items))
	out := make([]LineItem, 0, len(items))
	for _, it := range items {
		if it.Quantity < 1 {
			continue
		}
		if _, dup := seen[it.ID]; dup {
			continue
		}
		seen[it.ID] = struct{}{}
		out = append(out, it)
	}
	return out
}

// callers hold s.mu

func (s *store) index(id string) int {
	for i, it := range s.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (s *store) remove(id string) {
	if i := s.index(id); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
}

func (s *store) snapshot() []LineItem {
	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// notify queues a snapshot for the listeners and drains the queue, unless a
// drain is already in progress further up the stack. Delivery happens with
// s.mu released, so listeners can read from or mutate the Store; the queue
// keeps notifications in mutation order either way.
func (s *store) notify() {
	s.pending = append(s.pending, s.snapshot())
	if s.notifying {
		return
	}

	s.notifying = true
	for len(s.pending) > 0 {
		snap := s.pending[0]
		s.pending = s.pending[1:]
		listeners := make([]Listener, len(s.listeners))
		copy(listeners, s.listeners)

		s.mu.Unlock()
		for _, l := range listeners {
			l(snap)
		}
		s.mu.Lock()
	}
	s.notifying = false
}
