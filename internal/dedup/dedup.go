// Package dedup keeps a per-session record of recommendation items already
// surfaced, so a product never shows up in two sections at once or reappears
// after the viewer scrolled past it.
package dedup

import (
	"container/list"
	"sync"
)

// DefaultCapacity bounds the seen-set. Once full, the oldest ids are evicted
// and become eligible to be recommended again.
const DefaultCapacity = 500

// Tracker is a bounded LRU set of item ids. Safe for concurrent use.
type Tracker struct {
	mu       sync.Mutex
	capacity int
	order    *list.List               // front = most recent
	index    map[string]*list.Element // id -> element in order
}

func NewTracker(capacity int) *Tracker {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Tracker{
		capacity: capacity,
		order:    list.New(),
		index:    make(map[string]*list.Element, capacity),
	}
}

// Filter returns up to n ids from candidates that are not in the seen set,
// preserving input order. It does not mark anything seen.
func (t *Tracker) Filter(candidates []string, n int) []string {
	if n <= 0 {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]string, 0, n)
	for _, id := range candidates {
		if id == "" {
			continue
		}
		if _, seen := t.index[id]; seen {
			continue
		}
		out = append(out, id)
		if len(out) == n {
			break
		}
	}
	return out
}

// Seen reports whether id is currently tracked.
func (t *Tracker) Seen(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.index[id]
	return ok
}

// MarkSeen records ids, refreshing recency for ones already present and
// evicting the oldest entries beyond capacity.
func (t *Tracker) MarkSeen(ids ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, id := range ids {
		if id == "" {
			continue
		}
		if el, ok := t.index[id]; ok {
			t.order.MoveToFront(el)
			continue
		}
		t.index[id] = t.order.PushFront(id)
		for t.order.Len() > t.capacity {
			oldest := t.order.Back()
			t.order.Remove(oldest)
			delete(t.index, oldest.Value.(string))
		}
	}
}

// Len returns the number of tracked ids.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.order.Len()
}

// Clear resets the set. Only logout or an explicit user action calls this.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.order.Init()
	t.index = make(map[string]*list.Element, t.capacity)
}
