package application

import "sync"

// Cache keys of the booking lists, one per dashboard panel that can be filtered.
const (
	CacheBookings      = "bookings"
	CacheStaffBookings = "staff-bookings"
)

// listCache keeps the last fetched list per key. Entries go in and come out
// as copies so callers never share a backing array with the cache.
type listCache[T any] struct {
	mu      sync.RWMutex
	entries map[string][]T
}

func newListCache[T any]() *listCache[T] {
	return &listCache[T]{entries: make(map[string][]T)}
}

func (c *listCache[T]) Get(key string) ([]T, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return cloneList(entry), true
}

func (c *listCache[T]) Store(key string, items []T) {
	if c == nil {
		return
	}
	cloned := cloneList(items)
	c.mu.Lock()
	c.entries[key] = cloned
	c.mu.Unlock()
}

func (c *listCache[T]) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string][]T)
	c.mu.Unlock()
}

func cloneList[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	return out
}
