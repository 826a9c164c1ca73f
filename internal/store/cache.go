package store

import "sync"

// listCache is the coarse in-memory query cache shared by all read surfaces.
// Any write to the backing table invalidates the whole collection; there is
// no row-scoped invalidation.
type listCache[T any] struct {
	mu    sync.RWMutex
	valid bool
	items []T
}

func (c *listCache[T]) get() ([]T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.valid {
		return nil, false
	}
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out, true
}

func (c *listCache[T]) set(items []T) {
	c.mu.Lock()
	c.items = make([]T, len(items))
	copy(c.items, items)
	c.valid = true
	c.mu.Unlock()
}

func (c *listCache[T]) invalidate() {
	c.mu.Lock()
	c.valid = false
	c.items = nil
	c.mu.Unlock()
}
