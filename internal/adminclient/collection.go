package adminclient

import (
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Collection is the loaded source of a screen. Views read snapshots of it;
// only the dashboard actions write to it.
type Collection[T any] struct {
	mu    sync.RWMutex
	items []T
	key   func(T) uuid.UUID
}

func NewCollection[T any](key func(T) uuid.UUID) *Collection[T] {
	return &Collection[T]{key: key}
}

// Snapshot returns a copy of the records in order.
func (c *Collection[T]) Snapshot() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.items)
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Replace swaps the whole collection.
func (c *Collection[T]) Replace(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = slices.Clone(items)
}

func (c *Collection[T]) Get(id uuid.UUID) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.index(id); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// Patch applies fn to the record with id and returns its previous value.
func (c *Collection[T]) Patch(id uuid.UUID, fn func(*T)) (prev T, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.index(id)
	if i < 0 {
		return prev, false
	}
	prev = c.items[i]
	fn(&c.items[i])
	return prev, true
}

// Put replaces the record with the same id. It reports false when no such
// record is loaded.
func (c *Collection[T]) Put(item T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.index(c.key(item))
	if i < 0 {
		return false
	}
	c.items[i] = item
	return true
}

// Remove deletes the record with id and returns it with its position.
func (c *Collection[T]) Remove(id uuid.UUID) (item T, index int, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.index(id)
	if i < 0 {
		return item, -1, false
	}
	item = c.items[i]
	c.items = slices.Delete(c.items, i, i+1)
	return item, i, true
}

// Insert puts item back at index, clamped to the current length.
func (c *Collection[T]) Insert(index int, item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	index = max(0, min(index, len(c.items)))
	c.items = slices.Insert(c.items, index, item)
}

func (c *Collection[T]) index(id uuid.UUID) int {
	return slices.IndexFunc(c.items, func(item T) bool { return c.key(item) == id })
}
