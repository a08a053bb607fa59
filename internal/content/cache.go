package content

import (
	"context"
	"sync"

	"github.com/lingokids/lingo/internal/notify"
)

// Loader fetches one page of items for key. offset counts items already
// held by the caller, so offset 0 is the first page.
type Loader[T any] func(ctx context.Context, key Key, offset int) ([]T, error)

// Event is published after a cache entry is written.
type Event struct {
	Kind  Kind
	Key   Key
	Count int
}

// Cache keeps the first page of items per key for the life of the process.
//
// Only offset-0 results are stored, and only when non-empty; a later
// offset-0 fetch overwrites the entry wholesale. Concurrent fetches for
// the same key are not merged: each calls the loader and the last one to
// finish wins.
type Cache[T any] struct {
	kind   Kind
	load   Loader[T]
	events *notify.Hub[Event]

	mu      sync.RWMutex
	entries map[Key][]T
}

// NewCache creates a cache that fills misses with load.
func NewCache[T any](kind Kind, load Loader[T]) *Cache[T] {
	return &Cache[T]{
		kind:    kind,
		load:    load,
		events:  &notify.Hub[Event]{},
		entries: make(map[Key][]T),
	}
}

// Kind returns the content kind held by the cache.
func (c *Cache[T]) Kind() Kind { return c.kind }

// Get returns the cached first page for key.
func (c *Cache[T]) Get(key Key) ([]T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	items, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return append([]T(nil), items...), true
}

// Has reports whether key holds a non-empty entry.
func (c *Cache[T]) Has(key Key) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries[key]) > 0
}

// FetchOrLoad returns the cached page for an offset-0 request, or calls
// the loader. Loader errors leave the cache untouched.
func (c *Cache[T]) FetchOrLoad(ctx context.Context, key Key, offset int) ([]T, error) {
	if offset == 0 {
		if items, ok := c.Get(key); ok {
			return items, nil
		}
	}

	items, err := c.load(ctx, key, offset)
	if err != nil {
		return nil, err
	}
	if offset == 0 && len(items) > 0 {
		c.Put(key, items)
	}
	return items, nil
}

// Warm fetches the first page of key, ignoring any cached value, and
// stores it. An empty result is ErrEmpty.
func (c *Cache[T]) Warm(ctx context.Context, key Key) error {
	items, err := c.load(ctx, key, 0)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return ErrEmpty
	}
	c.Put(key, items)
	return nil
}

// Put stores items as the first page of key.
func (c *Cache[T]) Put(key Key, items []T) {
	c.mu.Lock()
	c.entries[key] = append([]T(nil), items...)
	c.mu.Unlock()

	c.events.Publish(Event{Kind: c.kind, Key: key, Count: len(items)})
}

// Keys returns every cached key.
func (c *Cache[T]) Keys() []Key {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]Key, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	return keys
}

// Len returns the number of cached keys.
func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Reset drops every entry.
func (c *Cache[T]) Reset() {
	c.mu.Lock()
	c.entries = make(map[Key][]T)
	c.mu.Unlock()
}

// Subscribe registers fn for write events.
func (c *Cache[T]) Subscribe(fn func(Event)) (unsubscribe func()) {
	return c.events.Subscribe(fn)
}
