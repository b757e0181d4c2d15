// Package cache implements the response cache consulted by the transport
// client. Entries are keyed by the read path or the command string and
// evicted least-recently-used once the capacity is reached.
//
// The cache holds no per-key invalidation logic: any ping on the transport
// side channel drops the whole cache, since the backend gives no hint
// about which commands a change affects.
package cache

import (
	"container/list"
	"sync"

	"github.com/leapstack-labs/datalink/internal/notifier"
)

// DefaultCapacity bounds a cache built with New when the caller passes a
// non-positive capacity.
const DefaultCapacity = 10

// Cache is a capacity-bounded LRU map from request key to response value.
// Safe for concurrent use: the invalidation listener runs on its own
// goroutine.
type Cache[V any] struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // front = most recently used
	entries  map[string]*list.Element

	stop chan struct{}
	done chan struct{}
}

type lruEntry[V any] struct {
	key   string
	value V
}

// New creates an empty cache holding at most capacity entries.
func New[V any](capacity int) *Cache[V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache[V]{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
	}
}

// Get returns the value stored under key and marks it most recently used.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*lruEntry[V]).value, true
}

// Put stores value under key, evicting the least recently used entry when
// the cache is full.
func (c *Cache[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.entries[key]; ok {
		elem.Value.(*lruEntry[V]).value = value
		c.order.MoveToFront(elem)
		return
	}
	if c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*lruEntry[V]).key)
		}
	}
	c.entries[key] = c.order.PushFront(&lruEntry[V]{key: key, value: value})
}

// Remove deletes key and reports whether it was present.
func (c *Cache[V]) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.entries[key]
	if !ok {
		return false
	}
	c.order.Remove(elem)
	delete(c.entries, key)
	return true
}

// Contains reports whether key is cached, without touching recency.
func (c *Cache[V]) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

// Len returns the number of cached entries.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Clear drops every entry.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.entries = make(map[string]*list.Element)
}

// Keys returns the cached keys from most to least recently used.
func (c *Cache[V]) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, c.order.Len())
	for elem := c.order.Front(); elem != nil; elem = elem.Next() {
		keys = append(keys, elem.Value.(*lruEntry[V]).key)
	}
	return keys
}

// AttachNotifier clears the cache on every side-channel ping until Detach
// is called. Only one listener may be attached at a time.
func (c *Cache[V]) AttachNotifier(n *notifier.Notifier) {
	c.mu.Lock()
	if c.stop != nil {
		c.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	c.stop = stop
	c.done = done
	c.mu.Unlock()

	ch := n.Subscribe()
	go func() {
		defer close(done)
		defer n.Unsubscribe(ch)
		for {
			select {
			case <-stop:
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				c.Clear()
			}
		}
	}()
}

// Detach stops the invalidation listener, if any, and waits for it to
// exit.
func (c *Cache[V]) Detach() {
	c.mu.Lock()
	stop, done := c.stop, c.done
	c.stop, c.done = nil, nil
	c.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}
