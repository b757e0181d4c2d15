// Package notifier provides the broadcast mechanism behind the transport
// side channel. The server broadcasts a ping whenever backing data may
// have changed; subscribers (SSE handlers, response caches) react by
// re-querying or dropping state wholesale.
package notifier

import "sync"

// Notifier fans an update ping out to every subscriber. Pings carry no
// payload: there is no partial invalidation, a ping means "assume
// everything changed".
type Notifier struct {
	mu        sync.RWMutex
	listeners map[chan struct{}]struct{}
}

// New creates a Notifier with no subscribers.
func New() *Notifier {
	return &Notifier{listeners: make(map[chan struct{}]struct{})}
}

// Subscribe returns a channel receiving a ping per broadcast. Callers must
// Unsubscribe when done or the channel leaks.
func (n *Notifier) Subscribe() chan struct{} {
	ch := make(chan struct{}, 1)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a subscriber channel.
func (n *Notifier) Unsubscribe(ch chan struct{}) {
	n.mu.Lock()
	_, ok := n.listeners[ch]
	delete(n.listeners, ch)
	n.mu.Unlock()
	if ok {
		close(ch)
	}
}

// Broadcast pings every subscriber without blocking. A subscriber with a
// pending ping is skipped; one pending ping already means "re-check".
func (n *Notifier) Broadcast() {
	n.mu.RLock()
	defer n.mu.RUnlock()
	for ch := range n.listeners {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Len returns the number of active subscribers.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.listeners)
}
