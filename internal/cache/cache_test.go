package cache

import (
	"testing"
	"time"

	"github.com/leapstack-labs/datalink/internal/notifier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_PutGet(t *testing.T) {
	c := New[string](3)

	c.Put("a", "1")
	c.Put("b", "2")

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "1", v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := New[int](2)

	c.Put("a", 1)
	c.Put("b", 2)

	// Touch "a" so "b" becomes the eviction candidate.
	_, _ = c.Get("a")
	c.Put("c", 3)

	assert.False(t, c.Contains("b"), "least recently used entry should be evicted")
	assert.True(t, c.Contains("a"))
	assert.True(t, c.Contains("c"))
}

func TestCache_PutExistingUpdates(t *testing.T) {
	c := New[int](2)

	c.Put("a", 1)
	c.Put("a", 9)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 9, v)
	assert.Equal(t, 1, c.Len())
}

func TestCache_RemoveAndClear(t *testing.T) {
	c := New[int](4)
	c.Put("a", 1)
	c.Put("b", 2)

	assert.True(t, c.Remove("a"))
	assert.False(t, c.Remove("a"))

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestCache_Keys(t *testing.T) {
	c := New[int](4)
	c.Put("a", 1)
	c.Put("b", 2)
	_, _ = c.Get("a")

	assert.Equal(t, []string{"a", "b"}, c.Keys(), "most recently used first")
}

func TestCache_NotifierClearsWholesale(t *testing.T) {
	n := notifier.New()
	c := New[int](4)
	c.AttachNotifier(n)
	defer c.Detach()

	c.Put("Member.getMember", 1)
	c.Put("/api/data/members", 2)

	n.Broadcast()

	require.Eventually(t, func() bool {
		return c.Len() == 0
	}, time.Second, 5*time.Millisecond, "a side-channel ping must drop the whole cache")
}

func TestCache_DetachStopsListening(t *testing.T) {
	n := notifier.New()
	c := New[int](4)
	c.AttachNotifier(n)
	c.Detach()

	c.Put("a", 1)
	n.Broadcast()

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, c.Len(), "detached cache must ignore pings")
}
