package notifier

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_SubscribeUnsubscribe(t *testing.T) {
	n := New()

	ch := n.Subscribe()
	require.NotNil(t, ch)
	assert.Equal(t, 1, n.Len())

	n.Unsubscribe(ch)
	assert.Equal(t, 0, n.Len())

	// Double unsubscribe must not panic on a closed channel.
	n.Unsubscribe(ch)
}

func TestNotifier_Broadcast(t *testing.T) {
	n := New()

	ch1 := n.Subscribe()
	ch2 := n.Subscribe()
	defer n.Unsubscribe(ch1)
	defer n.Unsubscribe(ch2)

	n.Broadcast()

	for _, ch := range []chan struct{}{ch1, ch2} {
		select {
		case <-ch:
		case <-time.After(100 * time.Millisecond):
			t.Fatal("subscriber did not receive broadcast")
		}
	}
}

func TestNotifier_BroadcastNonBlocking(t *testing.T) {
	n := New()

	ch := n.Subscribe()
	defer n.Unsubscribe(ch)

	// Fill the buffer; the next broadcast must skip, not block.
	ch <- struct{}{}

	done := make(chan struct{})
	go func() {
		n.Broadcast()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Broadcast blocked on a full channel")
	}
}

func TestNotifier_ConcurrentBroadcast(t *testing.T) {
	n := New()
	ch := n.Subscribe()
	defer n.Unsubscribe(ch)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n.Broadcast()
		}()
	}
	wg.Wait()

	select {
	case <-ch:
	default:
		t.Fatal("expected at least one pending ping")
	}
}
