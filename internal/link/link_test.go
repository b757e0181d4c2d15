package link

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leapstack-labs/datalink/pkg/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler, cacheSize int) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{BaseURL: srv.URL, CacheSize: cacheSize})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c, srv
}

func TestSend_RoundTripsRecord(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/command", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		in := grid.NewRecord()
		require.NoError(t, json.NewDecoder(r.Body).Decode(in))
		cmd, _ := in.GetString("cmd")
		assert.Equal(t, "Member.getMember", cmd)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status": "ok", "rows": [{"id": 1}]}`)
	})
	c, _ := newTestClient(t, handler, 0)

	rec := grid.NewRecord()
	require.NoError(t, rec.Put("cmd", "Member.getMember"))

	res, err := c.Send(context.Background(), rec)
	require.NoError(t, err)
	require.NotNil(t, res.Response)

	reply := res.Record()
	require.NotNil(t, reply, "JSON object payloads become records")
	status, _ := reply.GetString("status")
	assert.Equal(t, "ok", status)

	rows, err := reply.GetTable("rows")
	require.NoError(t, err)
	assert.Equal(t, 1, rows.RowCount())
}

func TestFetch_RawTextPayload(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "plain text, not key/value shaped")
	})
	c, _ := newTestClient(t, handler, 0)

	res, err := c.Fetch(context.Background(), "/api/data/raw")
	require.NoError(t, err)
	assert.Equal(t, "plain text, not key/value shaped", res.Data)
	assert.Nil(t, res.Record())
}

func TestFetch_EmptyPayloadIsNil(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	c, _ := newTestClient(t, handler, 0)

	res, err := c.Fetch(context.Background(), "/api/data/empty")
	require.NoError(t, err)
	assert.Nil(t, res.Data)
}

func TestSend_ErrorStatus(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	c, _ := newTestClient(t, handler, 0)

	rec := grid.NewRecord()
	require.NoError(t, rec.Put("cmd", "Svc.fail"))

	_, err := c.Send(context.Background(), rec)
	assert.ErrorIs(t, err, ErrStatus)
}

func TestSend_CachesByCommand(t *testing.T) {
	var hits atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, `{"n": "1"}`)
	})
	c, _ := newTestClient(t, handler, 4)

	rec := grid.NewRecord()
	require.NoError(t, rec.Put("cmd", "Member.list"))

	_, err := c.Send(context.Background(), rec)
	require.NoError(t, err)
	_, err = c.Send(context.Background(), rec)
	require.NoError(t, err)

	assert.Equal(t, int32(1), hits.Load(), "second call must be served from cache")
}

func TestFetch_CacheClearedByPing(t *testing.T) {
	var hits atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, `{"n": "1"}`)
	})
	c, _ := newTestClient(t, handler, 4)

	_, err := c.Fetch(context.Background(), "/api/data/members")
	require.NoError(t, err)

	// A side-channel ping invalidates everything, not just one key.
	c.Notifier().Broadcast()
	require.Eventually(t, func() bool {
		_, err := c.Fetch(context.Background(), "/api/data/members")
		return err == nil && hits.Load() == 2
	}, time.Second, 10*time.Millisecond)
}

func TestListen_BroadcastsPerEvent(t *testing.T) {
	release := make(chan struct{})
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/events" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: changed\n\n")
		w.(http.Flusher).Flush()
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	c, _ := newTestClient(t, handler, 0)
	defer close(release)

	ping := c.Notifier().Subscribe()
	defer c.Notifier().Unsubscribe(ping)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = c.Listen(ctx) }()

	select {
	case <-ping:
	case <-time.After(time.Second):
		t.Fatal("no ping received for the server event")
	}
}
