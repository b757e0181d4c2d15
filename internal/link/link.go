// Package link implements the transport client that carries records to and
// from a datalink backend. Mutating calls POST a serialized record; pure
// reads GET a path. Either way the reply body is reconstructed into a
// record when it is key/value shaped and left as raw text otherwise.
//
// The client owns a response cache keyed by command or read path. A ping
// on the backend's event side channel drops the cache wholesale.
package link

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/leapstack-labs/datalink/internal/cache"
	"github.com/leapstack-labs/datalink/internal/dispatch"
	"github.com/leapstack-labs/datalink/internal/notifier"
	"github.com/leapstack-labs/datalink/pkg/grid"
)

// DefaultTimeout bounds a single request round trip.
const DefaultTimeout = 30 * time.Second

// ErrStatus reports a non-2xx backend reply.
var ErrStatus = errors.New("backend returned an error status")

// Result is the pair handed back for every call: the reconstructed payload
// and the raw response metadata. Data is a *grid.Record when the payload
// was a JSON object, a string for other non-empty payloads, nil otherwise.
// The response body is already consumed.
type Result struct {
	Data     any
	Response *http.Response
}

// Record returns the payload as a record, or nil if it was not key/value
// shaped.
func (r Result) Record() *grid.Record {
	rec, _ := r.Data.(*grid.Record)
	return rec
}

// Config holds client configuration.
type Config struct {
	// BaseURL is the backend root, e.g. "http://localhost:8745".
	BaseURL string
	// Timeout bounds each round trip (default DefaultTimeout).
	Timeout time.Duration
	// CacheSize caps the response cache; 0 disables caching.
	CacheSize int
	// Logger is the structured logger (discard if nil).
	Logger *slog.Logger
	// HTTPClient overrides the underlying client (mainly for tests).
	HTTPClient *http.Client
}

// Client talks to one backend.
type Client struct {
	base     string
	http     *http.Client
	logger   *slog.Logger
	cache    *cache.Cache[Result]
	notifier *notifier.Notifier
}

// NewClient creates a client for the backend at cfg.BaseURL.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("link: empty base URL")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	c := &Client{
		base:     strings.TrimRight(cfg.BaseURL, "/"),
		http:     httpClient,
		logger:   logger,
		notifier: notifier.New(),
	}
	if cfg.CacheSize > 0 {
		c.cache = cache.New[Result](cfg.CacheSize)
		c.cache.AttachNotifier(c.notifier)
	}
	return c, nil
}

// Close detaches the cache listener.
func (c *Client) Close() {
	if c.cache != nil {
		c.cache.Detach()
	}
}

// Notifier exposes the side-channel fan-out, letting other components
// react to backend pings.
func (c *Client) Notifier() *notifier.Notifier { return c.notifier }

// Send posts rec to the command endpoint. When rec carries a command and a
// cached result exists under it, the cached result is returned without a
// round trip.
func (c *Client) Send(ctx context.Context, rec *grid.Record) (Result, error) {
	if rec == nil {
		return Result{}, fmt.Errorf("link: nil record")
	}
	cmd, _ := rec.GetString(dispatch.CommandKey)
	if cmd != "" && c.cache != nil {
		if hit, ok := c.cache.Get(cmd); ok {
			c.logger.Debug("cache hit", "cmd", cmd)
			return hit, nil
		}
	}

	body, err := json.Marshal(rec)
	if err != nil {
		return Result{}, fmt.Errorf("link: encode record: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/command", bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.do(req)
	if err != nil {
		return res, err
	}
	if cmd != "" && c.cache != nil {
		c.cache.Put(cmd, res)
	}
	return res, nil
}

// Fetch issues the pure read verb for path, caching the result under the
// path.
func (c *Client) Fetch(ctx context.Context, path string) (Result, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if c.cache != nil {
		if hit, ok := c.cache.Get(path); ok {
			c.logger.Debug("cache hit", "path", path)
			return hit, nil
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return Result{}, err
	}
	res, err := c.do(req)
	if err != nil {
		return res, err
	}
	if c.cache != nil {
		c.cache.Put(path, res)
	}
	return res, nil
}

func (c *Client) do(req *http.Request) (Result, error) {
	req.Header.Set("X-Request-ID", uuid.NewString())
	started := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{Response: resp}, fmt.Errorf("link: read body: %w", err)
	}
	c.logger.Debug("round trip",
		"method", req.Method,
		"url", req.URL.String(),
		"status", resp.StatusCode,
		"elapsed", time.Since(started))

	result := Result{Data: decodePayload(payload), Response: resp}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return result, fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}
	return result, nil
}

// decodePayload reconstructs a record from a JSON-object payload and
// leaves everything else as raw text or nil. A payload that merely looks
// like an object but does not decode stays raw text.
func decodePayload(payload []byte) any {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return nil
	}
	if trimmed[0] == '{' {
		rec := grid.NewRecord()
		if err := json.Unmarshal(trimmed, rec); err == nil {
			return rec
		}
	}
	return string(payload)
}

// Listen consumes the backend's event side channel until ctx is done,
// broadcasting a ping per event. With a cache attached, every ping clears
// it.
func (c *Client) Listen(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/events", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	// The stream outlives any per-request timeout.
	stream := &http.Client{Transport: c.http.Transport}
	resp, err := stream.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}

	c.logger.Info("listening for backend events", "url", req.URL.String())
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "data:") {
			c.notifier.Broadcast()
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return err
	}
	return ctx.Err()
}
