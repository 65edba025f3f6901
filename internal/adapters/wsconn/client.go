// Package wsconn is the reconnecting websocket transport for the job stream.
package wsconn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/net/websocket"
	"golang.org/x/oauth2"

	"github.com/batchblast/batchblast/internal/core"
	"github.com/batchblast/batchblast/internal/observability/metrics"
	"github.com/batchblast/batchblast/internal/observability/statsd"
)

// ErrOutboxFull is returned by Send when the connection is down and the outbox is at capacity.
var ErrOutboxFull = errors.New("outbox full: connection is being re-established")

const (
	defaultOutboxSize   = 8
	defaultReconnectMax = 10 * time.Second
	// minBackoff is the second-attempt delay when no minimum is configured.
	minBackoff   = 250 * time.Millisecond
	writeTimeout = 10 * time.Second
)

// Options configures a Client.
type Options struct {
	URL          string             // Required: ws:// or wss:// endpoint
	Origin       string             // Required: handshake origin
	TokenSource  oauth2.TokenSource // Optional: adds an Authorization header to every dial
	ReconnectMin time.Duration      // Optional: second-attempt delay
	ReconnectMax time.Duration      // Optional: backoff cap, defaults to 10s
	OutboxSize   int                // Optional: sends buffered while disconnected, defaults to 8
	Metrics      statsd.Sink        // Optional
	Logger       *slog.Logger       // Optional
}

// Client keeps one websocket open to the backend, redialing whenever it drops.
type Client struct {
	opts   Options
	logger *slog.Logger

	mu     sync.Mutex
	conn   *websocket.Conn // nil until the outbox has been flushed on it
	outbox []string

	send func(ctx context.Context, conn *websocket.Conn, text string) error
}

var (
	_ core.Transport      = (*Client)(nil)
	_ core.QueueDiscarder = (*Client)(nil)
)

// New validates opts and returns an idle client; call Run to connect.
func New(opts Options) (*Client, error) {
	if opts.URL == "" {
		return nil, errors.New("websocket URL is required")
	}
	if opts.Origin == "" {
		return nil, errors.New("origin is required")
	}
	if _, err := websocket.NewConfig(opts.URL, opts.Origin); err != nil {
		return nil, fmt.Errorf("websocket config: %w", err)
	}
	if opts.OutboxSize <= 0 {
		opts.OutboxSize = defaultOutboxSize
	}
	if opts.ReconnectMax <= 0 {
		opts.ReconnectMax = defaultReconnectMax
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{opts: opts, logger: logger.With("component", "wsconn"), send: write}, nil
}

// Run dials, delivers frames to h in arrival order and redials on every drop
// until ctx is done. The first redial after a drop is immediate; failed dials back off.
// Handler callbacks are made from this goroutine only.
func (c *Client) Run(ctx context.Context, h core.ConnectionHandler) error {
	failures := 0
	for {
		if ctx.Err() != nil {
			return nil
		}

		event := "dial_error"
		conn, err := c.dial(ctx)
		if err == nil {
			if err = c.attach(ctx, conn); err != nil {
				event = "flush_error"
				_ = conn.Close()
			}
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			metrics.EmitConnection(c.opts.Metrics, event)
			delay := Backoff(failures, c.opts.ReconnectMin, c.opts.ReconnectMax)
			failures++
			c.logger.WarnContext(ctx, "connect failed", "url", c.opts.URL, "attempt", failures, "retry_in", delay, "error", err)
			if !sleep(ctx, delay) {
				return nil
			}
			continue
		}
		failures = 0

		h.OnOpen(ctx)
		readErr := c.readLoop(ctx, conn, h)
		c.detach(conn)
		if ctx.Err() != nil {
			h.OnClose(ctx, nil)
			return nil
		}
		h.OnClose(ctx, readErr)
	}
}

// Send writes text on the live connection, or queues it behind any earlier
// sends until the next open.
func (c *Client) Send(ctx context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		if len(c.outbox) >= c.opts.OutboxSize {
			return ErrOutboxFull
		}
		c.outbox = append(c.outbox, text)
		c.logger.DebugContext(ctx, "queued message while reconnecting", "queued", len(c.outbox))
		return nil
	}
	return c.send(ctx, c.conn, text)
}

// Queued reports how many sends are waiting for a connection.
func (c *Client) Queued() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.outbox)
}

// DiscardQueued drops every send still waiting for a connection.
func (c *Client) DiscardQueued(ctx context.Context) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.outbox)
	c.outbox = nil
	if n > 0 {
		c.logger.InfoContext(ctx, "discarded queued messages", "count", n)
	}
	return n
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	cfg, err := websocket.NewConfig(c.opts.URL, c.opts.Origin)
	if err != nil {
		return nil, err
	}
	if c.opts.TokenSource != nil {
		tok, tokErr := c.opts.TokenSource.Token()
		if tokErr != nil {
			return nil, fmt.Errorf("fetch access token: %w", tokErr)
		}
		cfg.Header.Set("Authorization", tok.Type()+" "+tok.AccessToken)
	}
	return cfg.DialContext(ctx)
}

// attach flushes the outbox in order and only then publishes conn for Send.
// On a failed write the unsent tail stays queued and conn is not published.
func (c *Client) attach(ctx context.Context, conn *websocket.Conn) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for len(c.outbox) > 0 {
		if err := c.send(ctx, conn, c.outbox[0]); err != nil {
			return fmt.Errorf("flush outbox (%d remaining): %w", len(c.outbox), err)
		}
		c.outbox = c.outbox[1:]
	}
	c.outbox = nil
	c.conn = conn
	return nil
}

func (c *Client) detach(conn *websocket.Conn) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()
	_ = conn.Close()
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn, h core.ConnectionHandler) error {
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		var data []byte
		if err := websocket.Message.Receive(conn, &data); err != nil {
			return err
		}
		h.HandleMessage(ctx, data)
	}
}

func write(ctx context.Context, conn *websocket.Conn, text string) error {
	deadline := time.Now().Add(writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	if err := websocket.Message.Send(conn, text); err != nil {
		return fmt.Errorf("websocket send: %w", err)
	}
	return nil
}

// Backoff returns the delay before redial attempt n+1 after n consecutive failures.
// The first retry is immediate; later ones double from min (or 250ms) up to max.
func Backoff(failures int, minDelay, maxDelay time.Duration) time.Duration {
	if failures <= 0 {
		return 0
	}
	d := minDelay
	if d <= 0 {
		d = minBackoff
	}
	for i := 1; i < failures && d < maxDelay; i++ {
		d *= 2
	}
	if maxDelay > 0 && d > maxDelay {
		d = maxDelay
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
