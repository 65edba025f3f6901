package wsconn

import (
	"context"
	"errors"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"
	"golang.org/x/oauth2"
)

// recordingHandler forwards callbacks onto channels.
type recordingHandler struct {
	opened   chan struct{}
	closed   chan error
	messages chan string
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{
		opened:   make(chan struct{}, 16),
		closed:   make(chan error, 16),
		messages: make(chan string, 16),
	}
}

func (h *recordingHandler) OnOpen(context.Context)              { h.opened <- struct{}{} }
func (h *recordingHandler) OnClose(_ context.Context, err error) { h.closed <- err }
func (h *recordingHandler) HandleMessage(_ context.Context, data []byte) {
	h.messages <- string(data)
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/"
}

func startClient(t *testing.T, opts Options) (*Client, *recordingHandler) {
	t.Helper()
	c, err := New(opts)
	require.NoError(t, err)
	h := newRecordingHandler()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, h) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("Run did not stop after cancel")
		}
	})
	return c, h
}

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
	var zero T
	return zero
}

func TestClient_DeliversMessagesInOrder(t *testing.T) {
	received := make(chan string, 4)
	srv := httptest.NewServer(websocket.Handler(func(ws *websocket.Conn) {
		_ = websocket.Message.Send(ws, `["folderid", "F1"]`)
		var in string
		if err := websocket.Message.Receive(ws, &in); err != nil {
			return
		}
		received <- in
		_ = websocket.Message.Send(ws, `["Running BLAST NCBI...", "q1"]`)
		_ = websocket.Message.Send(ws, `["BLAST Completed..."]`)
		_ = websocket.Message.Receive(ws, &in) // hold open until the client leaves
	}))
	defer srv.Close()

	c, h := startClient(t, Options{URL: wsURL(srv), Origin: srv.URL})

	receive(t, h.opened)
	assert.Equal(t, `["folderid", "F1"]`, receive(t, h.messages))

	require.NoError(t, c.Send(context.Background(), ">A\nATCG"))
	assert.Equal(t, ">A\nATCG", receive(t, received))
	assert.Equal(t, `["Running BLAST NCBI...", "q1"]`, receive(t, h.messages))
	assert.Equal(t, `["BLAST Completed..."]`, receive(t, h.messages))
}

func TestClient_ReconnectsAfterServerClose(t *testing.T) {
	var mu sync.Mutex
	conns := 0
	srv := httptest.NewServer(websocket.Handler(func(ws *websocket.Conn) {
		mu.Lock()
		conns++
		n := conns
		mu.Unlock()
		if n == 1 {
			return // drop the first connection immediately
		}
		_ = websocket.Message.Send(ws, "second connection")
		var in string
		_ = websocket.Message.Receive(ws, &in)
	}))
	defer srv.Close()

	_, h := startClient(t, Options{URL: wsURL(srv), Origin: srv.URL, ReconnectMax: 100 * time.Millisecond})

	receive(t, h.opened)
	require.Error(t, receive(t, h.closed))
	receive(t, h.opened)
	assert.Equal(t, "second connection", receive(t, h.messages))
}

func TestClient_OutboxFlushedOnOpen(t *testing.T) {
	received := make(chan string, 4)
	srv := httptest.NewServer(websocket.Handler(func(ws *websocket.Conn) {
		for {
			var in string
			if err := websocket.Message.Receive(ws, &in); err != nil {
				return
			}
			received <- in
		}
	}))
	defer srv.Close()

	c, err := New(Options{URL: wsURL(srv), Origin: srv.URL, OutboxSize: 2})
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, c.Send(ctx, "one"))
	require.NoError(t, c.Send(ctx, "two"))
	require.ErrorIs(t, c.Send(ctx, "three"), ErrOutboxFull)
	assert.Equal(t, 2, c.Queued())

	h := newRecordingHandler()
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() { _ = c.Run(runCtx, h) }()

	receive(t, h.opened)
	assert.Equal(t, "one", receive(t, received))
	assert.Equal(t, "two", receive(t, received))
	assert.Zero(t, c.Queued())
}

func TestClient_FailedFlushKeepsQueueOrder(t *testing.T) {
	received := make(chan string, 8)
	srv := httptest.NewServer(websocket.Handler(func(ws *websocket.Conn) {
		for {
			var in string
			if err := websocket.Message.Receive(ws, &in); err != nil {
				return
			}
			received <- in
		}
	}))
	defer srv.Close()

	c, err := New(Options{URL: wsURL(srv), Origin: srv.URL, OutboxSize: 4, ReconnectMin: 20 * time.Millisecond})
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, c.Send(ctx, "one"))
	require.NoError(t, c.Send(ctx, "two"))

	// The first attempt to write "two" fails after "one" went out.
	failed := make(chan struct{}, 1)
	var once sync.Once
	c.send = func(ctx context.Context, conn *websocket.Conn, text string) error {
		fail := false
		if text == "two" {
			once.Do(func() { fail = true })
		}
		if fail {
			failed <- struct{}{}
			return errors.New("write interrupted")
		}
		return write(ctx, conn, text)
	}

	h := newRecordingHandler()
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() { _ = c.Run(runCtx, h) }()

	receive(t, failed)
	require.NoError(t, c.Send(ctx, "three"))

	got := []string{receive(t, received), receive(t, received), receive(t, received)}
	assert.ElementsMatch(t, []string{"one", "two", "three"}, got)
	assert.Less(t, slices.Index(got, "two"), slices.Index(got, "three"), "later send overtook a queued one: %v", got)
	receive(t, h.opened)
	assert.Zero(t, c.Queued())
}

func TestClient_DiscardQueued(t *testing.T) {
	c, err := New(Options{URL: "ws://127.0.0.1:1/", Origin: "http://127.0.0.1:1"})
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, c.Send(ctx, ">job\nACGT"))
	require.NoError(t, c.Send(ctx, ">job2\nGG"))
	assert.Equal(t, 2, c.DiscardQueued(ctx))
	assert.Zero(t, c.Queued())
	assert.Zero(t, c.DiscardQueued(ctx))
}

func TestClient_SendsBearerToken(t *testing.T) {
	auth := make(chan string, 1)
	srv := httptest.NewServer(websocket.Handler(func(ws *websocket.Conn) {
		auth <- ws.Request().Header.Get("Authorization")
		var in string
		_ = websocket.Message.Receive(ws, &in)
	}))
	defer srv.Close()

	startClient(t, Options{
		URL:         wsURL(srv),
		Origin:      srv.URL,
		TokenSource: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok", TokenType: "bearer"}),
	})

	assert.Equal(t, "Bearer tok", receive(t, auth))
}

func TestClient_RunStopsWhileDialFails(t *testing.T) {
	c, err := New(Options{URL: "ws://127.0.0.1:1/", Origin: "http://127.0.0.1:1", ReconnectMax: 50 * time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	assert.NoError(t, c.Run(ctx, newRecordingHandler()))
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Options{Origin: "http://x"})
	require.Error(t, err)
	_, err = New(Options{URL: "ws://x/"})
	require.Error(t, err)
	_, err = New(Options{URL: "://bad", Origin: "http://x"})
	require.Error(t, err)
}

func TestBackoff(t *testing.T) {
	tests := []struct {
		failures int
		min, max time.Duration
		want     time.Duration
	}{
		{0, time.Second, 10 * time.Second, 0},
		{1, time.Second, 10 * time.Second, time.Second},
		{2, time.Second, 10 * time.Second, 2 * time.Second},
		{4, time.Second, 10 * time.Second, 8 * time.Second},
		{5, time.Second, 10 * time.Second, 10 * time.Second},
		{1, 0, 10 * time.Second, minBackoff},
		{3, 0, 10 * time.Second, 4 * minBackoff},
		{50, 0, time.Second, time.Second},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Backoff(tt.failures, tt.min, tt.max), "failures=%d", tt.failures)
	}
}
