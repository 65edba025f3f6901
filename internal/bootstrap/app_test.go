package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"github.com/batchblast/batchblast/config"
	"github.com/batchblast/batchblast/internal/domain/model"
	"github.com/batchblast/batchblast/internal/mocks/fakes"
)

// fakeBackend answers every submission with a folder id and a completion message.
type fakeBackend struct {
	mu       sync.Mutex
	received []string
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/getconfig", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `["mH","500","blastx","nr","gallus","Chicken"]`)
	})
	mux.Handle("/", websocket.Handler(func(conn *websocket.Conn) {
		for {
			var msg string
			if err := websocket.Message.Receive(conn, &msg); err != nil {
				return
			}
			b.mu.Lock()
			b.received = append(b.received, msg)
			b.mu.Unlock()
			_ = websocket.Message.Send(conn, `["folderid", "F100"]`)
			_ = websocket.Message.Send(conn, `["Running BLAST NCBI...", "query 1"]`)
			_ = websocket.Message.Send(conn, `["Successfully completed mass BLAST"]`)
		}
	}))
	return mux
}

func (b *fakeBackend) Received() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.received...)
}

func testConfig(t *testing.T, backendURL string) config.AppConfig {
	t.Helper()
	cfg := config.AppConfig{
		LogLevel: "debug",
		Backend:  config.BackendConfig{URL: backendURL, WSPath: "/"},
		Session:  config.SessionConfig{ReconnectMax: time.Second},
		Store:    config.StoreConfig{Dir: t.TempDir()},
	}
	cfg.Sanitize()
	return cfg
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestApp_SubmitRoundTrip(t *testing.T) {
	backend := &fakeBackend{}
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	presenter := &fakes.RecordingPresenter{}
	app, err := NewApp(context.Background(), AppOptions{
		Config:    testConfig(t, srv.URL),
		Logger:    discardLogger(),
		Presenter: presenter,
	})
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, app.Close()) })
	assert.Nil(t, app.History())

	ws := app.Workspace()
	n, err := ws.Upload(context.Background(), ">seq one\nATCG\n>seq two\nGGCC\n")
	require.NoError(t, err)
	require.Equal(t, 2, n)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var payload model.SubmissionPayload
	err = app.Run(ctx, func(ctx context.Context) error {
		var submitErr error
		payload, submitErr = ws.Submit(ctx)
		if submitErr != nil {
			return submitErr
		}
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			if ws.Session().State().Phase.Terminal() {
				return nil
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
	})
	require.NoError(t, err)

	view := ws.Session().View()
	assert.Equal(t, model.PhaseComplete, view.State.Phase)
	assert.Equal(t, "F100", view.State.SessionID)
	assert.Equal(t, payload.Entries, view.Preview)
	require.Len(t, view.Downloads, 4)
	assert.Equal(t, srv.URL+"/download?folderid=F100&type=1", view.Downloads[0].URL)

	received := backend.Received()
	require.Len(t, received, 1)
	assert.Equal(t, ">seq one\nATCG\n>seq two\nGGCC", received[0])

	last, ok := presenter.Last()
	require.True(t, ok)
	assert.Equal(t, view, last)
}

func TestApp_SettingsUseConfiguredMapping(t *testing.T) {
	srv := httptest.NewServer((&fakeBackend{}).handler())
	t.Cleanup(srv.Close)

	cfg := testConfig(t, srv.URL)
	cfg.Settings.SpeciesNameExpr = "[4]"
	app, err := NewApp(context.Background(), AppOptions{Config: cfg, Logger: discardLogger()})
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, app.Close()) })

	settings, err := app.Workspace().Settings().Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "blastx", settings.Program)
	assert.Equal(t, "gallus", settings.SpeciesName)
}

func TestNewApp_InvalidSettingsMapping(t *testing.T) {
	cfg := testConfig(t, "http://localhost:8000")
	cfg.Settings.FilterExpr = "[0"

	_, err := NewApp(context.Background(), AppOptions{Config: cfg, Logger: discardLogger()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "settings mapping")
}

func TestNewApp_UnsupportedBackendScheme(t *testing.T) {
	cfg := testConfig(t, "ftp://example.org")

	_, err := NewApp(context.Background(), AppOptions{Config: cfg, Logger: discardLogger()})
	require.Error(t, err)
}

func TestApp_FolderIDSurvivesRestart(t *testing.T) {
	cfg := testConfig(t, "http://localhost:8000")
	require.Equal(t, config.StoreBackendFile, cfg.Store.Backend)
	ctx := context.Background()

	first, err := NewApp(ctx, AppOptions{Config: cfg, Logger: discardLogger()})
	require.NoError(t, err)
	first.Workspace().Session().HandleMessage(ctx, []byte(`["folderid","F1"]`))
	require.NoError(t, first.Close())

	second, err := NewApp(ctx, AppOptions{Config: cfg, Logger: discardLogger()})
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, second.Close()) })

	assert.Equal(t, "F1", second.Workspace().Session().State().SessionID)
}

func TestApp_MemoryStoreForgetsOnRestart(t *testing.T) {
	cfg := testConfig(t, "http://localhost:8000")
	cfg.Store.Backend = config.StoreBackendMemory
	ctx := context.Background()

	first, err := NewApp(ctx, AppOptions{Config: cfg, Logger: discardLogger()})
	require.NoError(t, err)
	first.Workspace().Session().HandleMessage(ctx, []byte(`["folderid","F1"]`))
	require.NoError(t, first.Close())

	second, err := NewApp(ctx, AppOptions{Config: cfg, Logger: discardLogger()})
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, second.Close()) })
	assert.Empty(t, second.Workspace().Session().State().SessionID)
}

func TestApp_RunStopsWhenFnReturns(t *testing.T) {
	// Nothing listens here, so the transport keeps redialing until Run cancels it.
	cfg := testConfig(t, "http://127.0.0.1:1")
	app, err := NewApp(context.Background(), AppOptions{Config: cfg, Logger: discardLogger()})
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, app.Close()) })

	done := make(chan error, 1)
	go func() {
		done <- app.Run(context.Background(), func(context.Context) error { return nil })
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after fn finished")
	}
}
