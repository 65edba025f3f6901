// Package fakes contains simple hand-written test doubles for the core ports.
// These are lightweight and suitable for unit tests without codegen.
package fakes

import (
	"context"
	"sync"

	"github.com/batchblast/batchblast/internal/core"
	"github.com/batchblast/batchblast/internal/domain/model"
)

// Ensure compile-time conformance to ports.
var (
	_ core.Presenter      = (*RecordingPresenter)(nil)
	_ core.Transport      = (*Transport)(nil)
	_ core.QueueDiscarder = (*QueueingTransport)(nil)
	_ core.FolderIDStore  = (*MemoryFolderIDStore)(nil)
	_ core.SettingsClient = (*SettingsClient)(nil)
)

// RecordingPresenter keeps every rendered view.
type RecordingPresenter struct {
	mu    sync.Mutex
	views []model.SessionView
}

func (p *RecordingPresenter) Render(view model.SessionView) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.views = append(p.views, view)
}

// Views returns all renders in order.
func (p *RecordingPresenter) Views() []model.SessionView {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.SessionView(nil), p.views...)
}

// Last returns the most recent render; ok is false if nothing was rendered.
func (p *RecordingPresenter) Last() (view model.SessionView, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.views) == 0 {
		return model.SessionView{}, false
	}
	return p.views[len(p.views)-1], true
}

// Count returns the number of renders.
func (p *RecordingPresenter) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.views)
}

// Transport records sent messages. Err, when set, fails every send.
type Transport struct {
	SendFunc func(ctx context.Context, text string) error
	Err      error

	mu   sync.Mutex
	sent []string
}

func (t *Transport) Send(ctx context.Context, text string) error {
	if t.SendFunc != nil {
		return t.SendFunc(ctx, text)
	}
	if t.Err != nil {
		return t.Err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = append(t.sent, text)
	return nil
}

// Sent returns the successfully sent messages.
func (t *Transport) Sent() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.sent...)
}

// QueueingTransport holds every send, like a transport waiting to reconnect.
type QueueingTransport struct {
	mu     sync.Mutex
	queued []string
}

func (t *QueueingTransport) Send(_ context.Context, text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.queued = append(t.queued, text)
	return nil
}

func (t *QueueingTransport) DiscardQueued(context.Context) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := len(t.queued)
	t.queued = nil
	return n
}

// Queued returns the held sends.
func (t *QueueingTransport) Queued() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.queued...)
}

// MemoryFolderIDStore keeps the folder id in memory.
type MemoryFolderIDStore struct {
	SaveErr error

	mu sync.Mutex
	id string
}

func (s *MemoryFolderIDStore) Load(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id, nil
}

func (s *MemoryFolderIDStore) Save(_ context.Context, folderID string) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = folderID
	return nil
}

func (s *MemoryFolderIDStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = ""
	return nil
}

// SettingsClient serves a fixed tuple and records saves.
type SettingsClient struct {
	Tuple    []any
	FetchErr error
	SaveErr  error

	mu    sync.Mutex
	saved []model.Settings
}

func (c *SettingsClient) Fetch(_ context.Context) ([]any, error) {
	if c.FetchErr != nil {
		return nil, c.FetchErr
	}
	return c.Tuple, nil
}

func (c *SettingsClient) Save(_ context.Context, settings model.Settings) error {
	if c.SaveErr != nil {
		return c.SaveErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.saved = append(c.saved, settings)
	return nil
}

// Saved returns every saved settings value.
func (c *SettingsClient) Saved() []model.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Settings(nil), c.saved...)
}
