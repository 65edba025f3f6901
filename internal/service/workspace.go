package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/batchblast/batchblast/internal/domain/model"
)

// WorkspaceOptions groups the components a Workspace ties together.
type WorkspaceOptions struct {
	Session  JobSessionOptions // Required: Transport and Locator must be set
	Settings *SettingsService  // Optional: backend settings
	Logger   *slog.Logger      // Optional: structured logger
}

// Workspace is the context object for one client session: the record store,
// the submission builder and retained result set, and the job session.
// Independent workspaces share nothing.
type Workspace struct {
	store    *RecordStore
	ingest   *IngestService
	builder  *SubmissionBuilder
	session  *JobSession
	locator  DownloadLocator
	settings *SettingsService
	logger   *slog.Logger
}

// NewWorkspace wires a fresh store, builder and job session.
func NewWorkspace(opts WorkspaceOptions) *Workspace {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	store := NewRecordStore()
	builder := NewSubmissionBuilder()

	sessionOpts := opts.Session
	sessionOpts.Results = builder
	if sessionOpts.Logger == nil {
		sessionOpts.Logger = logger
	}

	return &Workspace{
		store:    store,
		ingest:   NewIngestService(IngestServiceOptions{Store: store, Logger: logger}),
		builder:  builder,
		session:  NewJobSession(sessionOpts),
		locator:  sessionOpts.Locator,
		settings: opts.Settings,
		logger:   logger,
	}
}

// Records exposes the record store for manual edits.
func (w *Workspace) Records() *RecordStore { return w.store }

// Session exposes the job session; it is also the connection handler for the transport.
func (w *Workspace) Session() *JobSession { return w.session }

// Settings returns the settings service, or nil if none was configured.
func (w *Workspace) Settings() *SettingsService { return w.settings }

// Upload replaces the records with those parsed from content.
func (w *Workspace) Upload(ctx context.Context, content string) (int, error) {
	return w.ingest.Load(ctx, content)
}

// UploadFile replaces the records with those parsed from the file at path.
func (w *Workspace) UploadFile(ctx context.Context, path string) (int, error) {
	return w.ingest.LoadFile(ctx, path)
}

// Submit validates the current records and sends them as a new job.
// Validation failures leave the job session untouched.
func (w *Workspace) Submit(ctx context.Context) (model.SubmissionPayload, error) {
	if w.session.Busy() {
		return model.SubmissionPayload{}, ErrJobInFlight
	}

	prev, hadPrev := w.builder.Current()
	payload, err := w.builder.Build(w.store.Snapshot())
	if err != nil {
		return model.SubmissionPayload{}, err
	}
	if err := w.session.Submit(ctx, payload); err != nil {
		if hadPrev {
			w.builder.Retain(&prev)
		} else {
			w.builder.Retain(nil)
		}
		return model.SubmissionPayload{}, fmt.Errorf("submit job: %w", err)
	}
	return payload, nil
}

// Clear removes every record. When no job is running the preview and downloads are hidden too.
func (w *Workspace) Clear(ctx context.Context) {
	w.store.Clear()
	if w.session.Busy() {
		return
	}
	w.session.Abandon(ctx)
	w.builder.Reset()
}

// Locate returns the download URL for artifact in the current folder.
func (w *Workspace) Locate(artifact model.ArtifactType) (model.Locator, error) {
	return w.locator.Locate(artifact, w.session.State().SessionID)
}

// LocatePreview returns the inline viewer URL for artifact in the current folder.
func (w *Workspace) LocatePreview(artifact model.ArtifactType) (model.Locator, error) {
	return w.locator.LocatePreview(artifact, w.session.State().SessionID)
}

// LoadedMessage is the confirmation shown after an upload.
func LoadedMessage(n int) string {
	return fmt.Sprintf("Loaded %d DNA sequence(s) from the file", n)
}
