package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/batchblast/batchblast/internal/core"
	"github.com/batchblast/batchblast/internal/domain/model"
	apperrors "github.com/batchblast/batchblast/internal/errors"
	"github.com/batchblast/batchblast/internal/observability/metrics"
	"github.com/batchblast/batchblast/internal/observability/statsd"
)

// ErrJobInFlight is returned by Submit while the previous job is still awaiting the backend.
var ErrJobInFlight = apperrors.Conflict("a job is already in progress; wait for it to finish or abandon it")

const (
	submittingTitle            = "Submitting DNA Sequences"
	submittingDescription      = "Performing BLAST analysis and report generation..."
	defaultProgressTitle       = "Processing DNA Sequences"
	defaultProgressDescription = "Processing... Please wait."
	defaultErrorDetail         = "An error occurred during processing"
	errorDetailSeparator       = " | "
	progressLabel              = "Progress: "
	abandonedTitle             = "Abandoned"
)

// ResultSet exposes the retained result set of the latest accepted submission.
type ResultSet interface {
	Current() (model.SubmissionPayload, bool)
}

// JobSessionOptions groups dependencies for JobSession.
type JobSessionOptions struct {
	Transport core.Transport                   // Required: outbound job stream
	Results   ResultSet                        // Required: retained result set for the preview
	Locator   DownloadLocator                  // Required: artifact URLs on completion
	Presenter core.Presenter                   // Optional: receives a view after every change
	FolderIDs core.FolderIDStore               // Optional: persists the folder id across restarts
	History   core.SubmissionHistoryRepository // Optional: durable submission log
	Metrics   statsd.Sink                      // Optional: metrics sink (StatsD-compatible)
	Now       func() time.Time                 // Optional: clock override for tests
	Logger    *slog.Logger                     // Optional: structured logger
}

// JobSession owns the state of the current job and interprets the backend's job stream.
//
// All mutation happens under one mutex: Submit, the connection callbacks,
// HandleMessage, OverrideStatus and Abandon. The presenter is invoked while the
// lock is held and must not call back into the session.
type JobSession struct {
	transport core.Transport
	results   ResultSet
	locator   DownloadLocator
	presenter core.Presenter
	folderIDs core.FolderIDStore
	history   core.SubmissionHistoryRepository
	metrics   statsd.Sink
	now       func() time.Time
	logger    *slog.Logger

	mu          sync.Mutex
	state       model.JobSessionState
	preview     []model.SubmissionEntry
	downloads   []model.Locator
	previews    []model.Locator
	submittedAt time.Time
}

var _ core.ConnectionHandler = (*JobSession)(nil)

// NewJobSession constructs a new JobSession in the idle phase.
func NewJobSession(opts JobSessionOptions) *JobSession {
	if opts.Transport == nil {
		panic("Transport is required")
	}
	if opts.Results == nil {
		panic("ResultSet is required")
	}
	if opts.Locator.base == "" {
		panic("DownloadLocator base URL is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &JobSession{
		transport: opts.Transport,
		results:   opts.Results,
		locator:   opts.Locator,
		presenter: opts.Presenter,
		folderIDs: opts.FolderIDs,
		history:   opts.History,
		metrics:   opts.Metrics,
		now:       now,
		logger:    logger.With("component", "job_session"),
		state: model.JobSessionState{
			ConnectionStatus: model.ConnectionReconnecting,
			Phase:            model.PhaseIdle,
		},
	}
}

// State returns a copy of the current state.
func (s *JobSession) State() model.JobSessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// View returns what the presenter was last asked to render.
func (s *JobSession) View() model.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Busy reports whether a job is awaiting the backend.
func (s *JobSession) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Phase.Active()
}

// Restore loads the persisted folder id so downloads keep working after a restart.
func (s *JobSession) Restore(ctx context.Context) error {
	if s.folderIDs == nil {
		return nil
	}
	id, err := s.folderIDs.Load(ctx)
	if err != nil {
		return fmt.Errorf("restore folder id: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if id != "" {
		s.state.SessionID = id
		s.logger.InfoContext(ctx, "restored folder id", "folder_id", id)
	}
	s.render()
	return nil
}

// Submit sends payload as a new job. It is refused while another job is submitting or in progress.
// If the send fails the previous state is restored and a transport error is returned.
func (s *JobSession) Submit(ctx context.Context, payload model.SubmissionPayload) error {
	if payload.Empty() {
		return ErrNothingToSubmit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Phase.Active() {
		return ErrJobInFlight
	}

	prev := s.saveLocked()
	s.state.Phase = model.PhaseSubmitting
	s.state.JobID = payload.JobID
	s.state.SessionID = ""
	s.state.Title = submittingTitle
	s.state.Description = []string{submittingDescription}
	s.state.ErrorDetail = ""
	s.preview, s.downloads, s.previews = nil, nil, nil
	s.submittedAt = s.now()
	s.render()

	if err := s.transport.Send(ctx, Encode(payload)); err != nil {
		s.restoreLocked(prev)
		s.render()
		terr := apperrors.Transport(err, "send submission")
		s.emit(metrics.TransitionSubmit, metrics.ResultError, terr)
		s.logger.ErrorContext(ctx, "submission send failed", "job_id", payload.JobID, "error", err)
		return terr
	}

	s.emit(metrics.TransitionSubmit, metrics.ResultSuccess, nil)
	s.logger.InfoContext(ctx, "submission sent", "job_id", payload.JobID, "entries", len(payload.Entries))

	if s.history != nil {
		err := s.history.RecordSubmitted(ctx, model.SubmissionHistory{
			JobID:      payload.JobID,
			EntryCount: len(payload.Entries),
			Titles:     payload.Titles(),
			Phase:      model.PhaseSubmitting,
			Title:      submittingTitle,
		})
		if err != nil {
			s.logger.WarnContext(ctx, "record submission history failed", "job_id", payload.JobID, "error", err)
		}
	}
	return nil
}

// OnOpen marks the connection live. Job state is untouched.
func (s *JobSession) OnOpen(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ConnectionStatus = model.ConnectionOpen
	s.logger.DebugContext(ctx, "connection open")
	metrics.EmitConnection(s.metrics, "open")
	s.render()
}

// OnClose marks the connection as reconnecting. Job state is untouched.
func (s *JobSession) OnClose(ctx context.Context, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ConnectionStatus = model.ConnectionReconnecting
	if err != nil {
		s.logger.WarnContext(ctx, "connection closed", "error", err)
	}
	metrics.EmitConnection(s.metrics, "close")
	s.render()
}

// HandleMessage interprets one inbound job stream message. It never fails;
// unrecognised messages are logged and ignored.
func (s *JobSession) HandleMessage(ctx context.Context, data []byte) {
	msg := decodeMessage(data)

	s.mu.Lock()
	defer s.mu.Unlock()

	handled := s.applyLocked(ctx, msg)
	metrics.EmitMessage(s.metrics, msg.kind.String(), handled)
	if !handled {
		s.logger.DebugContext(ctx, "job message ignored", "message", msg.String(), "phase", s.state.Phase)
	}
}

// OverrideStatus replaces the displayed title and description without changing the phase.
// It exists for troubleshooting a stalled job.
func (s *JobSession) OverrideStatus(title, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Title = title
	s.state.Description = textLines(description)
	s.render()
}

// Abandon returns the session to idle so a new job can be submitted.
// The folder id is kept. A submission still waiting in the transport's
// reconnect queue is dropped so it never reaches the backend.
// It reports whether anything changed.
func (s *JobSession) Abandon(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Phase == model.PhaseIdle {
		return false
	}

	wasActive := s.state.Phase.Active()
	jobID := s.state.JobID
	s.state.Phase = model.PhaseIdle
	s.state.JobID = ""
	s.state.Title = ""
	s.state.Description = nil
	s.state.ErrorDetail = ""
	s.preview, s.downloads, s.previews = nil, nil, nil
	s.render()

	dropped := 0
	if q, ok := s.transport.(core.QueueDiscarder); ok && wasActive {
		dropped = q.DiscardQueued(ctx)
	}

	s.emit(metrics.TransitionAbandon, metrics.ResultSuccess, nil)
	s.logger.InfoContext(ctx, "job abandoned", "job_id", jobID, "was_active", wasActive, "dropped_sends", dropped)
	if wasActive {
		s.recordOutcome(ctx, jobID, model.SubmissionOutcome{Phase: model.PhaseIdle, Title: abandonedTitle})
	}
	return true
}

func (s *JobSession) applyLocked(ctx context.Context, msg inboundMessage) bool {
	handled := false
	if msg.folderID != "" {
		s.assignFolderLocked(ctx, msg.folderID)
		handled = true
	}

	switch msg.kind {
	case messagePlainText:
		if len(msg.lines) == 0 {
			return handled
		}
		return s.applyLinesLocked(ctx, msg.lines, false) || handled
	case messageList:
		if len(msg.lines) == 0 {
			return handled
		}
		return s.applyLinesLocked(ctx, msg.lines, true) || handled
	case messageObject:
		return s.applyObjectLocked(ctx, msg.object) || handled
	default:
		if !handled {
			s.logger.WarnContext(ctx, "unrecognised job message shape")
		}
		return handled
	}
}

func (s *JobSession) applyLinesLocked(ctx context.Context, lines []string, list bool) bool {
	headline, rest := lines[0], lines[1:]

	switch classifyHeadline(headline) {
	case headlineComplete:
		return s.completeLocked(ctx, headline, nonEmpty(rest))
	case headlineError:
		detail := strings.Join(trimAll(nonEmpty(rest)), errorDetailSeparator)
		if detail == "" {
			detail = defaultErrorDetail
		}
		return s.failLocked(ctx, headline, detail)
	}

	title := headline
	if strings.TrimSpace(title) == "" {
		title = defaultProgressTitle
	}
	switch {
	case list && len(rest) == 0:
		return s.progressLocked(ctx, title, []string{defaultProgressDescription})
	case list:
		return s.progressLocked(ctx, title, nonEmpty(rest))
	case len(rest) == 0:
		// A single text line only replaces the title.
		return s.progressLocked(ctx, title, s.state.Description)
	default:
		return s.progressLocked(ctx, title, rest)
	}
}

func (s *JobSession) applyObjectLocked(ctx context.Context, o objectFields) bool {
	if !o.hasUpdate() && !o.Complete {
		s.logger.WarnContext(ctx, "job message object has no recognised fields")
		return false
	}

	handled := false
	if o.hasUpdate() {
		title := s.state.Title
		desc := append([]string(nil), s.state.Description...)
		if o.Status != nil {
			title = *o.Status
		}
		if o.Message != nil {
			desc = []string{*o.Message}
		}
		if o.Messages != nil {
			desc = append([]string(nil), o.Messages...)
		}
		if o.Progress != nil {
			desc = append(desc, progressLabel+*o.Progress)
		}
		handled = s.progressLocked(ctx, title, desc)
	}
	if o.Complete {
		handled = s.completeLocked(ctx, "", nil) || handled
	}
	return handled
}

func (s *JobSession) progressLocked(ctx context.Context, title string, desc []string) bool {
	if s.state.Phase.Terminal() {
		return false
	}
	s.state.Phase = model.PhaseInProgress
	s.state.Title = title
	s.state.Description = append([]string(nil), desc...)
	s.render()
	s.emit(metrics.TransitionProgress, metrics.ResultSuccess, nil)
	s.logger.DebugContext(ctx, "job progress", "title", title)
	return true
}

func (s *JobSession) completeLocked(ctx context.Context, title string, desc []string) bool {
	switch s.state.Phase {
	case model.PhaseError:
		return false
	case model.PhaseComplete:
		// Replayed completion: show the same view again.
		s.render()
		return true
	}

	s.state.Phase = model.PhaseComplete
	if strings.TrimSpace(title) != "" {
		s.state.Title = title
	}
	if len(desc) > 0 {
		s.state.Description = append([]string(nil), desc...)
	}
	s.state.ErrorDetail = ""
	if current, ok := s.results.Current(); ok {
		s.preview = current.Entries
	}
	s.refreshArtifactsLocked(ctx)
	s.render()

	s.emit(metrics.TransitionComplete, metrics.ResultSuccess, nil)
	s.logger.InfoContext(ctx, "job complete", "job_id", s.state.JobID, "folder_id", s.state.SessionID)
	s.recordOutcome(ctx, s.state.JobID, model.SubmissionOutcome{Phase: model.PhaseComplete, Title: s.state.Title})
	return true
}

func (s *JobSession) failLocked(ctx context.Context, title, detail string) bool {
	if s.state.Phase.Terminal() {
		return false
	}
	s.state.Phase = model.PhaseError
	s.state.Title = title
	s.state.Description = nil
	s.state.ErrorDetail = detail
	s.render()

	s.emit(metrics.TransitionFail, metrics.ResultError, apperrors.Internal(detail))
	s.logger.WarnContext(ctx, "job failed", "job_id", s.state.JobID, "title", title, "detail", detail)
	s.recordOutcome(ctx, s.state.JobID, model.SubmissionOutcome{Phase: model.PhaseError, Title: title, Detail: detail})
	return true
}

func (s *JobSession) assignFolderLocked(ctx context.Context, id string) {
	s.state.SessionID = id
	if s.state.Phase == model.PhaseComplete {
		s.refreshArtifactsLocked(ctx)
	}
	s.render()

	s.emit(metrics.TransitionFolderID, metrics.ResultSuccess, nil)
	s.logger.InfoContext(ctx, "folder id assigned", "folder_id", id, "job_id", s.state.JobID)

	if s.folderIDs != nil {
		if err := s.folderIDs.Save(ctx, id); err != nil {
			s.logger.ErrorContext(ctx, "persist folder id failed", "folder_id", id, "error", err)
		}
	}
	if s.history != nil && s.state.JobID != "" {
		if err := s.history.SetFolderID(ctx, s.state.JobID, id); err != nil {
			s.logger.WarnContext(ctx, "record folder id failed", "job_id", s.state.JobID, "error", err)
		}
	}
}

func (s *JobSession) refreshArtifactsLocked(ctx context.Context) {
	downloads, previews, err := s.locator.All(s.state.SessionID)
	if err != nil {
		s.logger.WarnContext(ctx, "artifact locators unavailable", "error", err)
		s.downloads, s.previews = nil, nil
		return
	}
	s.downloads, s.previews = downloads, previews
}

func (s *JobSession) recordOutcome(ctx context.Context, jobID string, outcome model.SubmissionOutcome) {
	if s.history == nil || jobID == "" {
		return
	}
	if err := s.history.RecordOutcome(ctx, jobID, outcome); err != nil {
		s.logger.WarnContext(ctx, "record submission outcome failed", "job_id", jobID, "error", err)
	}
}

func (s *JobSession) emit(transition, result string, err error) {
	var d time.Duration
	terminal := transition == metrics.TransitionComplete || transition == metrics.TransitionFail
	if terminal && !s.submittedAt.IsZero() {
		d = s.now().Sub(s.submittedAt)
	}
	metrics.EmitSessionTransition(s.metrics, metrics.SessionMetric{
		Transition: transition,
		Phase:      string(s.state.Phase),
		Result:     result,
		Duration:   d,
		Err:        err,
	})
}

func (s *JobSession) render() {
	if s.presenter == nil {
		return
	}
	s.presenter.Render(s.viewLocked())
}

func (s *JobSession) viewLocked() model.SessionView {
	return model.SessionView{
		State:     s.state.Clone(),
		Preview:   append([]model.SubmissionEntry(nil), s.preview...),
		Downloads: append([]model.Locator(nil), s.downloads...),
		Previews:  append([]model.Locator(nil), s.previews...),
	}
}

type savedSession struct {
	state       model.JobSessionState
	preview     []model.SubmissionEntry
	downloads   []model.Locator
	previews    []model.Locator
	submittedAt time.Time
}

func (s *JobSession) saveLocked() savedSession {
	return savedSession{
		state:       s.state.Clone(),
		preview:     s.preview,
		downloads:   s.downloads,
		previews:    s.previews,
		submittedAt: s.submittedAt,
	}
}

func (s *JobSession) restoreLocked(saved savedSession) {
	status := s.state.ConnectionStatus
	s.state = saved.state
	s.state.ConnectionStatus = status
	s.preview, s.downloads, s.previews = saved.preview, saved.downloads, saved.previews
	s.submittedAt = saved.submittedAt
}

func trimAll(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = strings.TrimSpace(l)
	}
	return out
}
