package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/batchblast/batchblast/internal/domain/model"
	apperrors "github.com/batchblast/batchblast/internal/errors"
	"github.com/batchblast/batchblast/internal/mocks"
	"github.com/batchblast/batchblast/internal/mocks/fakes"
	"github.com/batchblast/batchblast/internal/observability/statsd"
)

type sessionFixture struct {
	session   *JobSession
	builder   *SubmissionBuilder
	transport *fakes.Transport
	presenter *fakes.RecordingPresenter
	folders   *fakes.MemoryFolderIDStore
	metrics   *statsd.Recorder
}

func newSessionFixture(t *testing.T, mutate ...func(*JobSessionOptions)) *sessionFixture {
	t.Helper()
	f := &sessionFixture{
		builder:   NewSubmissionBuilder(),
		transport: &fakes.Transport{},
		presenter: &fakes.RecordingPresenter{},
		folders:   &fakes.MemoryFolderIDStore{},
		metrics:   &statsd.Recorder{},
	}
	opts := JobSessionOptions{
		Transport: f.transport,
		Results:   f.builder,
		Locator:   NewDownloadLocator("http://backend"),
		Presenter: f.presenter,
		FolderIDs: f.folders,
		Metrics:   f.metrics,
	}
	for _, m := range mutate {
		m(&opts)
	}
	f.session = NewJobSession(opts)
	return f
}

// submit builds and sends records, failing the test on error.
func (f *sessionFixture) submit(t *testing.T, pairs ...string) model.SubmissionPayload {
	t.Helper()
	payload, err := f.builder.Build(recs(pairs...))
	require.NoError(t, err)
	require.NoError(t, f.session.Submit(context.Background(), payload))
	return payload
}

func (f *sessionFixture) msg(raw string) {
	f.session.HandleMessage(context.Background(), []byte(raw))
}

func TestJobSession_Submit(t *testing.T) {
	f := newSessionFixture(t)

	payload := f.submit(t, "A", "ATCG", "B", "GGCC")

	assert.Equal(t, []string{">A\nATCG\n>B\nGGCC"}, f.transport.Sent())
	st := f.session.State()
	assert.Equal(t, model.PhaseSubmitting, st.Phase)
	assert.Equal(t, payload.JobID, st.JobID)
	assert.Equal(t, "Submitting DNA Sequences", st.Title)
	assert.Equal(t, []string{"Performing BLAST analysis and report generation..."}, st.Description)

	last, ok := f.presenter.Last()
	require.True(t, ok)
	assert.Equal(t, model.PhaseSubmitting, last.State.Phase)
	assert.Empty(t, last.Downloads)
}

func TestJobSession_SubmitRefusedWhileInFlight(t *testing.T) {
	f := newSessionFixture(t)
	f.submit(t, "A", "ATCG")

	payload, err := f.builder.Build(recs("B", "GG"))
	require.NoError(t, err)
	err = f.session.Submit(context.Background(), payload)
	require.ErrorIs(t, err, ErrJobInFlight)
	assert.Len(t, f.transport.Sent(), 1)

	f.msg(`["Running BLAST NCBI...", "query 1"]`)
	require.ErrorIs(t, f.session.Submit(context.Background(), payload), ErrJobInFlight)

	require.True(t, f.session.Abandon(context.Background()))
	assert.Equal(t, model.PhaseIdle, f.session.State().Phase)
	require.NoError(t, f.session.Submit(context.Background(), payload))
}

func TestJobSession_SubmitSendFailureRestoresState(t *testing.T) {
	f := newSessionFixture(t)
	f.transport.Err = errors.New("connection reset")
	before := f.session.State()

	payload, err := f.builder.Build(recs("A", "ATCG"))
	require.NoError(t, err)
	err = f.session.Submit(context.Background(), payload)

	require.Error(t, err)
	assert.True(t, apperrors.IsTransport(err))
	assert.Equal(t, before, f.session.State())
	assert.False(t, f.session.Busy())
	last, _ := f.presenter.Last()
	assert.Equal(t, model.PhaseIdle, last.State.Phase)
}

func TestJobSession_SubmitEmptyPayload(t *testing.T) {
	f := newSessionFixture(t)
	err := f.session.Submit(context.Background(), model.SubmissionPayload{})
	require.ErrorIs(t, err, ErrNothingToSubmit)
	assert.Zero(t, f.presenter.Count())
}

func TestJobSession_ErrorListJoinsDetail(t *testing.T) {
	f := newSessionFixture(t)
	f.submit(t, "A", "ATCG")

	f.msg(`["Error", "bad format", "row 3"]`)

	st := f.session.State()
	assert.Equal(t, model.PhaseError, st.Phase)
	assert.Equal(t, "Error", st.Title)
	assert.Equal(t, "bad format | row 3", st.ErrorDetail)
	assert.False(t, f.session.Busy())
}

func TestJobSession_ErrorDefaultsDetail(t *testing.T) {
	f := newSessionFixture(t)
	f.submit(t, "A", "ATCG")

	f.msg(`["Error", "", "  "]`)

	assert.Equal(t, "An error occurred during processing", f.session.State().ErrorDetail)
}

func TestJobSession_ObjectProgressThenComplete(t *testing.T) {
	f := newSessionFixture(t)
	payload := f.submit(t, "A", "ATCG", "B", "GGCC")
	f.msg(`["folderid", "F42"]`)

	f.msg(`{"status":"Aligning", "progress":"40%"}`)
	st := f.session.State()
	assert.Equal(t, model.PhaseInProgress, st.Phase)
	assert.Equal(t, "Aligning", st.Title)
	assert.Equal(t, "Progress: 40%", st.Description[len(st.Description)-1])

	f.msg(`{"complete": true}`)

	view := f.session.View()
	assert.Equal(t, model.PhaseComplete, view.State.Phase)
	assert.Equal(t, payload.Entries, view.Preview)
	require.Len(t, view.Downloads, 4)
	assert.Equal(t, "http://backend/download?folderid=F42&type=1", view.Downloads[0].URL)
	require.Len(t, view.Previews, 2)
	assert.Equal(t, "http://backend/preview?folderid=F42&type=3", view.Previews[1].URL)
}

func TestJobSession_CompleteIsIdempotent(t *testing.T) {
	f := newSessionFixture(t)
	f.submit(t, "A", "ATCG")
	f.msg(`["folderid", "F1"]`)
	f.msg(`["Running BLAST NCBI...", "q1"]`)
	f.msg(`["Waiting for BLAST Result...", "q1"]`)

	f.msg(`["BLAST Completed...", "done"]`)
	first := f.session.View()
	f.msg(`["BLAST Completed...", "done"]`)
	second := f.session.View()

	assert.Equal(t, model.PhaseComplete, first.State.Phase)
	assert.Equal(t, first, second)
	last, _ := f.presenter.Last()
	assert.Equal(t, first, last)
}

func TestJobSession_TerminalPhaseIgnoresLaterMessages(t *testing.T) {
	f := newSessionFixture(t)
	f.submit(t, "A", "ATCG")
	f.msg(`["Successfully completed mass BLAST"]`)
	done := f.session.View()

	f.msg(`["Running again"]`)
	f.msg(`{"status":"late"}`)
	f.msg(`["Error", "late failure"]`)

	assert.Equal(t, done, f.session.View())
}

func TestJobSession_FolderIDPersistedWithoutPhaseChange(t *testing.T) {
	f := newSessionFixture(t)
	f.submit(t, "A", "ATCG")
	title := f.session.State().Title

	f.msg(`["folderid", "20240101_1200"]`)

	st := f.session.State()
	assert.Equal(t, "20240101_1200", st.SessionID)
	assert.Equal(t, model.PhaseSubmitting, st.Phase)
	assert.Equal(t, title, st.Title)
	id, err := f.folders.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "20240101_1200", id)
}

func TestJobSession_NestedFolderIDContinuesProcessing(t *testing.T) {
	f := newSessionFixture(t)
	f.submit(t, "A", "ATCG")

	f.msg(`[["folderid", "F9"], "Waiting for BLAST Result...", "query 1"]`)

	st := f.session.State()
	assert.Equal(t, "F9", st.SessionID)
	assert.Equal(t, model.PhaseInProgress, st.Phase)
	assert.Equal(t, "Waiting for BLAST Result...", st.Title)
	assert.Equal(t, []string{"query 1"}, st.Description)
}

func TestJobSession_ReconnectLeavesJobUntouched(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	f.session.OnOpen(ctx)
	f.submit(t, "A", "ATCG")
	f.msg(`["folderid", "F1"]`)
	f.msg(`["Running BLAST NCBI..."]`)
	before := f.session.State()

	f.session.OnClose(ctx, errors.New("EOF"))
	assert.Equal(t, model.ConnectionReconnecting, f.session.State().ConnectionStatus)
	f.session.OnOpen(ctx)
	f.msg(`["Parsing Completed...", "report ready"]`)

	st := f.session.State()
	assert.Equal(t, model.ConnectionOpen, st.ConnectionStatus)
	assert.Equal(t, before.SessionID, st.SessionID)
	assert.Equal(t, model.PhaseComplete, st.Phase)
}

func TestJobSession_PlainTextFallback(t *testing.T) {
	t.Run("progress", func(t *testing.T) {
		f := newSessionFixture(t)
		f.submit(t, "A", "ATCG")
		f.msg("Aligning sequences\nbatch 1 of 3\n\nbatch 2 of 3")

		st := f.session.State()
		assert.Equal(t, model.PhaseInProgress, st.Phase)
		assert.Equal(t, "Aligning sequences", st.Title)
		assert.Equal(t, []string{"batch 1 of 3", "batch 2 of 3"}, st.Description)

		f.msg("Still aligning")
		st = f.session.State()
		assert.Equal(t, "Still aligning", st.Title)
		assert.Equal(t, []string{"batch 1 of 3", "batch 2 of 3"}, st.Description)
	})

	t.Run("error", func(t *testing.T) {
		f := newSessionFixture(t)
		f.submit(t, "A", "ATCG")
		f.msg("Fatal ERROR in pipeline\ndisk full\nretry later")

		st := f.session.State()
		assert.Equal(t, model.PhaseError, st.Phase)
		assert.Equal(t, "Fatal ERROR in pipeline", st.Title)
		assert.Equal(t, "disk full | retry later", st.ErrorDetail)
	})

	t.Run("complete", func(t *testing.T) {
		f := newSessionFixture(t)
		f.submit(t, "A", "ATCG")
		f.msg("job complete")
		assert.Equal(t, model.PhaseComplete, f.session.State().Phase)
	})
}

func TestJobSession_ListProgressDefaults(t *testing.T) {
	f := newSessionFixture(t)
	f.submit(t, "A", "ATCG")

	f.msg(`["Running BLAST NCBI..."]`)
	st := f.session.State()
	assert.Equal(t, "Running BLAST NCBI...", st.Title)
	assert.Equal(t, []string{"Processing... Please wait."}, st.Description)

	f.msg(`["", "line 1", "", "line 2"]`)
	st = f.session.State()
	assert.Equal(t, "Processing DNA Sequences", st.Title)
	assert.Equal(t, []string{"line 1", "line 2"}, st.Description)
}

func TestJobSession_ObjectFields(t *testing.T) {
	f := newSessionFixture(t)
	f.submit(t, "A", "ATCG")

	f.msg(`{"message":"one"}`)
	assert.Equal(t, []string{"one"}, f.session.State().Description)

	f.msg(`{"messages":["a","b"], "progress":"10%"}`)
	assert.Equal(t, []string{"a", "b", "Progress: 10%"}, f.session.State().Description)

	f.msg(`{"progress":"20%"}`)
	assert.Equal(t, []string{"a", "b", "Progress: 10%", "Progress: 20%"}, f.session.State().Description)
	assert.Equal(t, "Submitting DNA Sequences", f.session.State().Title)
}

func TestJobSession_UnknownMessagesIgnored(t *testing.T) {
	f := newSessionFixture(t)
	f.submit(t, "A", "ATCG")
	before := f.session.View()
	renders := f.presenter.Count()

	for _, raw := range []string{`42`, `null`, `[]`, `[1, 2]`, `{}`, `{"unrelated": true}`, "", "   \n "} {
		f.msg(raw)
	}

	assert.Equal(t, before, f.session.View())
	assert.Equal(t, renders, f.presenter.Count())
	noop := 0
	for _, s := range f.metrics.Named("message.received") {
		if s.Tags["result"] == "noop" {
			noop++
		}
	}
	assert.Equal(t, 8, noop)
}

func TestJobSession_CompleteWithoutFolderID(t *testing.T) {
	f := newSessionFixture(t)
	f.submit(t, "A", "ATCG")

	f.msg(`{"complete": true}`)
	view := f.session.View()
	assert.Equal(t, model.PhaseComplete, view.State.Phase)
	assert.Empty(t, view.Downloads)

	f.msg(`["folderid", "late"]`)
	view = f.session.View()
	require.Len(t, view.Downloads, 4)
	assert.Contains(t, view.Downloads[0].URL, "folderid=late")
}

func TestJobSession_NewSubmissionSupersedesTerminal(t *testing.T) {
	f := newSessionFixture(t)
	f.submit(t, "A", "ATCG")
	f.msg(`["folderid", "F1"]`)
	f.msg(`["Error", "boom"]`)

	f.submit(t, "B", "GG")

	st := f.session.State()
	assert.Equal(t, model.PhaseSubmitting, st.Phase)
	assert.Empty(t, st.ErrorDetail)
	assert.Empty(t, st.SessionID)
	assert.Empty(t, f.session.View().Downloads)
}

func TestJobSession_OverrideStatusAndAbandon(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	assert.False(t, f.session.Abandon(ctx))

	f.submit(t, "A", "ATCG")
	f.session.OverrideStatus("Stuck?", "check backend\nlogs")
	st := f.session.State()
	assert.Equal(t, "Stuck?", st.Title)
	assert.Equal(t, []string{"check backend", "logs"}, st.Description)
	assert.Equal(t, model.PhaseSubmitting, st.Phase)

	require.True(t, f.session.Abandon(ctx))
	assert.Equal(t, model.PhaseIdle, f.session.State().Phase)
}

func TestJobSession_AbandonDropsQueuedSubmission(t *testing.T) {
	queue := &fakes.QueueingTransport{}
	f := newSessionFixture(t, func(o *JobSessionOptions) { o.Transport = queue })
	ctx := context.Background()

	f.submit(t, "A", "ATCG")
	require.Len(t, queue.Queued(), 1)

	require.True(t, f.session.Abandon(ctx))
	assert.Empty(t, queue.Queued())
	assert.Equal(t, model.PhaseIdle, f.session.State().Phase)

	f.submit(t, "B", "GGCC")
	assert.Equal(t, []string{">B\nGGCC"}, queue.Queued())
}

func TestJobSession_Restore(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	require.NoError(t, f.folders.Save(ctx, "persisted"))

	require.NoError(t, f.session.Restore(ctx))

	st := f.session.State()
	assert.Equal(t, "persisted", st.SessionID)
	assert.Equal(t, model.PhaseIdle, st.Phase)
}

func TestJobSession_RestoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockFolderIDStore(ctrl)
	store.EXPECT().Load(gomock.Any()).Return("", errors.New("redis down"))

	f := newSessionFixture(t, func(o *JobSessionOptions) { o.FolderIDs = store })
	require.Error(t, f.session.Restore(context.Background()))
	assert.Empty(t, f.session.State().SessionID)
}

func TestJobSession_FolderIDSaveFailureIsNotFatal(t *testing.T) {
	f := newSessionFixture(t)
	f.folders.SaveErr = errors.New("read-only")
	f.submit(t, "A", "ATCG")

	f.msg(`["folderid", "F1"]`)

	assert.Equal(t, "F1", f.session.State().SessionID)
}

func TestJobSession_RecordsHistory(t *testing.T) {
	ctrl := gomock.NewController(t)
	history := mocks.NewMockSubmissionHistoryRepository(ctrl)

	f := newSessionFixture(t, func(o *JobSessionOptions) { o.History = history })
	payload, err := f.builder.Build(recs("A", "ATCG", "B", "GG"))
	require.NoError(t, err)

	gomock.InOrder(
		history.EXPECT().RecordSubmitted(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, h model.SubmissionHistory) error {
				assert.Equal(t, payload.JobID, h.JobID)
				assert.Equal(t, 2, h.EntryCount)
				assert.Equal(t, []string{"A", "B"}, h.Titles)
				assert.Equal(t, model.PhaseSubmitting, h.Phase)
				return nil
			}),
		history.EXPECT().SetFolderID(gomock.Any(), payload.JobID, "F1").Return(errors.New("db down")),
		history.EXPECT().RecordOutcome(gomock.Any(), payload.JobID, model.SubmissionOutcome{
			Phase:  model.PhaseError,
			Title:  "Error",
			Detail: "An error occurred, please check error.log file.",
		}).Return(nil),
	)

	require.NoError(t, f.session.Submit(context.Background(), payload))
	f.msg(`["folderid", "F1"]`)
	f.msg(`["Error", "An error occurred, please check error.log file."]`)

	assert.Equal(t, model.PhaseError, f.session.State().Phase)
}

func TestJobSession_EmitsMetrics(t *testing.T) {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f := newSessionFixture(t, func(o *JobSessionOptions) {
		o.Now = func() time.Time { return clock }
	})
	f.submit(t, "A", "ATCG")
	clock = clock.Add(90 * time.Second)
	f.msg(`["BLAST Completed..."]`)

	var transitions []string
	for _, s := range f.metrics.Named("session.transition") {
		transitions = append(transitions, s.Tags["transition"])
	}
	assert.Equal(t, []string{"submit", "complete"}, transitions)

	timings := f.metrics.Named("session.duration")
	require.Len(t, timings, 1)
	assert.InDelta(t, 90000, timings[0].Value, 0.001)
}

func TestNewJobSession_RequiredDeps(t *testing.T) {
	b := NewSubmissionBuilder()
	loc := NewDownloadLocator("http://h")
	assert.Panics(t, func() { NewJobSession(JobSessionOptions{Results: b, Locator: loc}) })
	assert.Panics(t, func() { NewJobSession(JobSessionOptions{Transport: &fakes.Transport{}, Locator: loc}) })
	assert.Panics(t, func() { NewJobSession(JobSessionOptions{Transport: &fakes.Transport{}, Results: b}) })
}
