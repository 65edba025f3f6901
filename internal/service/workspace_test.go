package service

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/batchblast/batchblast/internal/domain/model"
	apperrors "github.com/batchblast/batchblast/internal/errors"
	"github.com/batchblast/batchblast/internal/fasta"
	"github.com/batchblast/batchblast/internal/mocks/fakes"
)

func newTestWorkspace(t *testing.T) (*Workspace, *fakes.Transport, *fakes.RecordingPresenter) {
	t.Helper()
	transport := &fakes.Transport{}
	presenter := &fakes.RecordingPresenter{}
	ws := NewWorkspace(WorkspaceOptions{
		Session: JobSessionOptions{
			Transport: transport,
			Locator:   NewDownloadLocator("http://backend/"),
			Presenter: presenter,
			FolderIDs: &fakes.MemoryFolderIDStore{},
		},
	})
	return ws, transport, presenter
}

func TestWorkspace_UploadAndSubmit(t *testing.T) {
	ws, transport, _ := newTestWorkspace(t)
	ctx := context.Background()

	n, err := ws.Upload(ctx, ">seq1\nATCG\n>seq2\nGG\nCC\n")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "Loaded 2 DNA sequence(s) from the file", LoadedMessage(n))

	payload, err := ws.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"seq1", "seq2"}, payload.Titles())
	assert.Equal(t, []string{">seq1\nATCG\n>seq2\nGGCC"}, transport.Sent())
	assert.Equal(t, model.PhaseSubmitting, ws.Session().State().Phase)
}

func TestWorkspace_SubmittedTextParsesBackToPayload(t *testing.T) {
	ws, transport, _ := newTestWorkspace(t)
	ctx := context.Background()

	ws.Records().Append("first read", "atg nnc\n")
	ws.Records().Append("second", "GG-CC")
	ws.Records().Append("empty", "xyz")

	payload, err := ws.Submit(ctx)
	require.NoError(t, err)
	require.Len(t, transport.Sent(), 1)

	parsed := fasta.Parse(transport.Sent()[0])
	require.Len(t, parsed, len(payload.Entries))
	nucleotides := regexp.MustCompile(`^[ACGT]+$`)
	for i, entry := range payload.Entries {
		assert.Equal(t, entry.Title, parsed[i].Title)
		assert.Equal(t, entry.Sequence, parsed[i].Sequence)
		assert.Regexp(t, nucleotides, parsed[i].Sequence)
	}
	assert.Equal(t, []string{"first read", "second"}, payload.Titles())
}

func TestWorkspace_TitleWithMarkerRefused(t *testing.T) {
	ws, transport, _ := newTestWorkspace(t)
	ctx := context.Background()

	ws.Records().Append("a>b", "ATGC")
	ws.Records().Append("c", "ATGNNC")

	_, err := ws.Submit(ctx)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "title[1]", apperrors.GetField(err))
	assert.Empty(t, transport.Sent())
	assert.Equal(t, model.PhaseIdle, ws.Session().State().Phase)
}

func TestWorkspace_BlankTitleRefused(t *testing.T) {
	ws, transport, presenter := newTestWorkspace(t)
	ctx := context.Background()

	ws.Records().Append("ok", "ATCG")
	ws.Records().Append("   ", "GGCC")

	_, err := ws.Submit(ctx)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Empty(t, transport.Sent())
	assert.Equal(t, model.PhaseIdle, ws.Session().State().Phase)
	assert.Zero(t, presenter.Count())
}

func TestWorkspace_SubmitWhileBusy(t *testing.T) {
	ws, transport, _ := newTestWorkspace(t)
	ctx := context.Background()
	ws.Records().Append("a", "ATCG")

	_, err := ws.Submit(ctx)
	require.NoError(t, err)
	_, err = ws.Submit(ctx)
	require.ErrorIs(t, err, ErrJobInFlight)
	assert.Len(t, transport.Sent(), 1)
}

func TestWorkspace_SendFailureKeepsPreviousResultSet(t *testing.T) {
	ws, transport, _ := newTestWorkspace(t)
	ctx := context.Background()

	ws.Records().Append("first", "AAAA")
	first, err := ws.Submit(ctx)
	require.NoError(t, err)
	ws.Session().HandleMessage(ctx, []byte(`["folderid", "F1"]`))
	ws.Session().HandleMessage(ctx, []byte(`["BLAST Completed..."]`))

	ws.Records().Append("second", "CCCC")
	transport.Err = errors.New("closed")
	_, err = ws.Submit(ctx)
	require.Error(t, err)
	assert.True(t, apperrors.IsTransport(err))

	current, ok := ws.builder.Current()
	require.True(t, ok)
	assert.Equal(t, first.JobID, current.JobID)

	view := ws.Session().View()
	assert.Equal(t, model.PhaseComplete, view.State.Phase)
	assert.Equal(t, first.Entries, view.Preview)
	assert.Len(t, view.Downloads, 4)
}

func TestWorkspace_LocateUsesSessionID(t *testing.T) {
	ws, _, _ := newTestWorkspace(t)
	ctx := context.Background()

	_, err := ws.Locate(model.ArtifactCSVBundle)
	require.ErrorIs(t, err, ErrNoSession)

	ws.Session().HandleMessage(ctx, []byte(`["folderid", "20240101"]`))

	loc, err := ws.Locate(model.ArtifactInputsFASTA)
	require.NoError(t, err)
	assert.Equal(t, "http://backend/download?folderid=20240101&type=4", loc.URL)

	prev, err := ws.LocatePreview(model.ArtifactFullReport)
	require.NoError(t, err)
	assert.True(t, prev.Inline)
	assert.Equal(t, "http://backend/preview?folderid=20240101&type=2", prev.URL)
}

func TestWorkspace_ClearWhenIdleHidesResults(t *testing.T) {
	ws, _, _ := newTestWorkspace(t)
	ctx := context.Background()

	ws.Records().Append("a", "ATCG")
	_, err := ws.Submit(ctx)
	require.NoError(t, err)
	ws.Session().HandleMessage(ctx, []byte(`["folderid", "F1"]`))
	ws.Session().HandleMessage(ctx, []byte(`{"complete": true}`))

	ws.Clear(ctx)

	assert.Zero(t, ws.Records().Len())
	view := ws.Session().View()
	assert.Equal(t, model.PhaseIdle, view.State.Phase)
	assert.Equal(t, "F1", view.State.SessionID)
	assert.Empty(t, view.Preview)
	assert.Empty(t, view.Downloads)
	_, ok := ws.builder.Current()
	assert.False(t, ok)
}

func TestWorkspace_ClearWhileBusyKeepsJob(t *testing.T) {
	ws, _, _ := newTestWorkspace(t)
	ctx := context.Background()

	ws.Records().Append("a", "ATCG")
	_, err := ws.Submit(ctx)
	require.NoError(t, err)

	ws.Clear(ctx)

	assert.Zero(t, ws.Records().Len())
	assert.Equal(t, model.PhaseSubmitting, ws.Session().State().Phase)
	_, ok := ws.builder.Current()
	assert.True(t, ok)
}

func TestWorkspace_IndependentWorkspaces(t *testing.T) {
	a, _, _ := newTestWorkspace(t)
	b, _, _ := newTestWorkspace(t)

	a.Records().Append("x", "ATCG")
	assert.Equal(t, 1, a.Records().Len())
	assert.Zero(t, b.Records().Len())
}
