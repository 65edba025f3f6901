package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/batchblast/batchblast/internal/errors"
	"github.com/batchblast/batchblast/internal/observability/statsd"
)

func TestEmitSessionTransition(t *testing.T) {
	var rec statsd.Recorder

	EmitSessionTransition(&rec, SessionMetric{
		Transition: TransitionFail,
		Phase:      "error",
		Result:     ResultError,
		Duration:   2 * time.Second,
		Err:        apperrors.Transport(errors.New("eof"), "send"),
	})

	counts := rec.Named("session.transition")
	require.Len(t, counts, 1)
	assert.Equal(t, "transport", counts[0].Tags["error_class"])
	assert.Equal(t, "fail", counts[0].Tags["transition"])

	timings := rec.Named("session.duration")
	require.Len(t, timings, 1)
	assert.InDelta(t, 2000, timings[0].Value, 0.001)
}

func TestEmitSessionTransition_NoDurationNoError(t *testing.T) {
	var rec statsd.Recorder

	EmitSessionTransition(&rec, SessionMetric{Transition: TransitionProgress, Phase: "in_progress", Result: ResultSuccess})

	require.Len(t, rec.Samples(), 1)
	_, hasClass := rec.Samples()[0].Tags["error_class"]
	assert.False(t, hasClass)
}

func TestEmitHelpers_NilSink(t *testing.T) {
	EmitSessionTransition(nil, SessionMetric{})
	EmitConnection(nil, "open")
	EmitMessage(nil, "list", true)
}

func TestEmitMessage(t *testing.T) {
	var rec statsd.Recorder

	EmitMessage(&rec, "object", false)
	EmitConnection(&rec, "close")

	msgs := rec.Named("message.received")
	require.Len(t, msgs, 1)
	assert.Equal(t, ResultNoop, msgs[0].Tags["result"])
	assert.Len(t, rec.Named("connection.event"), 1)
}

func TestCloneTags(t *testing.T) {
	assert.Nil(t, CloneTags(nil))
	src := map[string]string{"a": "b"}
	cp := CloneTags(src)
	cp["a"] = "c"
	assert.Equal(t, "b", src["a"])
}
