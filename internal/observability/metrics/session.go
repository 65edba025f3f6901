// Package metrics emits the standard job session metrics.
package metrics

import (
	"time"

	obserrors "github.com/batchblast/batchblast/internal/observability/errors"
	"github.com/batchblast/batchblast/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
)

// Transition names.
const (
	TransitionSubmit   = "submit"
	TransitionProgress = "progress"
	TransitionComplete = "complete"
	TransitionFail     = "fail"
	TransitionAbandon  = "abandon"
	TransitionFolderID = "folder_id"
)

// SessionMetric captures one job session transition.
type SessionMetric struct {
	Transition string
	Phase      string
	Result     string
	// Duration is measured from submission; zero skips the timing metric.
	Duration time.Duration
	Err      error
}

// EmitSessionTransition emits a transition counter and, for terminal transitions, the job duration.
func EmitSessionTransition(sink statsd.Sink, in SessionMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"transition": in.Transition,
		"phase":      in.Phase,
		"result":     in.Result,
	}
	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("session.transition", 1, tags)
	if in.Duration > 0 {
		sink.Timing("session.duration", in.Duration, CloneTags(tags))
	}
}

// EmitConnection counts connection lifecycle events ("open", "close", "dial_error").
func EmitConnection(sink statsd.Sink, event string) {
	if sink == nil {
		return
	}
	sink.Count("connection.event", 1, map[string]string{"event": event})
}

// EmitMessage counts inbound messages by decoded shape.
func EmitMessage(sink statsd.Sink, kind string, handled bool) {
	if sink == nil {
		return
	}
	result := ResultSuccess
	if !handled {
		result = ResultNoop
	}
	sink.Count("message.received", 1, map[string]string{"kind": kind, "result": result})
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
