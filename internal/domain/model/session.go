package model

import (
	"fmt"
	"strings"
)

// Phase is the lifecycle position of the current job.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type Phase string

const (
	// PhaseIdle means no job has been submitted in this session.
	PhaseIdle Phase = "idle"
	// PhaseSubmitting means a payload was sent and no progress has arrived yet.
	PhaseSubmitting Phase = "submitting"
	// PhaseInProgress means the backend has reported progress for the job.
	PhaseInProgress Phase = "in_progress"
	// PhaseComplete is terminal: artifacts are available.
	PhaseComplete Phase = "complete"
	// PhaseError is terminal: the backend reported a failure.
	PhaseError Phase = "error"
)

// Valid returns true if the Phase is a known value.
func (p Phase) Valid() bool {
	switch p {
	case PhaseIdle, PhaseSubmitting, PhaseInProgress, PhaseComplete, PhaseError:
		return true
	default:
		return false
	}
}

// Terminal reports whether the job makes no further progress without a new submission.
func (p Phase) Terminal() bool {
	return p == PhaseComplete || p == PhaseError
}

// Active reports whether a job is awaiting backend progress.
func (p Phase) Active() bool {
	return p == PhaseSubmitting || p == PhaseInProgress
}

// UnmarshalText implements encoding.TextUnmarshaler for Phase.
func (p *Phase) UnmarshalText(text []byte) error {
	v := Phase(strings.ToLower(strings.TrimSpace(string(text))))
	if !v.Valid() {
		return fmt.Errorf("invalid Phase: %q", v)
	}
	*p = v
	return nil
}

// ConnectionStatus describes the duplex connection as seen by the session.
type ConnectionStatus string

const (
	// ConnectionOpen means a live connection is available for sends.
	ConnectionOpen ConnectionStatus = "open"
	// ConnectionReconnecting means the previous connection closed and a replacement is being dialed.
	ConnectionReconnecting ConnectionStatus = "reconnecting"
)

// JobSessionState is the single in-memory record of the current job as displayed to the user.
type JobSessionState struct {
	ConnectionStatus ConnectionStatus `json:"connection_status"`
	// SessionID is the backend folder identifier; empty until assigned.
	SessionID   string   `json:"session_id,omitempty"`
	JobID       string   `json:"job_id,omitempty"`
	Phase       Phase    `json:"phase"`
	Title       string   `json:"title"`
	Description []string `json:"description,omitempty"`
	ErrorDetail string   `json:"error_detail,omitempty"`
}

// Clone returns a copy that does not share the description slice.
func (s JobSessionState) Clone() JobSessionState {
	out := s
	if s.Description != nil {
		out.Description = append([]string(nil), s.Description...)
	}
	return out
}

// SessionView is everything a presenter needs to render the job area.
// Preview and the locator lists are populated only in PhaseComplete.
type SessionView struct {
	State     JobSessionState   `json:"state"`
	Preview   []SubmissionEntry `json:"preview,omitempty"`
	Downloads []Locator         `json:"downloads,omitempty"`
	Previews  []Locator         `json:"previews,omitempty"`
}
