// Package core defines the ports between the batchblast services and their adapters.
package core

import (
	"context"
	"time"

	"github.com/batchblast/batchblast/internal/domain/model"
)

// This file contains port definitions (hexagonal architecture).
// Services depend on these interfaces; internal/data and internal/adapters provide implementations.

// KeyValueStore is durable storage for small client state.
type KeyValueStore interface {
	// Set stores a value with the given key and TTL.
	// If TTL is 0, the key will not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get retrieves a value by key.
	// Returns nil if the key doesn't exist or has expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes a key.
	// Returns true if the key was deleted, false if it didn't exist.
	Delete(ctx context.Context, key string) (bool, error)

	// Health checks the health of the store connection.
	Health(ctx context.Context) error
}

// FolderIDStore persists the backend folder identifier across restarts.
type FolderIDStore interface {
	// Load returns the stored identifier, or "" when none has been assigned.
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, folderID string) error
	Clear(ctx context.Context) error
}

// Transport sends one text message over the job stream.
type Transport interface {
	Send(ctx context.Context, text string) error
}

// QueueDiscarder is implemented by transports that hold sends while disconnected.
// DiscardQueued drops every held send and returns how many were dropped.
type QueueDiscarder interface {
	DiscardQueued(ctx context.Context) int
}

// ConnectionHandler receives job stream lifecycle callbacks.
// Calls are never concurrent; messages arrive in the order the backend sent them.
type ConnectionHandler interface {
	OnOpen(ctx context.Context)
	OnClose(ctx context.Context, err error)
	HandleMessage(ctx context.Context, data []byte)
}

// Presenter renders the job session after every state change.
type Presenter interface {
	Render(view model.SessionView)
}

// SettingsClient reads and writes the backend analysis settings.
type SettingsClient interface {
	// Fetch returns the positional settings tuple as decoded JSON.
	Fetch(ctx context.Context) ([]any, error)
	Save(ctx context.Context, settings model.Settings) error
}

// SubmissionHistoryRepository records submitted jobs and how they ended.
type SubmissionHistoryRepository interface {
	RecordSubmitted(ctx context.Context, h model.SubmissionHistory) error
	SetFolderID(ctx context.Context, jobID, folderID string) error
	RecordOutcome(ctx context.Context, jobID string, outcome model.SubmissionOutcome) error
	GetByJobID(ctx context.Context, jobID string) (*model.SubmissionHistory, error)
	ListRecent(ctx context.Context, limit int) ([]model.SubmissionHistory, error)
}
