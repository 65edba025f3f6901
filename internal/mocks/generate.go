// Package mocks provides mock implementations of the batchblast core ports.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the port interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	transport := mocks.NewMockTransport(ctrl)
//	transport.EXPECT().Send(gomock.Any(), ">A\nACGT").Return(nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=key_value_store_mock.go github.com/batchblast/batchblast/internal/core KeyValueStore
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=folder_id_store_mock.go github.com/batchblast/batchblast/internal/core FolderIDStore
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=transport_mock.go github.com/batchblast/batchblast/internal/core Transport
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=connection_handler_mock.go github.com/batchblast/batchblast/internal/core ConnectionHandler
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=presenter_mock.go github.com/batchblast/batchblast/internal/core Presenter
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=settings_client_mock.go github.com/batchblast/batchblast/internal/core SettingsClient

// Generate mock for SubmissionHistoryRepository interface from internal/core package.
// This creates MockSubmissionHistoryRepository with methods for all interface methods:
// RecordSubmitted, SetFolderID, RecordOutcome, GetByJobID, ListRecent
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=submission_history_repository_mock.go github.com/batchblast/batchblast/internal/core SubmissionHistoryRepository
