package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/batchblast/batchblast/config"
	"github.com/batchblast/batchblast/internal/adapters/backendhttp"
	"github.com/batchblast/batchblast/internal/adapters/wsconn"
	"github.com/batchblast/batchblast/internal/core"
	"github.com/batchblast/batchblast/internal/data"
	"github.com/batchblast/batchblast/internal/observability/statsd"
	"github.com/batchblast/batchblast/internal/service"
)

// AppOptions configures NewApp.
type AppOptions struct {
	Config     config.AppConfig
	Logger     *slog.Logger
	Presenter  core.Presenter // Optional: receives every session view
	HTTPClient *http.Client   // Optional: used for settings and token requests
}

// App is one fully wired client: workspace, job stream and local persistence.
type App struct {
	cfg       config.AppConfig
	logger    *slog.Logger
	workspace *service.Workspace
	transport *wsconn.Client
	folderIDs *data.KVFolderIDStore
	history   *data.SubmissionHistoryRepo
	metrics   *statsd.Client
	closers   []func() error
}

// NewApp connects the configured stores and builds the workspace.
// The job stream is not dialed until Run.
func NewApp(ctx context.Context, opts AppOptions) (*App, error) {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Backend.HTTPTimeout}
	}

	app := &App{cfg: cfg, logger: logger}
	if err := app.init(ctx, opts.Presenter, httpClient); err != nil {
		if closeErr := app.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
		return nil, err
	}
	return app, nil
}

func (a *App) init(ctx context.Context, presenter core.Presenter, httpClient *http.Client) error {
	metrics, err := statsd.NewClient(statsd.Config{
		Enabled: a.cfg.Observability.Metrics.IsEnabled(),
		Address: a.cfg.Observability.Metrics.StatsdAddress,
		Prefix:  a.cfg.Observability.Metrics.Prefix,
		Logger:  a.logger,
	})
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	a.metrics = metrics
	a.closers = append(a.closers, metrics.Close)

	kv, err := a.initKeyValueStore(ctx)
	if err != nil {
		return err
	}
	folderIDs, err := data.NewKVFolderIDStore(kv, a.cfg.Session.FolderIDKey)
	if err != nil {
		return fmt.Errorf("init folder id store: %w", err)
	}
	a.folderIDs = folderIDs

	var history core.SubmissionHistoryRepository
	if a.cfg.Postgres.HistoryEnabled {
		repo, closeDB, err := OpenHistory(ctx, a.cfg.Postgres, a.logger)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, closeDB)
		a.history = repo
		history = repo
	}

	tokens, err := NewTokenSource(ctx, a.cfg.Auth, httpClient, a.logger)
	if err != nil {
		return err
	}

	wsURL, err := a.cfg.Backend.WebSocketURL()
	if err != nil {
		return err
	}
	transport, err := wsconn.New(wsconn.Options{
		URL:          wsURL,
		Origin:       a.cfg.Backend.Origin(),
		TokenSource:  tokens,
		ReconnectMin: a.cfg.Session.ReconnectMin,
		ReconnectMax: a.cfg.Session.ReconnectMax,
		OutboxSize:   a.cfg.Session.OutboxSize,
		Metrics:      metrics,
		Logger:       a.logger,
	})
	if err != nil {
		return fmt.Errorf("init job stream: %w", err)
	}
	a.transport = transport

	settingsClient, err := backendhttp.NewSettingsClient(backendhttp.SettingsClientOptions{
		BaseURL:     a.cfg.Backend.URL,
		HTTPClient:  httpClient,
		TokenSource: tokens,
	})
	if err != nil {
		return fmt.Errorf("init settings client: %w", err)
	}
	mapping := SettingsMapping(a.cfg.Settings)
	if err := mapping.Validate(); err != nil {
		return fmt.Errorf("settings mapping: %w", err)
	}

	a.workspace = service.NewWorkspace(service.WorkspaceOptions{
		Session: service.JobSessionOptions{
			Transport: transport,
			Locator:   service.NewDownloadLocator(a.cfg.Backend.URL),
			Presenter: presenter,
			FolderIDs: folderIDs,
			History:   history,
			Metrics:   metrics,
			Logger:    a.logger,
		},
		Settings: service.NewSettingsService(service.SettingsServiceOptions{
			Client:  settingsClient,
			Mapping: mapping,
			Logger:  a.logger,
		}),
		Logger: a.logger,
	})

	if err := a.workspace.Session().Restore(ctx); err != nil {
		// A lost folder id only hides downloads from an earlier run.
		a.logger.WarnContext(ctx, "folder id not restored", "error", err)
	}
	return nil
}

func (a *App) initKeyValueStore(ctx context.Context) (core.KeyValueStore, error) {
	switch a.cfg.Store.Backend {
	case config.StoreBackendMemory:
		return data.NewMemoryKVRepo(), nil
	case config.StoreBackendRedis:
		client, err := ConnectRedis(ctx, a.cfg.Redis, a.logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		return data.NewRedisKVRepo(client, a.cfg.Store.KeyPrefix), nil
	default:
		repo, err := data.NewFileKVRepo(a.cfg.Store.Dir)
		if err != nil {
			return nil, fmt.Errorf("init file store: %w", err)
		}
		a.logger.DebugContext(ctx, "using file store", "path", repo.Path())
		return repo, nil
	}
}

// OpenHistory connects the history database, applies migrations when configured
// and returns the repository with a function that closes the connection.
func OpenHistory(
	ctx context.Context,
	cfg config.DBConfig,
	logger *slog.Logger,
) (*data.SubmissionHistoryRepo, func() error, error) {
	db, err := ConnectDB(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if cfg.RunMigrationsOnStart {
		if err := RunMigrations(ctx, db, logger); err != nil {
			return nil, nil, errors.Join(err, db.Close())
		}
	}
	return data.NewSubmissionHistoryRepo(db), db.Close, nil
}

// SettingsMapping converts the configured expressions.
func SettingsMapping(cfg config.SettingsConfig) service.SettingsMapping {
	return service.SettingsMapping{
		Filter:      cfg.FilterExpr,
		OutputQty:   cfg.OutputQtyExpr,
		Program:     cfg.ProgramExpr,
		Database:    cfg.DatabaseExpr,
		NonAnomaly:  cfg.NonAnomalyExpr,
		SpeciesName: cfg.SpeciesNameExpr,
	}
}

// Workspace returns the client workspace.
func (a *App) Workspace() *service.Workspace { return a.workspace }

// Transport returns the job stream client.
func (a *App) Transport() *wsconn.Client { return a.transport }

// FolderIDs returns the persisted folder id store.
func (a *App) FolderIDs() *data.KVFolderIDStore { return a.folderIDs }

// History returns the submission history repository, or nil when history is disabled.
func (a *App) History() *data.SubmissionHistoryRepo { return a.history }

// Run keeps the job stream connected while fn runs and stops it once fn returns.
func (a *App) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		return a.transport.Run(gctx, a.workspace.Session())
	})
	g.Go(func() error {
		defer cancel()
		return fn(gctx)
	})
	return g.Wait()
}

// Close releases every connection in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
