package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/batchblast/batchblast/config"
	"github.com/batchblast/batchblast/internal/adapters/oidc"
)

// NewTokenSource returns the backend credential source, or nil when auth is disabled.
//
//nolint:ireturn // oauth2.TokenSource is the standard abstraction consumed by both transports.
func NewTokenSource(
	ctx context.Context,
	cfg config.AuthConfig,
	httpClient *http.Client,
	logger *slog.Logger,
) (oauth2.TokenSource, error) {
	if !cfg.Enabled {
		return nil, nil //nolint:nilnil // nil source means unauthenticated
	}
	ts, err := oidc.NewTokenSource(ctx, oidc.TokenSourceConfig{
		IssuerURL:    cfg.IssuerURL,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scopes:       cfg.Scopes,
		HTTPClient:   httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("init backend credentials: %w", err)
	}
	if logger != nil {
		logger.InfoContext(ctx, "backend authentication enabled", "issuer", cfg.IssuerURL, "client_id", cfg.ClientID)
	}
	return ts, nil
}
