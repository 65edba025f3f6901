// Package oidc obtains backend access tokens from an OpenID Connect issuer.
package oidc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// TokenSourceConfig holds configuration for the client-credentials token source.
type TokenSourceConfig struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	Scopes       []string
	HTTPClient   *http.Client // Optional, defaults to a 30s-timeout client
}

// NewTokenSource discovers the issuer's token endpoint and returns a caching
// client-credentials token source. Discovery happens once, here.
func NewTokenSource(ctx context.Context, cfg TokenSourceConfig) (oauth2.TokenSource, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if cfg.ClientSecret == "" {
		return nil, errors.New("client secret is required")
	}
	if cfg.IssuerURL == "" {
		return nil, errors.New("issuer URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	// Token refreshes outlive the caller's context; keep only the client value.
	ctx = context.WithValue(context.WithoutCancel(ctx), oauth2.HTTPClient, httpClient)

	op, err := gooidc.NewProvider(ctx, issuerFromDiscoveryURL(cfg.IssuerURL))
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}
	endpoint := op.Endpoint()
	if endpoint.TokenURL == "" {
		return nil, errors.New("issuer does not advertise a token endpoint")
	}

	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     endpoint.TokenURL,
		Scopes:       cfg.Scopes,
		AuthStyle:    endpoint.AuthStyle,
	}
	return oauth2.ReuseTokenSource(nil, cc.TokenSource(ctx)), nil
}

// issuerFromDiscoveryURL accepts either the issuer or its discovery document URL.
func issuerFromDiscoveryURL(raw string) string {
	issuer := strings.TrimSuffix(strings.TrimSpace(raw), "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	return strings.TrimSuffix(issuer, "/")
}
