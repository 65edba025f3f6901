// Package backendhttp talks to the analysis backend's plain HTTP endpoints.
package backendhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/batchblast/batchblast/internal/core"
	"github.com/batchblast/batchblast/internal/domain/model"
)

const maxBodyBytes = 1 << 20

// SettingsClientOptions configures a SettingsClient.
type SettingsClientOptions struct {
	BaseURL     string             // Required
	HTTPClient  *http.Client       // Optional, defaults to a 30s-timeout client
	TokenSource oauth2.TokenSource // Optional: authenticates requests
}

// SettingsClient reads and writes settings through /getconfig and /saveconfig.
type SettingsClient struct {
	base   string
	client *http.Client
}

var _ core.SettingsClient = (*SettingsClient)(nil)

// NewSettingsClient constructs a new SettingsClient.
func NewSettingsClient(opts SettingsClientOptions) (*SettingsClient, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, errors.New("backend base URL is required")
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.TokenSource != nil {
		client = &http.Client{
			Timeout:   client.Timeout,
			Transport: &oauth2.Transport{Source: opts.TokenSource, Base: client.Transport},
		}
	}
	return &SettingsClient{base: base, client: client}, nil
}

// Fetch returns the positional settings tuple. The backend may answer with the
// array itself or with a JSON string that contains the encoded array.
func (c *SettingsClient) Fetch(ctx context.Context) ([]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/getconfig", nil)
	if err != nil {
		return nil, fmt.Errorf("build getconfig request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return decodeTuple(body)
}

// Save posts settings as a named JSON object.
func (c *SettingsClient) Save(ctx context.Context, settings model.Settings) error {
	payload, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/saveconfig", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build saveconfig request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	_, err = c.do(req)
	return err
}

func (c *SettingsClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", req.URL.Path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Path: req.URL.Path, Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}

// StatusError reports a non-2xx backend response.
type StatusError struct {
	Path string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Path, e.Code)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Path, e.Code, e.Body)
}

func decodeTuple(body []byte) ([]any, error) {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("decode getconfig response: %w", err)
	}
	if s, ok := v.(string); ok {
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			return nil, fmt.Errorf("decode nested getconfig response: %w", err)
		}
	}
	tuple, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("getconfig response is %T, want an array", v)
	}
	return tuple, nil
}
