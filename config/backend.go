package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBackendURL     = "http://localhost:8000"
	defaultHTTPTimeout    = 30 * time.Second
	defaultReconnectMax   = 10 * time.Second
	defaultOutboxSize     = 8
	defaultFolderIDKey    = "blid"
	maxReconnectBackoffUp = 5 * time.Minute
)

// BackendConfig locates the analysis backend.
type BackendConfig struct {
	// URL is the HTTP base; the job stream uses the same host with a ws/wss scheme.
	URL         string        `env:"URL"          envDefault:"http://localhost:8000"`
	WSPath      string        `env:"WS_PATH"      envDefault:"/"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
}

// Sanitize trims the base URL and fills empty values.
func (c *BackendConfig) Sanitize() {
	c.URL = strings.TrimRight(strings.TrimSpace(c.URL), "/")
	if c.URL == "" {
		c.URL = defaultBackendURL
	}
	c.WSPath = strings.TrimSpace(c.WSPath)
	if !strings.HasPrefix(c.WSPath, "/") {
		c.WSPath = "/" + c.WSPath
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = defaultHTTPTimeout
	}
}

// WebSocketURL derives the job stream endpoint from URL.
func (c BackendConfig) WebSocketURL() (string, error) {
	u, err := url.Parse(c.URL)
	if err != nil {
		return "", fmt.Errorf("parse backend url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported backend url scheme %q", u.Scheme)
	}
	u.Path = c.WSPath
	u.RawQuery = ""
	return u.String(), nil
}

// Origin returns the HTTP origin sent during the websocket handshake.
func (c BackendConfig) Origin() string {
	u, err := url.Parse(c.URL)
	if err != nil {
		return c.URL
	}
	return u.Scheme + "://" + u.Host
}

// SessionConfig controls job session persistence and the reconnect discipline.
type SessionConfig struct {
	// FolderIDKey is the persistence key for the backend-assigned folder id.
	FolderIDKey string `env:"FOLDER_KEY" envDefault:"blid"`
	// ReconnectMin is the delay before the second and later redial attempts; the first is immediate.
	ReconnectMin time.Duration `env:"RECONNECT_MIN" envDefault:"0s"`
	ReconnectMax time.Duration `env:"RECONNECT_MAX" envDefault:"10s"`
	// OutboxSize bounds sends queued while the connection is being re-established.
	OutboxSize int `env:"OUTBOX_SIZE" envDefault:"8"`
}

// Sanitize normalises reconnect bounds and queue size.
func (c *SessionConfig) Sanitize() {
	c.FolderIDKey = strings.TrimSpace(c.FolderIDKey)
	if c.FolderIDKey == "" {
		c.FolderIDKey = defaultFolderIDKey
	}
	if c.ReconnectMin < 0 {
		c.ReconnectMin = 0
	}
	if c.ReconnectMax <= 0 {
		c.ReconnectMax = defaultReconnectMax
	}
	if c.ReconnectMax > maxReconnectBackoffUp {
		c.ReconnectMax = maxReconnectBackoffUp
	}
	if c.ReconnectMin > c.ReconnectMax {
		c.ReconnectMin = c.ReconnectMax
	}
	if c.OutboxSize <= 0 {
		c.OutboxSize = defaultOutboxSize
	}
}
