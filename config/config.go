package config

import (
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - backend.go: Backend endpoints and job session behaviour
//   - database.go: Store, Redis and history database configuration
//   - auth.go: Backend authentication
//   - settings.go: Analysis settings field mapping
//   - observability.go: Metrics emission
type AppConfig struct {
	// IsDev enables text logging and verbose output.
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Backend BackendConfig `envPrefix:"BACKEND_"`
	Session SessionConfig `envPrefix:"SESSION_"`

	// Local persistence
	Store    StoreConfig
	Redis    RedisConfig `envPrefix:"REDIS_"`
	Postgres DBConfig    `envPrefix:"DB_"`

	Auth AuthConfig

	Settings SettingsConfig `envPrefix:"SETTINGS_"`

	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.Backend.Sanitize()
	c.Session.Sanitize()
	c.Store.Sanitize()
	c.Auth.Sanitize()
	c.Settings.Sanitize()
	c.Observability.Sanitize()

	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.detectDevMode()
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}

// UsesRedis reports whether any component needs a Redis connection.
func (c *AppConfig) UsesRedis() bool {
	return c.Store.Backend == StoreBackendRedis
}
