package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// StoreBackend selects where small client state (the folder id) is persisted.
type StoreBackend string

const (
	// StoreBackendFile keeps state in a JSON document under StoreConfig.Dir.
	StoreBackendFile StoreBackend = "file"
	// StoreBackendMemory keeps state in process; it does not survive restarts.
	StoreBackendMemory StoreBackend = "memory"
	// StoreBackendRedis persists state in Redis.
	StoreBackendRedis StoreBackend = "redis"
)

// UnmarshalText implements encoding.TextUnmarshaler for StoreBackend.
func (b *StoreBackend) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "file", "memory", "redis":
		*b = StoreBackend(v)
		return nil
	default:
		return fmt.Errorf("invalid StoreBackend: %q (valid options: file, memory, redis)", v)
	}
}

// StoreConfig contains key-value persistence configuration.
type StoreConfig struct {
	Backend StoreBackend `env:"STORE_BACKEND" envDefault:"file"`
	// Dir holds the file backend's state. Empty means <user config dir>/batchblast.
	Dir string `env:"STORE_DIR"`
	// KeyPrefix namespaces keys when the backend is shared.
	KeyPrefix string `env:"STORE_KEY_PREFIX" envDefault:"batchblast:"`
}

// Sanitize fills an empty backend and resolves the state directory.
func (c *StoreConfig) Sanitize() {
	if c.Backend == "" {
		c.Backend = StoreBackendFile
	}
	c.Dir = strings.TrimSpace(c.Dir)
	if c.Dir == "" {
		c.Dir = DefaultStoreDir()
	}
}

// DefaultStoreDir is the per-user state directory, falling back to the
// working directory when no config home is known.
func DefaultStoreDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ".batchblast"
	}
	return filepath.Join(base, "batchblast")
}

// DBConfig contains PostgreSQL configuration for the submission history.
type DBConfig struct {
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"batchblast"`
	Password string `env:"PASSWORD" envDefault:"batchblast"`
	Name     string `env:"NAME"     envDefault:"batchblast"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// HistoryEnabled turns on submission history recording.
	HistoryEnabled bool `env:"HISTORY_ENABLED" envDefault:"false"`
	// RunMigrationsOnStart controls whether the application automatically applies migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	DB                 int      `env:"DB"                   envDefault:"0"`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
}
