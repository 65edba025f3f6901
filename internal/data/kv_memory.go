package data

import (
	"context"
	"sync"
	"time"

	"github.com/batchblast/batchblast/internal/core"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero: no expiry
}

// MemoryKVRepo is an in-process core.KeyValueStore. State is lost on exit.
type MemoryKVRepo struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	clock   TimeProvider
}

var _ core.KeyValueStore = (*MemoryKVRepo)(nil)

// NewMemoryKVRepo creates an empty store using the system clock.
func NewMemoryKVRepo() *MemoryKVRepo {
	return NewMemoryKVRepoWithTimeProvider(&RealTimeProvider{})
}

// NewMemoryKVRepoWithTimeProvider creates an empty store with a custom clock (useful for tests).
func NewMemoryKVRepoWithTimeProvider(tp TimeProvider) *MemoryKVRepo {
	return &MemoryKVRepo{entries: make(map[string]memoryEntry), clock: tp}
}

func (m *MemoryKVRepo) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return errEmptyKey
	}
	e := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = m.clock.Now().Add(ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = e
	return nil
}

func (m *MemoryKVRepo) Get(_ context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errEmptyKey
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.live(key)
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), e.value...), nil
}

func (m *MemoryKVRepo) Delete(_ context.Context, key string) (bool, error) {
	if key == "" {
		return false, errEmptyKey
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.live(key)
	delete(m.entries, key)
	return ok, nil
}

func (m *MemoryKVRepo) Health(context.Context) error { return nil }

// live returns the entry for key, evicting it if expired. Caller holds mu.
func (m *MemoryKVRepo) live(key string) (memoryEntry, bool) {
	e, ok := m.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !e.expiresAt.IsZero() && !m.clock.Now().Before(e.expiresAt) {
		delete(m.entries, key)
		return memoryEntry{}, false
	}
	return e, true
}
