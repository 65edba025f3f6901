package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/batchblast/batchblast/internal/core"
)

// FileKVStateName is the document FileKVRepo keeps inside its directory.
const FileKVStateName = "state.json"

type fileEntry struct {
	Value     []byte     `json:"value"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// FileKVRepo is a core.KeyValueStore kept as one JSON document on disk, so
// values survive restarts without an external server. Every write replaces
// the document atomically.
type FileKVRepo struct {
	mu    sync.Mutex
	dir   string
	path  string
	clock TimeProvider
}

var _ core.KeyValueStore = (*FileKVRepo)(nil)

// NewFileKVRepo opens (creating if needed) a store under dir.
func NewFileKVRepo(dir string) (*FileKVRepo, error) {
	return NewFileKVRepoWithTimeProvider(dir, &RealTimeProvider{})
}

// NewFileKVRepoWithTimeProvider is NewFileKVRepo with a custom clock (useful for tests).
func NewFileKVRepoWithTimeProvider(dir string, tp TimeProvider) (*FileKVRepo, error) {
	if dir == "" {
		return nil, errors.New("file store: directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("file store: create %s: %w", dir, err)
	}
	return &FileKVRepo{dir: dir, path: filepath.Join(dir, FileKVStateName), clock: tp}, nil
}

// Path returns the location of the state document.
func (f *FileKVRepo) Path() string { return f.path }

func (f *FileKVRepo) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return errEmptyKey
	}
	e := fileEntry{Value: append([]byte(nil), value...)}
	if ttl > 0 {
		at := f.clock.Now().Add(ttl).UTC()
		e.ExpiresAt = &at
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	entries, err := f.load()
	if err != nil {
		return err
	}
	f.prune(entries)
	entries[key] = e
	return f.store(entries)
}

func (f *FileKVRepo) Get(_ context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errEmptyKey
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	entries, err := f.load()
	if err != nil {
		return nil, err
	}
	e, ok := entries[key]
	if !ok || f.expired(e) {
		return nil, nil
	}
	return e.Value, nil
}

func (f *FileKVRepo) Delete(_ context.Context, key string) (bool, error) {
	if key == "" {
		return false, errEmptyKey
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	entries, err := f.load()
	if err != nil {
		return false, err
	}
	e, ok := entries[key]
	if !ok {
		return false, nil
	}
	delete(entries, key)
	if err := f.store(entries); err != nil {
		return false, err
	}
	return !f.expired(e), nil
}

// Health checks that the state document is readable.
func (f *FileKVRepo) Health(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, err := f.load()
	return err
}

func (f *FileKVRepo) expired(e fileEntry) bool {
	return e.ExpiresAt != nil && !f.clock.Now().Before(*e.ExpiresAt)
}

func (f *FileKVRepo) prune(entries map[string]fileEntry) {
	for k, e := range entries {
		if f.expired(e) {
			delete(entries, k)
		}
	}
}

// load reads the document. A missing file is an empty store. Caller holds mu.
func (f *FileKVRepo) load() (map[string]fileEntry, error) {
	entries := make(map[string]fileEntry)
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return entries, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file store: read %s: %w", f.path, err)
	}
	if len(raw) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("file store: decode %s: %w", f.path, err)
	}
	return entries, nil
}

// store writes to a temp file in the same directory and renames it over the
// document. Caller holds mu.
func (f *FileKVRepo) store(entries map[string]fileEntry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("file store: encode: %w", err)
	}
	tmp, err := os.CreateTemp(f.dir, "."+FileKVStateName+"-*")
	if err != nil {
		return fmt.Errorf("file store: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		return errors.Join(fmt.Errorf("file store: write: %w", err), tmp.Close(), os.Remove(tmpName))
	}
	if err := tmp.Sync(); err != nil {
		return errors.Join(fmt.Errorf("file store: sync: %w", err), tmp.Close(), os.Remove(tmpName))
	}
	if err := tmp.Close(); err != nil {
		return errors.Join(fmt.Errorf("file store: close: %w", err), os.Remove(tmpName))
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return errors.Join(fmt.Errorf("file store: replace %s: %w", f.path, err), os.Remove(tmpName))
	}
	return nil
}
