package data

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/batchblast/batchblast/internal/core"
)

// KVFolderIDStore persists the folder id as a single key in a core.KeyValueStore.
type KVFolderIDStore struct {
	kv  core.KeyValueStore
	key string
}

var _ core.FolderIDStore = (*KVFolderIDStore)(nil)

// NewKVFolderIDStore creates a folder id store writing to key.
func NewKVFolderIDStore(kv core.KeyValueStore, key string) (*KVFolderIDStore, error) {
	if kv == nil {
		return nil, errors.New("key value store is required")
	}
	if strings.TrimSpace(key) == "" {
		return nil, errEmptyKey
	}
	return &KVFolderIDStore{kv: kv, key: key}, nil
}

// Load returns "" when nothing has been stored.
func (s *KVFolderIDStore) Load(ctx context.Context) (string, error) {
	b, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return "", fmt.Errorf("load folder id: %w", err)
	}
	return string(b), nil
}

// Save overwrites the stored id. An empty id clears it.
func (s *KVFolderIDStore) Save(ctx context.Context, folderID string) error {
	folderID = strings.TrimSpace(folderID)
	if folderID == "" {
		return s.Clear(ctx)
	}
	if err := s.kv.Set(ctx, s.key, []byte(folderID), 0); err != nil {
		return fmt.Errorf("save folder id: %w", err)
	}
	return nil
}

func (s *KVFolderIDStore) Clear(ctx context.Context) error {
	if _, err := s.kv.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("clear folder id: %w", err)
	}
	return nil
}
