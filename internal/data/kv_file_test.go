package data

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileKVRepo_SetGetDelete(t *testing.T) {
	repo, err := NewFileKVRepo(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	got, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, repo.Set(ctx, "k", []byte("v"), 0))
	got, err = repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	deleted, err := repo.Delete(ctx, "k")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, "k")
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = repo.Get(ctx, "")
	assert.ErrorIs(t, err, errEmptyKey)
	assert.NoError(t, repo.Health(ctx))
}

func TestFileKVRepo_SurvivesReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "batchblast")
	ctx := context.Background()

	first, err := NewFileKVRepo(dir)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "blid", []byte("F1"), 0))
	require.NoError(t, first.Set(ctx, "other", []byte("x"), 0))

	second, err := NewFileKVRepo(dir)
	require.NoError(t, err)
	got, err := second.Get(ctx, "blid")
	require.NoError(t, err)
	assert.Equal(t, []byte("F1"), got)

	info, err := os.Stat(second.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	leftovers, err := filepath.Glob(filepath.Join(dir, ".*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers, "temp files must be renamed away")
}

func TestFileKVRepo_TTL(t *testing.T) {
	clock := NewFixedTimeProvider(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	repo, err := NewFileKVRepoWithTimeProvider(t.TempDir(), clock)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "k", []byte("v"), time.Minute))

	clock.AddTime(59 * time.Second)
	got, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	clock.AddTime(time.Second)
	got, err = repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got)

	deleted, err := repo.Delete(ctx, "k")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestFileKVRepo_CorruptDocument(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileKVStateName), []byte("{not json"), 0o600))

	repo, err := NewFileKVRepo(dir)
	require.NoError(t, err)

	_, err = repo.Get(context.Background(), "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
	assert.Error(t, repo.Health(context.Background()))
}

func TestNewFileKVRepo_RequiresDir(t *testing.T) {
	_, err := NewFileKVRepo("")
	assert.Error(t, err)
}
