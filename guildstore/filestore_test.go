package guildstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	f, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = f.Fetch(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, f.Store(ctx, 42, []byte(`{"muted_role": 5}`)))
	data, err := f.Fetch(ctx, 42)
	require.NoError(t, err)
	assert.JSONEq(t, `{"muted_role": 5}`, string(data))

	// overwrite replaces the whole record
	require.NoError(t, f.Store(ctx, 42, []byte(`{}`)))
	data, err = f.Fetch(ctx, 42)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

func TestFileStoreDelete(t *testing.T) {
	f, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	// idempotent on a missing record
	require.NoError(t, f.Delete(ctx, 42))

	require.NoError(t, f.Store(ctx, 42, []byte(`{}`)))
	require.NoError(t, f.Delete(ctx, 42))
	_, err = f.Fetch(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreFileNaming(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, f.Store(context.Background(), 163454407999094786, []byte(`{}`)))
	_, err = os.Stat(filepath.Join(dir, "163454407999094786.json"))
	assert.NoError(t, err)
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, f.Store(context.Background(), 42, []byte(`{}`)))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "42.json", entries[0].Name())
}

func TestNewFileStoreCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "guilds")
	_, err := NewFileStore(dir)
	require.NoError(t, err)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
