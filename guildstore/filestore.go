package guildstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// FileStore keeps one JSON file per guild, named by the guild id.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) path(guildID uint64) string {
	return filepath.Join(f.dir, strconv.FormatUint(guildID, 10)+".json")
}

func (f *FileStore) Fetch(ctx context.Context, guildID uint64) ([]byte, error) {
	data, err := os.ReadFile(f.path(guildID))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return data, nil
}

// Store writes to a temp file and renames it over the old one, so a crash
// mid-write never leaves a half-written document behind.
func (f *FileStore) Store(ctx context.Context, guildID uint64, data []byte) error {
	path := f.path(guildID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func (f *FileStore) Delete(ctx context.Context, guildID uint64) error {
	if err := os.Remove(f.path(guildID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func (f *FileStore) Close() error {
	return nil
}
