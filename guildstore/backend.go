package guildstore

import (
	"context"
	"errors"
)

var (
	// ErrStorageUnavailable means the backing medium could not be reached or
	// rejected the request.
	ErrStorageUnavailable = errors.New("guildstore: storage unavailable")

	// ErrNotFound means no record exists for the guild. The store absorbs it;
	// a missing record is indistinguishable from a fresh guild.
	ErrNotFound = errors.New("guildstore: record not found")
)

// Backend is the storage medium behind a Store. It holds one raw JSON
// document per guild id. Implementations must be safe for concurrent use and
// should wrap I/O failures in ErrStorageUnavailable.
type Backend interface {
	// Fetch returns the stored document, or ErrNotFound.
	Fetch(ctx context.Context, guildID uint64) ([]byte, error)
	// Store replaces the stored document.
	Store(ctx context.Context, guildID uint64, data []byte) error
	// Delete removes the stored document. Deleting a guild that has no
	// record is not an error.
	Delete(ctx context.Context, guildID uint64) error
	Close() error
}
