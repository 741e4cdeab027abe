// Package guildstore is a per-guild configuration store. Each guild owns one
// JSON document; the store serializes access per guild, back-fills missing
// schema keys on load, and runs against either a local file tree or a remote
// table behind the same Backend interface.
package guildstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultTimeout = 10 * time.Second

// Store provides load/save/get/set/delete over guild documents.
//
// All operations for one guild run under that guild's lock. Set is a
// load+save pair and holds the lock across both halves, so two concurrent
// Sets on the same guild can never lose an update. Operations on different
// guilds do not block each other.
type Store struct {
	backend Backend
	logger  *zap.Logger
	timeout time.Duration

	mu    sync.Mutex
	locks map[uint64]*sync.Mutex
}

func NewStore(backend Backend, logger *zap.Logger) *Store {
	return &Store{
		backend: backend,
		logger:  logger.Named("guildstore"),
		timeout: defaultTimeout,
		locks:   make(map[uint64]*sync.Mutex),
	}
}

func (s *Store) Close() error {
	return s.backend.Close()
}

// guildLock returns the lock for a guild, creating it on first use. The
// registry only grows; a lock is never evicted once created.
func (s *Store) guildLock(guildID uint64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[guildID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[guildID] = l
	}
	return l
}

// Load returns the guild's document with any missing top-level keys filled
// with defaults. The back-filled value is not persisted; that happens on the
// next Save. Load never fails: a missing record yields a fresh default
// document, and an unreachable backend degrades to the same thing with a
// logged error.
func (s *Store) Load(ctx context.Context, guildID uint64) *Document {
	lock := s.guildLock(guildID)
	lock.Lock()
	defer lock.Unlock()

	raw, err := s.fetch(ctx, guildID)
	if err != nil {
		s.logger.Error("load failed, degrading to defaults",
			zap.Uint64("guildID", guildID),
			zap.Error(err))
		return NewDocument()
	}

	doc, err := documentFromRaw(backfill(raw))
	if err != nil {
		s.logger.Error("stored document is malformed, degrading to defaults",
			zap.Uint64("guildID", guildID),
			zap.Error(err))
		return NewDocument()
	}
	return doc
}

// Save persists the full document, replacing any prior record for the guild.
// On failure the change is lost; the error wraps ErrStorageUnavailable so
// callers can tell the user, but they are not expected to retry.
func (s *Store) Save(ctx context.Context, guildID uint64, doc *Document) error {
	lock := s.guildLock(guildID)
	lock.Lock()
	defer lock.Unlock()
	return s.store(ctx, guildID, "save", doc)
}

// Get loads the document and walks keys into it, returning def if any segment
// is absent or not an object. It never fails; an unreachable backend behaves
// like an empty document.
func (s *Store) Get(ctx context.Context, guildID uint64, def any, keys ...string) any {
	lock := s.guildLock(guildID)
	lock.Lock()
	raw, err := s.fetch(ctx, guildID)
	lock.Unlock()
	if err != nil {
		s.logger.Error("get failed, degrading to defaults",
			zap.Uint64("guildID", guildID),
			zap.Strings("path", keys),
			zap.Error(err))
		raw = nil
	}

	var cur any = backfill(raw)
	for _, key := range keys {
		obj, ok := cur.(map[string]any)
		if !ok {
			return def
		}
		cur, ok = obj[key]
		if !ok {
			return def
		}
	}
	return cur
}

// Set loads the document, creates objects along keys up to the last segment,
// assigns value at the last segment, and saves the whole document back. The
// guild lock is held across the full load+save pair. Objects created on the
// way down replace any non-object value sitting in the path.
func (s *Store) Set(ctx context.Context, guildID uint64, keys []string, value any) error {
	if len(keys) == 0 {
		return errors.New("guildstore: empty key path")
	}

	lock := s.guildLock(guildID)
	lock.Lock()
	defer lock.Unlock()

	raw, err := s.fetch(ctx, guildID)
	if err != nil {
		s.logger.Error("set failed, change lost",
			zap.Uint64("guildID", guildID),
			zap.Strings("path", keys),
			zap.Error(err))
		return unavailable(err)
	}

	doc := backfill(raw)
	obj := doc
	for _, key := range keys[:len(keys)-1] {
		next, ok := obj[key].(map[string]any)
		if !ok {
			next = map[string]any{}
			obj[key] = next
		}
		obj = next
	}
	obj[keys[len(keys)-1]] = value

	return s.store(ctx, guildID, "set", doc)
}

// DeleteGuild removes the guild's record entirely. Deleting a guild that has
// no record is not an error.
func (s *Store) DeleteGuild(ctx context.Context, guildID uint64) error {
	lock := s.guildLock(guildID)
	lock.Lock()
	defer lock.Unlock()

	tctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.backend.Delete(tctx, guildID); err != nil {
		s.logger.Error("delete failed",
			zap.Uint64("guildID", guildID),
			zap.Error(err))
		return unavailable(err)
	}
	return nil
}

// fetch reads and decodes the raw document. A missing record comes back as an
// empty object, which backfill turns into the default shape. Callers must
// hold the guild lock.
func (s *Store) fetch(ctx context.Context, guildID uint64) (map[string]any, error) {
	tctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, err := s.backend.Fetch(tctx, guildID)
	if errors.Is(err, ErrNotFound) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, err
	}

	raw, err := unmarshalRaw(data)
	if err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return raw, nil
}

// store encodes and writes a full document. Callers must hold the guild lock.
func (s *Store) store(ctx context.Context, guildID uint64, op string, v any) error {
	data, err := marshalDocument(v)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	tctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.backend.Store(tctx, guildID, data); err != nil {
		s.logger.Error("write failed, change lost",
			zap.String("op", op),
			zap.Uint64("guildID", guildID),
			zap.Error(err))
		return unavailable(err)
	}
	return nil
}

func unavailable(err error) error {
	if errors.Is(err, ErrStorageUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}
