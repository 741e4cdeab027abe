package guildstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	backend, err := NewFileStore(dir)
	require.NoError(t, err)
	return NewStore(backend, zap.NewNop()), dir
}

func TestLoadFreshGuild(t *testing.T) {
	s, _ := newTestStore(t)
	doc := s.Load(context.Background(), 42)
	assert.Equal(t, NewDocument(), doc)
}

func TestSaveThenLoadIsIdentity(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	doc := NewDocument()
	doc.Warnings["99"] = []string{"spam", "more spam"}
	role := int64(555)
	doc.AutoRole.Member = &role
	doc.ImageMuted["12"] = true
	doc.ReactionRoles["777"] = map[string]int64{"thumbsup:888": 999}

	require.NoError(t, s.Save(ctx, 42, doc))
	assert.Equal(t, doc, s.Load(ctx, 42))
}

func TestSaveThenLoadKeepsSnowflakeIDs(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	// ids this size do not fit in a float64 mantissa
	doc := NewDocument()
	role := int64(163454407999094786)
	doc.MutedRole = &role
	doc.ReactionRoles["163454407999094787"] = map[string]int64{"thumbsup:888": 163454407999094788}

	require.NoError(t, s.Save(ctx, 42, doc))
	got := s.Load(ctx, 42)
	require.NotNil(t, got.MutedRole)
	assert.Equal(t, int64(163454407999094786), *got.MutedRole)
	assert.Equal(t, int64(163454407999094788), got.ReactionRoles["163454407999094787"]["thumbsup:888"])
}

func TestSetRewriteKeepsSnowflakeIDs(t *testing.T) {
	s, dir := newTestStore(t)
	ctx := context.Background()

	// an unrelated Set rewrites the whole document; the id set earlier must
	// survive the decode/encode round trip digit for digit
	require.NoError(t, s.Set(ctx, 42, []string{"reaction_roles", "777", "thumbsup:888"}, int64(163454407999094786)))
	require.NoError(t, s.Set(ctx, 42, []string{"welcome", "embed"}, true))

	data, err := os.ReadFile(filepath.Join(dir, "42.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "163454407999094786")
	assert.Equal(t, json.Number("163454407999094786"),
		s.Get(ctx, 42, nil, "reaction_roles", "777", "thumbsup:888"))
}

func TestLoadNormalizesNullContainers(t *testing.T) {
	s, dir := newTestStore(t)
	ctx := context.Background()

	// null is not a missing key, so backfill leaves it alone; the decoded
	// document must still be writable
	stored := `{"warnings": null, "welcome": null, "image_muted": null, "reaction_roles": null}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "42.json"), []byte(stored), 0644))

	doc := s.Load(ctx, 42)
	require.NotNil(t, doc.Warnings)
	require.NotNil(t, doc.Welcome)
	require.NotNil(t, doc.AutoRole)
	require.NotNil(t, doc.ImageMuted)
	require.NotNil(t, doc.Logs)
	require.NotNil(t, doc.ReactionRoles)
	doc.Warnings["99"] = append(doc.Warnings["99"], "spam")
	require.NoError(t, s.Save(ctx, 42, doc))
	assert.Equal(t, []string{"spam"}, s.Load(ctx, 42).Warnings["99"])
}

func TestLoadBackfillsWithoutPersisting(t *testing.T) {
	s, dir := newTestStore(t)
	ctx := context.Background()

	// a record written before reaction_roles existed, with user data under
	// another key
	stored := `{"warnings": {"99": ["spam"]}}`
	path := filepath.Join(dir, "42.json")
	require.NoError(t, os.WriteFile(path, []byte(stored), 0644))

	doc := s.Load(ctx, 42)
	assert.Equal(t, []string{"spam"}, doc.Warnings["99"])
	assert.NotNil(t, doc.ReactionRoles)
	assert.Equal(t, DefaultWelcomeMessage, doc.Welcome.Message)

	// backfill is read-side only; the file must not have changed
	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, stored, string(after))
}

func TestSetThenGet(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, 42, []string{"auto_role", "member"}, 555))
	assert.Equal(t, json.Number("555"), s.Get(ctx, 42, nil, "auto_role", "member"))
}

func TestGetMissingKeyReturnsDefault(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, 42, []string{"warnings", "99"}, []string{"spam"}))
	got := s.Get(ctx, 42, []string{}, "warnings", "100")
	assert.Equal(t, []string{}, got)
}

func TestGetNonObjectSegmentReturnsDefault(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, 42, []string{"muted_role"}, 5))
	assert.Equal(t, "fallback", s.Get(ctx, 42, "fallback", "muted_role", "nested"))
}

func TestGetWholeDocumentKey(t *testing.T) {
	s, _ := newTestStore(t)
	got := s.Get(context.Background(), 42, nil, "welcome", "message")
	assert.Equal(t, DefaultWelcomeMessage, got)
}

func TestSetCreatesIntermediateObjects(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, 42, []string{"reaction_roles", "777", "thumbsup:888"}, 999))
	assert.Equal(t, json.Number("999"), s.Get(ctx, 42, nil, "reaction_roles", "777", "thumbsup:888"))
}

func TestSetEmptyKeyPath(t *testing.T) {
	s, _ := newTestStore(t)
	assert.Error(t, s.Set(context.Background(), 42, nil, 1))
}

func TestSetPersistsFullDocument(t *testing.T) {
	s, dir := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, 42, []string{"muted_role"}, 5))

	data, err := os.ReadFile(filepath.Join(dir, "42.json"))
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Len(t, raw, 7)
	assert.EqualValues(t, 5, raw["muted_role"])
}

func TestDeleteGuild(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	// deleting a guild with no record is fine
	require.NoError(t, s.DeleteGuild(ctx, 42))

	require.NoError(t, s.Set(ctx, 42, []string{"muted_role"}, 5))
	require.NoError(t, s.DeleteGuild(ctx, 42))
	assert.Equal(t, NewDocument(), s.Load(ctx, 42))
}

func TestConcurrentSetsSameGuildLoseNothing(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	// each Set is a load+save pair; without the per-guild lock held across
	// both halves these would clobber each other
	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("user-%v", i)
			assert.NoError(t, s.Set(ctx, 42, []string{"warnings", key}, []string{"reason"}))
		}(i)
	}
	wg.Wait()

	doc := s.Load(ctx, 42)
	assert.Len(t, doc.Warnings, n)
}

func TestConcurrentSetsSameKey(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, v := range []int{1, 2} {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			assert.NoError(t, s.Set(ctx, 42, []string{"a"}, v))
		}(v)
	}
	wg.Wait()

	got := s.Get(ctx, 42, nil, "a")
	assert.Contains(t, []any{json.Number("1"), json.Number("2")}, got)
}

func TestDistinctGuildsDoNotBlock(t *testing.T) {
	slow := &stubBackend{docs: map[uint64][]byte{}}
	release := make(chan struct{})
	slow.onFetch = func(guildID uint64) {
		if guildID == 1 {
			<-release
		}
	}
	s := NewStore(slow, zap.NewNop())
	defer close(release)

	started := make(chan struct{})
	go func() {
		close(started)
		s.Load(context.Background(), 1)
	}()
	<-started

	done := make(chan struct{})
	go func() {
		s.Load(context.Background(), 2)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("operation on guild 2 blocked behind guild 1")
	}
}

func TestLoadDegradesToDefaultsOnBackendFailure(t *testing.T) {
	s := NewStore(&stubBackend{err: ErrStorageUnavailable}, zap.NewNop())
	assert.Equal(t, NewDocument(), s.Load(context.Background(), 42))
}

func TestLoadDegradesToDefaultsOnMalformedRecord(t *testing.T) {
	s, dir := newTestStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "42.json"), []byte("not json"), 0644))
	assert.Equal(t, NewDocument(), s.Load(context.Background(), 42))
}

func TestWriteFailuresSurfaceStorageUnavailable(t *testing.T) {
	s := NewStore(&stubBackend{err: fmt.Errorf("%w: connection refused", ErrStorageUnavailable)}, zap.NewNop())
	ctx := context.Background()

	assert.ErrorIs(t, s.Save(ctx, 42, NewDocument()), ErrStorageUnavailable)
	assert.ErrorIs(t, s.Set(ctx, 42, []string{"muted_role"}, 5), ErrStorageUnavailable)
	assert.ErrorIs(t, s.DeleteGuild(ctx, 42), ErrStorageUnavailable)
}

func TestGetDegradesToDefaultOnBackendFailure(t *testing.T) {
	s := NewStore(&stubBackend{err: ErrStorageUnavailable}, zap.NewNop())
	// the degraded document is still the backfilled default shape
	got := s.Get(context.Background(), 42, nil, "welcome", "message")
	assert.Equal(t, DefaultWelcomeMessage, got)
}

// stubBackend is an in-memory Backend for exercising the store without disk
// or network.
type stubBackend struct {
	mu      sync.Mutex
	docs    map[uint64][]byte
	err     error
	onFetch func(guildID uint64)
}

func (b *stubBackend) Fetch(ctx context.Context, guildID uint64) ([]byte, error) {
	if b.onFetch != nil {
		b.onFetch(guildID)
	}
	if b.err != nil {
		return nil, b.err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.docs[guildID]
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}

func (b *stubBackend) Store(ctx context.Context, guildID uint64, data []byte) error {
	if b.err != nil {
		return b.err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.docs[guildID] = data
	return nil
}

func (b *stubBackend) Delete(ctx context.Context, guildID uint64) error {
	if b.err != nil {
		return b.err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.docs, guildID)
	return nil
}

func (b *stubBackend) Close() error {
	return nil
}
