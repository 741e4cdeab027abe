package guildstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// TableStore keeps guild documents in a single Postgres table, one row per
// guild. Upserts are last-write-wins: the per-guild locks in Store only cover
// one process, so multiple replicas sharing a table can still race each other
// and the later write wins.
type TableStore struct {
	pool *sqlx.DB
}

const guildsSchema = `
CREATE TABLE IF NOT EXISTS guilds (
	id         BIGINT PRIMARY KEY,
	document   JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

func NewTableStore(connStr string) (*TableStore, error) {
	pool, err := sqlx.Connect("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if _, err := pool.Exec(guildsSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return &TableStore{pool: pool}, nil
}

func (t *TableStore) Fetch(ctx context.Context, guildID uint64) ([]byte, error) {
	var doc []byte
	err := t.pool.GetContext(ctx, &doc, "SELECT document FROM guilds WHERE id=$1;", int64(guildID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return doc, nil
}

func (t *TableStore) Store(ctx context.Context, guildID uint64, data []byte) error {
	_, err := t.pool.ExecContext(ctx,
		`INSERT INTO guilds (id, document, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (id) DO UPDATE SET document = EXCLUDED.document, updated_at = now();`,
		int64(guildID), data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func (t *TableStore) Delete(ctx context.Context, guildID uint64) error {
	if _, err := t.pool.ExecContext(ctx, "DELETE FROM guilds WHERE id=$1;", int64(guildID)); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func (t *TableStore) Close() error {
	return t.pool.Close()
}
