package codestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgx used by PostgresBackend. Satisfied by
// *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS session_codes (
	namespace  TEXT        NOT NULL,
	key        TEXT        NOT NULL,
	value      TEXT        NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (namespace, key)
)`

const getSQL = `SELECT value FROM session_codes WHERE namespace = $1 AND key = $2 AND expires_at > now()`

const setSQL = `
INSERT INTO session_codes (namespace, key, value, expires_at)
VALUES ($1, $2, $3, now() + $4::interval)
ON CONFLICT (namespace, key) DO UPDATE
SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at`

const sweepSQL = `DELETE FROM session_codes WHERE expires_at <= now()`

// PostgresBackend stores session KVs in the session_codes table.
type PostgresBackend struct {
	db  DBTX
	ttl time.Duration
}

// NewPostgresBackend creates a backend over db. Call EnsureSchema once
// before first use.
func NewPostgresBackend(db DBTX, ttl time.Duration) *PostgresBackend {
	return &PostgresBackend{db: db, ttl: ttl}
}

// EnsureSchema creates the session_codes table if missing.
func (b *PostgresBackend) EnsureSchema(ctx context.Context) error {
	if _, err := b.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create session_codes: %w", err)
	}
	return nil
}

// Sweep deletes expired rows and returns how many were removed.
func (b *PostgresBackend) Sweep(ctx context.Context) (int, error) {
	tag, err := b.db.Exec(ctx, sweepSQL)
	if err != nil {
		return 0, fmt.Errorf("sweep session_codes: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// Session returns the KV of session id.
func (b *PostgresBackend) Session(id string) KV {
	return &postgresKV{backend: b, ns: namespace(id)}
}

type postgresKV struct {
	backend *PostgresBackend
	ns      string
}

func (kv *postgresKV) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := kv.backend.db.QueryRow(ctx, getSQL, kv.ns, key).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("postgres get %s: %w", key, err)
	}
	return v, nil
}

func (kv *postgresKV) Set(ctx context.Context, key, value string) error {
	interval := fmt.Sprintf("%d seconds", int64(kv.backend.ttl/time.Second))
	if _, err := kv.backend.db.Exec(ctx, setSQL, kv.ns, key, value, interval); err != nil {
		return fmt.Errorf("postgres set %s: %w", key, err)
	}
	return nil
}
