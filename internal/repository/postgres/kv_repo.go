package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"communityhub/internal/domain"
)

// undefinedTable is the Postgres error code for a missing relation.
const undefinedTable = "42P01"

type keyValueRepository struct {
	DB *sql.DB
}

// NewKeyValueRepository returns a KeyValueStore persisted in the kv_entries table.
func NewKeyValueRepository(db *sql.DB) domain.KeyValueStore {
	return &keyValueRepository{DB: db}
}

func (r *keyValueRepository) Get(ctx context.Context, key string) (string, error) {
	query := `SELECT value FROM kv_entries WHERE key = $1`
	var value string
	err := r.DB.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrKeyNotFound
	}
	if err != nil {
		return "", wrapErr("get", key, err)
	}
	return value, nil
}

func (r *keyValueRepository) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO kv_entries (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`
	if _, err := r.DB.ExecContext(ctx, query, key, value); err != nil {
		return wrapErr("set", key, err)
	}
	return nil
}

func (r *keyValueRepository) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM kv_entries WHERE key = $1`
	if _, err := r.DB.ExecContext(ctx, query, key); err != nil {
		return wrapErr("delete", key, err)
	}
	return nil
}

func wrapErr(op, key string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == undefinedTable {
		return fmt.Errorf("%s %q: kv_entries table is missing, run EnsureSchema: %w", op, key, err)
	}
	return fmt.Errorf("%s %q: %w", op, key, err)
}
