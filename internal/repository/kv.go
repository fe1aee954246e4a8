package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const pendingPrefix = "pending_checkout:"

func (r *Repository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return value, true, nil
}

func (r *Repository) Put(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete key %q: %w", key, err)
	}
	return nil
}

// SavePending stores the in-flight checkout blob for a shopper.
func (r *Repository) SavePending(ctx context.Context, subject string, blob []byte) error {
	return r.Put(ctx, pendingPrefix+subject, string(blob))
}

func (r *Repository) LoadPending(ctx context.Context, subject string) ([]byte, bool, error) {
	v, ok, err := r.Get(ctx, pendingPrefix+subject)
	if err != nil || !ok {
		return nil, ok, err
	}
	return []byte(v), true, nil
}

func (r *Repository) DeletePending(ctx context.Context, subject string) error {
	return r.Delete(ctx, pendingPrefix+subject)
}
