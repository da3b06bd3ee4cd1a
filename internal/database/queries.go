package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Load returns the value stored under key, or nil when the key is absent.
func (d *Database) Load(ctx context.Context, key string) ([]byte, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errors.New("key is empty")
	}

	query := "select value from kv_store where key = ?"

	var value []byte
	err := d.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}

	return value, nil
}

// Save replaces the value stored under key.
func (d *Database) Save(ctx context.Context, key string, value []byte) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("key is empty")
	}

	query := `insert into kv_store (key, value, updated_at)
	values (?, ?, current_timestamp)
	on conflict (key) do update
	set value = excluded.value,
	updated_at = excluded.updated_at`

	if _, err := d.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to execute query: %w", err)
	}

	return nil
}
