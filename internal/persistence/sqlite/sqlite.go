package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Storage is a KeyValueStore backed by a SQLite file, the durable
// counterpart of browser local storage.
type Storage struct {
	pool  *ConnectionPool
	retry *RetryHelper
	now   func() time.Time
}

// Open returns a Storage for dsn. Call Migrate before use.
func Open(dsn string) (*Storage, error) {
	pool, err := NewConnectionPool(dsn)
	if err != nil {
		return nil, err
	}
	return &Storage{
		pool:  pool,
		retry: NewRetryHelper(DefaultRetryConfig()),
		now:   time.Now,
	}, nil
}

// Close releases the underlying connection pool.
func (s *Storage) Close() error {
	return s.pool.Close()
}

// Migrate applies pending schema migrations in version order.
func (s *Storage) Migrate(ctx context.Context) error {
	if err := s.initializeVersionTable(ctx); err != nil {
		return err
	}
	for _, m := range migrations {
		applied, err := s.isVersionApplied(ctx, m.Version)
		if err != nil {
			return err
		}
		if applied {
			continue
		}
		if err := s.executeMigration(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// GetItems returns the stored values for keys; absent keys are omitted.
func (s *Storage) GetItems(ctx context.Context, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	args := make([]any, len(keys))
	for i, key := range keys {
		args[i] = key
	}

	rows, err := s.pool.DB().QueryContext(ctx,
		fmt.Sprintf(`SELECT key, value FROM local_storage WHERE key IN (%s)`, placeholders), args...)
	if err != nil {
		return nil, s.retry.mapper.MapError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		out[key] = value
	}
	return out, rows.Err()
}

// SetItems upserts every entry in a single transaction.
func (s *Storage) SetItems(ctx context.Context, items map[string]string) error {
	if len(items) == 0 {
		return nil
	}
	updatedAt := s.now().UTC().Format(time.RFC3339)
	return s.retry.WithRetry(ctx, func() error {
		return s.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			for key, value := range items {
				_, err := tx.ExecContext(ctx, `
					INSERT INTO local_storage (key, value, updated_at) VALUES (?, ?, ?)
					ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
				`, key, value, updatedAt)
				if err != nil {
					return err
				}
			}
			return nil
		})
	})
}

// RemoveItems deletes every key in a single transaction.
func (s *Storage) RemoveItems(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.retry.WithRetry(ctx, func() error {
		return s.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			for _, key := range keys {
				if _, err := tx.ExecContext(ctx, `DELETE FROM local_storage WHERE key = ?`, key); err != nil {
					return err
				}
			}
			return nil
		})
	})
}
