package persistence

import "context"

// KeyValueStore is durable client storage with all-or-nothing multi-key writes.
type KeyValueStore interface {
	// GetItems returns the values present for keys; absent keys are omitted.
	GetItems(ctx context.Context, keys ...string) (map[string]string, error)
	// SetItems writes every entry or none of them.
	SetItems(ctx context.Context, items map[string]string) error
	// RemoveItems deletes every key or none of them. Missing keys are not an error.
	RemoveItems(ctx context.Context, keys ...string) error
	Close() error
}
