package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Client is the subset of the go-redis client the store needs. MSET and a
// multi-key DEL are each atomic, which keeps the session pair consistent.
type Client interface {
	MGet(ctx context.Context, keys ...string) *goredis.SliceCmd
	MSet(ctx context.Context, values ...interface{}) *goredis.StatusCmd
	Del(ctx context.Context, keys ...string) *goredis.IntCmd
	Close() error
}

type pingClient interface {
	Client
	Ping(ctx context.Context) *goredis.StatusCmd
}

// newClient builds the go-redis client; tests replace it.
var newClient = func(opt *goredis.Options) pingClient {
	return goredis.NewClient(opt)
}

// Store is a KeyValueStore kept in Redis under a key prefix.
type Store struct {
	client Client
	prefix string
}

// Open connects to Redis and verifies the connection within five seconds.
func Open(addr, password string, db int, prefix string) (*Store, error) {
	client := newClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewStore(client, prefix), nil
}

// NewStore wraps an existing client.
func NewStore(client Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

func (s *Store) key(name string) string {
	return s.prefix + name
}

// GetItems returns the values present for keys.
func (s *Store) GetItems(ctx context.Context, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = s.key(key)
	}

	values, err := s.client.MGet(ctx, prefixed...).Result()
	if err != nil {
		return nil, err
	}
	for i, value := range values {
		if i >= len(keys) {
			break
		}
		if str, ok := value.(string); ok {
			out[keys[i]] = str
		}
	}
	return out, nil
}

// SetItems writes every entry with a single MSET.
func (s *Store) SetItems(ctx context.Context, items map[string]string) error {
	if len(items) == 0 {
		return nil
	}
	pairs := make([]interface{}, 0, len(items)*2)
	for key, value := range items {
		pairs = append(pairs, s.key(key), value)
	}
	return s.client.MSet(ctx, pairs...).Err()
}

// RemoveItems deletes every key with a single DEL.
func (s *Store) RemoveItems(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = s.key(key)
	}
	return s.client.Del(ctx, prefixed...).Err()
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}
