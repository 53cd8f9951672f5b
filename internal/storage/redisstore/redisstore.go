// Package redisstore persists the storefront's documents in Redis. Every
// collection is a single key holding the whole JSON array: reads load the
// collection, writes rewrite it wholesale. That matches the admin surface
// (small collections, single-admin writes) and keeps the storage contract
// identical to the in-memory fallback.
package redisstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
)

// Collection keys. A single deployment owns the whole keyspace prefix.
const (
	keyProducts      = "solar:products"
	keyArticles      = "solar:articles"
	keyQuestions     = "solar:questions"
	keySettings      = "solar:settings"
	sessionKeyPrefix = "solar:session:"
)

// Store wraps a Redis client with the document-store operations.
type Store struct {
	rdb *redis.Client
}

// New creates a Store from a Redis connection URL.
func New(redisURL string) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}
	return &Store{rdb: redis.NewClient(opts)}, nil
}

// NewWithClient wraps an existing client. Used by tests.
func NewWithClient(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Ping checks connectivity; wired into the readiness probe.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.rdb.Close()
}

// readCollection loads and decodes a whole collection. A missing key is an
// empty collection, not an error.
func readCollection[T any](ctx context.Context, rdb *redis.Client, key string) ([]T, error) {
	data, err := rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", key)
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, errors.Wrapf(err, "decode %s", key)
	}
	return items, nil
}

// writeCollection rewrites a whole collection. Encodes before touching the
// store so an encoding failure leaves the stored data unmodified.
func writeCollection[T any](ctx context.Context, rdb *redis.Client, key string, items []T) error {
	data, err := json.Marshal(items)
	if err != nil {
		return errors.Wrapf(err, "encode %s", key)
	}
	if err := rdb.Set(ctx, key, data, 0).Err(); err != nil {
		return errors.Wrapf(err, "write %s", key)
	}
	return nil
}

// SessionStore implements auth.TokenStore on per-token keys so Redis TTLs
// handle expiry natively.
type SessionStore struct {
	rdb *redis.Client
}

// Sessions returns the session token store.
func (s *Store) Sessions() *SessionStore {
	return &SessionStore{rdb: s.rdb}
}

func (s *SessionStore) Save(ctx context.Context, tokenHash string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, sessionKeyPrefix+tokenHash, "1", ttl).Err(); err != nil {
		return errors.Wrap(err, "save session")
	}
	return nil
}

func (s *SessionStore) Exists(ctx context.Context, tokenHash string) (bool, error) {
	n, err := s.rdb.Exists(ctx, sessionKeyPrefix+tokenHash).Result()
	if err != nil {
		return false, errors.Wrap(err, "lookup session")
	}
	return n > 0, nil
}

func (s *SessionStore) Delete(ctx context.Context, tokenHash string) error {
	if err := s.rdb.Del(ctx, sessionKeyPrefix+tokenHash).Err(); err != nil {
		return errors.Wrap(err, "delete session")
	}
	return nil
}
