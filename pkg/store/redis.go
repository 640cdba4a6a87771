package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/graphwire/pkg/errors"
)

// RedisConfig holds Redis-specific configuration.
type RedisConfig struct {
	// Addr is the Redis server address (host:port)
	Addr string `toml:"addr"`
	// Password is the Redis password (optional)
	Password string `toml:"password"`
	// DB is the Redis database number
	DB int `toml:"db"`
	// Prefix is prepended to every key
	Prefix string `toml:"prefix"`
	// DefaultTTL applies when Set is called with a zero TTL
	DefaultTTL time.Duration `toml:"default_ttl"`
}

// DefaultRedisConfig returns a default Redis configuration.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:   "localhost:6379",
		Prefix: "graphwire:",
	}
}

// RedisStore implements a Redis-backed store.
type RedisStore struct {
	client     *redis.Client
	prefix     string
	defaultTTL time.Duration
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to redis at %s", cfg.Addr)
	}
	return NewRedisStoreWithClient(client, cfg), nil
}

// NewRedisStoreWithClient creates a Redis store with an existing client.
// Only the Prefix and DefaultTTL fields of cfg are used.
func NewRedisStoreWithClient(client *redis.Client, cfg RedisConfig) *RedisStore {
	return &RedisStore{
		client:     client,
		prefix:     cfg.Prefix,
		defaultTTL: cfg.DefaultTTL,
	}
}

// Get retrieves a document from Redis.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err == redis.Nil {
		observeGet(ctx, "redis", false)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, networkError(err, "redis get %q", key)
	}
	observeGet(ctx, "redis", true)
	return value, true, nil
}

// Set stores a document in Redis.
func (s *RedisStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = s.defaultTTL
	}
	if err := s.client.Set(ctx, s.prefix+key, data, ttl).Err(); err != nil {
		return networkError(err, "redis set %q", key)
	}
	observeSet(ctx, "redis", len(data))
	return nil
}

// Delete removes a document from Redis.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return networkError(err, "redis delete %q", key)
	}
	return nil
}

// Clear removes all keys under the store prefix.
func (s *RedisStore) Clear(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return networkError(err, "redis clear")
		}
	}
	if err := iter.Err(); err != nil {
		return networkError(err, "redis clear")
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// networkError marks a backend failure as retryable.
func networkError(err error, format string, args ...any) error {
	return Retryable(errors.Wrap(errors.ErrCodeNetwork, err, format, args...))
}

// Ensure RedisStore implements Store and Clearer.
var (
	_ Store   = (*RedisStore)(nil)
	_ Clearer = (*RedisStore)(nil)
)
