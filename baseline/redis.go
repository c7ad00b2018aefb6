package baseline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/omtsf/omtsf-go/graph"
)

// RedisOptions configures the Redis-backed store.
type RedisOptions struct {
	// URL is the Redis connection string (e.g. "redis://localhost:6379").
	URL string

	// Prefix namespaces every key; defaults to "omtsf:baseline".
	Prefix string

	// ConnectTimeout bounds the initial connection; defaults to 5s.
	ConnectTimeout time.Duration
}

// RedisStore persists baselines in Redis: the latest record as a JSON value
// per origin, the fingerprint history as a list.
//
// Thread-safety: all methods are safe for concurrent use.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(opts RedisOptions) (*RedisStore, error) {
	if opts.URL == "" {
		opts.URL = "redis://localhost:6379"
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	redisOpts.DialTimeout = opts.ConnectTimeout

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client, prefix: prefixOrDefault(opts.Prefix)}, nil
}

// NewRedisStoreWithClient wraps an existing client, used by tests running
// against miniredis.
func NewRedisStoreWithClient(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefixOrDefault(prefix)}
}

func prefixOrDefault(prefix string) string {
	if prefix == "" {
		return "omtsf:baseline"
	}
	return prefix
}

// Save implements Store.
func (s *RedisStore) Save(ctx context.Context, origin string, f *graph.File) (*Record, error) {
	rec, err := newRecord(origin, f)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal record: %v", ErrStorageFailed, err)
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.latestKey(origin), data, 0)
	pipe.LPush(ctx, s.historyKey(origin), rec.Fingerprint)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("%w: save baseline for %q: %v", ErrStorageFailed, origin, err)
	}
	return rec, nil
}

// Latest implements Store.
func (s *RedisStore) Latest(ctx context.Context, origin string) (*Record, error) {
	if origin == "" {
		return nil, ErrInvalidOrigin
	}
	data, err := s.client.Get(ctx, s.latestKey(origin)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get baseline for %q: %v", ErrStorageFailed, origin, err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: unmarshal record: %v", ErrStorageFailed, err)
	}
	return &rec, nil
}

// History implements Store.
func (s *RedisStore) History(ctx context.Context, origin string) ([]string, error) {
	if origin == "" {
		return nil, ErrInvalidOrigin
	}
	fingerprints, err := s.client.LRange(ctx, s.historyKey(origin), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: history for %q: %v", ErrStorageFailed, origin, err)
	}
	return fingerprints, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) latestKey(origin string) string {
	return fmt.Sprintf("%s:%s:latest", s.prefix, origin)
}

func (s *RedisStore) historyKey(origin string) string {
	return fmt.Sprintf("%s:%s:history", s.prefix, origin)
}
