package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Cache backed by a Redis server, for deployments where several
// service instances must share invalidations. Storage errors degrade to
// cache misses; they are logged at debug level and never surfaced.
type Redis struct {
	client    *redis.Client
	keyPrefix string
	log       *slog.Logger
}

// NewRedis wraps an established Redis client. keyPrefix namespaces all keys
// (pass the service name) so the cache can share a database with other uses.
func NewRedis(client *redis.Client, keyPrefix string, log *slog.Logger) *Redis {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Redis{
		client:    client,
		keyPrefix: keyPrefix,
		log:       log,
	}
}

func (r *Redis) key(k string) string {
	if r.keyPrefix == "" {
		return k
	}
	return r.keyPrefix + ":" + k
}

// Get returns the value under key. Redis enforces TTL expiry itself.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	value, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.log.DebugContext(ctx, "cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	return value, true
}

// Set stores value under key for ttl.
func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if err := r.client.Set(ctx, r.key(key), value, ttl).Err(); err != nil {
		r.log.DebugContext(ctx, "cache write failed", "key", key, "error", err)
	}
}

// Invalidate deletes the key and every key sharing the prefix using an
// incremental SCAN, so it never blocks the server the way KEYS would.
func (r *Redis) Invalidate(ctx context.Context, prefixOrKey string) {
	pattern := r.key(prefixOrKey) + "*"
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()

	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			r.log.DebugContext(ctx, "cache invalidation failed", "key", iter.Val(), "error", err)
		}
	}
	if err := iter.Err(); err != nil {
		r.log.DebugContext(ctx, "cache scan failed", "pattern", pattern, "error", err)
	}
}
