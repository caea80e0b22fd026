// Package lock provides the cross-replica guard for ingestion cycles.
package lock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"LayoffTracker/internal/ports"
)

// DefaultTTL bounds how long a crashed holder can block other replicas.
const DefaultTTL = 10 * time.Minute

var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// RedisLease is a SET NX PX lease keyed on one Redis key.
type RedisLease struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	logger *slog.Logger
}

var _ ports.SyncLock = (*RedisLease)(nil)

// NewRedisLease builds a lease on key; a non-positive ttl uses DefaultTTL.
func NewRedisLease(client *redis.Client, key string, ttl time.Duration, logger *slog.Logger) *RedisLease {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &RedisLease{client: client, key: key, ttl: ttl, logger: logger}
}

// Connect parses a redis:// URL and verifies connectivity.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// TryAcquire sets the key with a fresh token. The returned release deletes
// the key only while it still carries that token.
func (l *RedisLease) TryAcquire(ctx context.Context) (func(), bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire lease %s: %w", l.key, err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		n, err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Int()
		if err != nil {
			l.logger.Warn("release lease failed", "key", l.key, "error", err)
			return
		}
		if n == 0 {
			l.logger.Warn("lease expired before release", "key", l.key)
		}
	}
	return release, true, nil
}
