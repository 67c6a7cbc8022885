package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "session:revoked:"

// RedisRevoker is a session blacklist in Redis. Entries expire together with the token
// they revoke, so the set never outgrows the live sessions.
type RedisRevoker struct {
	client *redis.Client
	now    func() time.Time
}

var _ Revoker = (*RedisRevoker)(nil)

// NewRedisRevoker connects to the Redis instance at url and verifies it answers.
func NewRedisRevoker(ctx context.Context, url string) (*RedisRevoker, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisRevoker{client: client, now: time.Now}, nil
}

func (r *RedisRevoker) Revoke(ctx context.Context, id string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, revokedKeyPrefix+id, 1, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisRevoker) IsRevoked(ctx context.Context, id string) (bool, error) {
	err := r.client.Get(ctx, revokedKeyPrefix+id).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}
	return true, nil
}

// Close releases the underlying connection pool.
func (r *RedisRevoker) Close() error {
	return r.client.Close()
}
