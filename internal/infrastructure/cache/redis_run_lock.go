// Package cache provides Redis-backed coordination primitives.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// defaultLockTTL bounds how long a crashed run can keep its account locked
const defaultLockTTL = 30 * time.Minute

// RedisRunLock guards against concurrent sync runs for the same account.
// Suitable for distributed deployments where multiple instances may receive
// run requests for one store.
type RedisRunLock struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	logger    *zap.Logger
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisRunLock creates a Redis-backed run lock
func NewRedisRunLock(cfg RedisConfig, logger *zap.Logger) (*RedisRunLock, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisRunLockWithClient(client, "", logger), nil
}

// NewRedisRunLockWithClient creates a run lock with an existing Redis client.
// This is useful for testing or when sharing a client across components.
func NewRedisRunLockWithClient(client *redis.Client, keyPrefix string, logger *zap.Logger) *RedisRunLock {
	if keyPrefix == "" {
		keyPrefix = "sync:runlock:"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisRunLock{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       defaultLockTTL,
		logger:    logger,
	}
}

// Acquire takes the run lock for an account using SETNX, so exactly one
// caller wins under contention. The returned release function deletes the
// key; the TTL is a backstop for releases that never happen.
func (l *RedisRunLock) Acquire(ctx context.Context, shopDomain string) (func(), bool, error) {
	key := l.keyPrefix + shopDomain

	acquired, err := l.client.SetNX(ctx, key, "1", l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !acquired {
		return nil, false, nil
	}

	release := func() {
		// Release must not inherit a cancelled run context
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := l.client.Del(ctx, key).Err(); err != nil {
			l.logger.Warn("Failed to release run lock, TTL will expire it",
				zap.String("shop_domain", shopDomain),
				zap.Error(err),
			)
		}
	}
	return release, true, nil
}

// Close closes the Redis client
func (l *RedisRunLock) Close() error {
	return l.client.Close()
}
