package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/polarisaistudio/tenant-prediction/internal/domain/retention"
)

// RedisLeaseLock implements retention.LeaseLock using Redis SETNX.
// This is suitable for distributed deployments where multiple instances
// may scan overlapping lease windows.
type RedisLeaseLock struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisLeaseLock creates a new Redis-backed lease lock
func NewRedisLeaseLock(cfg RedisConfig) (*RedisLeaseLock, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisLeaseLock{
		client:    client,
		keyPrefix: "retention:leaselock:",
	}, nil
}

// NewRedisLeaseLockWithClient creates a lock with an existing Redis client.
// Useful for testing or when sharing a client across components.
func NewRedisLeaseLockWithClient(client *redis.Client, keyPrefix string) *RedisLeaseLock {
	if keyPrefix == "" {
		keyPrefix = "retention:leaselock:"
	}
	return &RedisLeaseLock{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Acquire takes the per-lease lock with a TTL. Returns true if the lock was
// newly taken, false if another holder owns it. SETNX makes this atomic.
func (l *RedisLeaseLock) Acquire(ctx context.Context, leaseID uuid.UUID, ttl time.Duration) (bool, error) {
	key := l.keyPrefix + leaseID.String()

	acquired, err := l.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lease lock: %w", err)
	}
	return acquired, nil
}

// Release drops the per-lease lock
func (l *RedisLeaseLock) Release(ctx context.Context, leaseID uuid.UUID) error {
	key := l.keyPrefix + leaseID.String()

	if err := l.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to release lease lock: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (l *RedisLeaseLock) Close() error {
	return l.client.Close()
}

// Ensure RedisLeaseLock implements retention.LeaseLock
var _ retention.LeaseLock = (*RedisLeaseLock)(nil)
