package cache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/polarisaistudio/tenant-prediction/internal/domain/retention"
	"github.com/polarisaistudio/tenant-prediction/internal/infrastructure/config"
)

// LeaseLockFactory creates lease locks based on configuration
type LeaseLockFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// LeaseLockFactoryOption is a functional option for configuring the factory
type LeaseLockFactoryOption func(*LeaseLockFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) LeaseLockFactoryOption {
	return func(f *LeaseLockFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory lock
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) LeaseLockFactoryOption {
	return func(f *LeaseLockFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewLeaseLockFactory creates a new factory
func NewLeaseLockFactory(cfg config.RedisConfig, opts ...LeaseLockFactoryOption) *LeaseLockFactory {
	f := &LeaseLockFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisLock creates a Redis-backed lease lock
func (f *LeaseLockFactory) CreateRedisLock() (retention.LeaseLock, error) {
	lock, err := NewRedisLeaseLock(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis lease lock: %w", err)
	}
	return lock, nil
}

// CreateInMemoryLock creates an in-memory lease lock.
// WARNING: In-memory locks do not share state across process instances,
// which can allow concurrent retention runs for the same lease in
// distributed deployments.
func (f *LeaseLockFactory) CreateInMemoryLock() retention.LeaseLock {
	return NewInMemoryLeaseLock()
}

// CreateLock tries Redis first and falls back to in-memory when Redis is
// unavailable and fallback is allowed.
func (f *LeaseLockFactory) CreateLock() (retention.LeaseLock, error) {
	lock, err := f.CreateRedisLock()
	if err == nil {
		f.logger.Info("using Redis lease lock")
		return lock, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for lease locking but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory lease lock. "+
		"Concurrent retention runs for the same lease are possible across instances.",
		zap.Error(err),
	)
	return f.CreateInMemoryLock(), nil
}
