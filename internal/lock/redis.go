package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fekuna/superfume-sync/internal/apperr"
	"github.com/fekuna/superfume-sync/pkg/cache"
	"github.com/fekuna/superfume-sync/pkg/logger"
)

// RedisLocker shares key ownership between processes using one Redis.
type RedisLocker struct {
	cache    *cache.RedisClient
	ttl      time.Duration
	attempts int
	backoff  time.Duration
	logger   logger.ZapLogger
}

type RedisLockerConfig struct {
	TTL      time.Duration
	Attempts int
	Backoff  time.Duration
}

func NewRedisLocker(c *cache.RedisClient, cfg RedisLockerConfig, log logger.ZapLogger) *RedisLocker {
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Second
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 3
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 100 * time.Millisecond
	}
	return &RedisLocker{
		cache:    c,
		ttl:      cfg.TTL,
		attempts: cfg.Attempts,
		backoff:  cfg.Backoff,
		logger:   log,
	}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	lockKey := "lock:" + key
	lockValue := uuid.New().String()

	for i := 0; i < l.attempts; i++ {
		ok, err := l.cache.AcquireLock(ctx, lockKey, lockValue, l.ttl)
		if err != nil {
			l.logger.Error("failed to acquire lock redis error", zap.String("key", lockKey), zap.Error(err))
		}
		if ok {
			var once sync.Once
			return func() {
				once.Do(func() {
					// the caller's ctx may already be gone
					if err := l.cache.ReleaseLock(context.Background(), lockKey, lockValue); err != nil {
						l.logger.Warn("failed to release lock", zap.String("key", lockKey), zap.Error(err))
					}
				})
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.backoff):
		}
	}
	return nil, apperr.ErrBusy
}
