package database

import (
	"Samagra/config"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrLockNotAcquired is returned when a lock stays held by another owner
// after all retries.
var ErrLockNotAcquired = errors.New("failed to acquire lock after retries")

// NewRedisClient creates a Redis client with the provided configuration
func NewRedisClient(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opt.PoolSize = cfg.PoolSize
	opt.MinIdleConns = cfg.MinIdleConns
	opt.DialTimeout = cfg.DialTimeout
	opt.ReadTimeout = cfg.ReadTimeout
	opt.MaxRetries = cfg.MaxRetries

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis server: %w", err)
	}

	logger.Info("redis client initialized",
		zap.Int("pool_size", cfg.PoolSize),
		zap.Int("min_idle_conns", cfg.MinIdleConns),
		zap.Duration("dial_timeout", cfg.DialTimeout),
		zap.Duration("read_timeout", cfg.ReadTimeout),
		zap.Int("max_retries", cfg.MaxRetries),
	)
	return client, nil
}

const releaseLockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`

// Locker hands out short-lived distributed locks backed by SETNX.
type Locker struct {
	client     *redis.Client
	release    *redis.Script
	logger     *zap.Logger
	TTL        time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

func NewLocker(client *redis.Client, logger *zap.Logger) *Locker {
	return &Locker{
		client:     client,
		release:    redis.NewScript(releaseLockScript),
		logger:     logger,
		TTL:        10 * time.Second,
		MaxRetries: 3,
		RetryDelay: 2 * time.Second,
	}
}

// NewLock acquires a distributed lock using Redis
func (l *Locker) NewLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, key, value, ttl).Result()
}

// ReleaseLock releases a lock only when value still owns it.
func (l *Locker) ReleaseLock(ctx context.Context, key, value string) error {
	result, err := l.release.Run(ctx, l.client, []string{key}, value).Result()
	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	if n, _ := result.(int64); n == 0 {
		return errors.New("lock release failed: not the lock owner")
	}
	return nil
}

// WithLock runs fn while holding key, retrying acquisition a few times.
func (l *Locker) WithLock(ctx context.Context, key string, fn func() error) error {
	value := uuid.New().String()

	var locked bool
	var err error
	for i := 0; i < l.MaxRetries; i++ {
		locked, err = l.NewLock(ctx, key, value, l.TTL)
		if err == nil && locked {
			break
		}
		if i < l.MaxRetries-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(l.RetryDelay):
			}
		}
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLockNotAcquired, err)
	}
	if !locked {
		return ErrLockNotAcquired
	}
	defer func() {
		if err := l.ReleaseLock(context.Background(), key, value); err != nil {
			l.logger.Warn("failed to release lock", zap.String("key", key), zap.Error(err))
		}
	}()

	return fn()
}

// RedisPoolStats reports connection pool counters for health checks.
func RedisPoolStats(client *redis.Client) map[string]uint32 {
	stats := client.PoolStats()
	return map[string]uint32{
		"total": stats.TotalConns,
		"idle":  stats.IdleConns,
		"stale": stats.StaleConns,
		"hits":  stats.Hits,
		"miss":  stats.Misses,
	}
}
