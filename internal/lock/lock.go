// Package lock serializes balance updates on the same accounts across ledger instances.
package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/benx421/banking-ledger/internal/config"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

const ibanKeyPrefix = "lock:iban:"

// ErrNilLockFn is returned when WithLock is called without a function to run
var ErrNilLockFn = errors.New("lock function is nil")

// Locker runs fn while holding every lock in keys
type Locker interface {
	WithLock(ctx context.Context, keys []string, fn func(ctx context.Context) error) error
}

// IbanKeys returns the lock keys of the given IBANs, sorted and deduplicated so
// that every caller acquires them in the same order
func IbanKeys(ibans ...string) []string {
	keys := make([]string, 0, len(ibans))
	for _, iban := range ibans {
		if iban == "" {
			continue
		}
		keys = append(keys, ibanKeyPrefix+iban)
	}
	slices.Sort(keys)
	return slices.Compact(keys)
}

// NopLocker runs fn directly. Row locks taken inside the database transaction
// remain the only serialization.
type NopLocker struct{}

func (NopLocker) WithLock(ctx context.Context, _ []string, fn func(ctx context.Context) error) error {
	if fn == nil {
		return ErrNilLockFn
	}
	return fn(ctx)
}

// RedisLocker holds redsync mutexes on Redis
type RedisLocker struct {
	redsync *redsync.Redsync
	logger  *slog.Logger
	options []redsync.Option
}

// NewRedisLocker builds a locker on an existing go-redis client
func NewRedisLocker(client redis.UniversalClient, cfg *config.RedisConfig, logger *slog.Logger) *RedisLocker {
	return &RedisLocker{
		redsync: redsync.New(goredis.NewPool(client)),
		logger:  logger,
		options: []redsync.Option{
			redsync.WithExpiry(cfg.LockExpiry),
			redsync.WithTries(cfg.LockTries),
			redsync.WithRetryDelay(cfg.RetryDelay),
		},
	}
}

// NewRedisClient opens and pings the Redis client described by cfg
func NewRedisClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close() //nolint:errcheck // client never became usable
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// WithLock acquires keys in ascending order, runs fn and releases them in reverse.
// Errors returned by fn are passed through unchanged.
func (l *RedisLocker) WithLock(ctx context.Context, keys []string, fn func(ctx context.Context) error) error {
	if fn == nil {
		return ErrNilLockFn
	}

	sorted := slices.Clone(keys)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	held := make([]*redsync.Mutex, 0, len(sorted))
	defer func() {
		for i := len(held) - 1; i >= 0; i-- {
			mutex := held[i]
			if ok, err := mutex.UnlockContext(context.WithoutCancel(ctx)); !ok || err != nil {
				l.logger.Error("failed to release lock", "lock_key", mutex.Name(), "unlock_ok", ok, "error", err)
			}
		}
	}()

	for _, key := range sorted {
		mutex := l.redsync.NewMutex(key, l.options...)
		if err := mutex.LockContext(ctx); err != nil {
			l.logger.Warn("failed to acquire lock", "lock_key", key, "error", err)
			return fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		held = append(held, mutex)
	}

	return fn(ctx)
}

var (
	_ Locker = NopLocker{}
	_ Locker = (*RedisLocker)(nil)
)
