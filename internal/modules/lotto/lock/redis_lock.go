// Package lock provides an advisory Redis lock that de-duplicates closure
// attempts for the same round. The lock is not the correctness guard; the
// ledger's conditional close is. It only keeps two schedulers from doing the
// same work at once.
package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/frankieli/lotto_pool/internal/modules/lotto/domain"
	"github.com/frankieli/lotto_pool/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// CloseLocker guards a round closure attempt
type CloseLocker interface {
	// Acquire takes the lock for roundID, returning ErrCloseInProgress if
	// another closer holds it. The returned release func is safe to call
	// even after the TTL expired.
	Acquire(ctx context.Context, roundID uint64) (release func(), err error)
}

// RedisLocker implements CloseLocker with SET NX + TTL
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLocker creates a locker with the given TTL (30s if zero)
func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisLocker{client: client, ttl: ttl}
}

func (l *RedisLocker) key(roundID uint64) string {
	return fmt.Sprintf("lotto:close:%d", roundID)
}

// Acquire takes the per-round lock
func (l *RedisLocker) Acquire(ctx context.Context, roundID uint64) (func(), error) {
	key := l.key(roundID)
	ok, err := l.client.SetNX(ctx, key, "1", l.ttl).Result()
	if err != nil {
		// Redis being down must not block closures: the ledger's
		// conditional close still guarantees at-most-once finality.
		logger.Warn(ctx).Err(err).Str("key", key).Msg("close lock unavailable, proceeding without it")
		return func() {}, nil
	}
	if !ok {
		return nil, fmt.Errorf("%w: round %d", domain.ErrCloseInProgress, roundID)
	}

	release := func() {
		if err := l.client.Del(context.Background(), key).Err(); err != nil {
			logger.WarnGlobal().Err(err).Str("key", key).Msg("failed to release close lock")
		}
	}
	return release, nil
}
