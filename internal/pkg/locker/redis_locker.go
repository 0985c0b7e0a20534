package locker

import (
	"context"
	"errors"
	"time"

	"meal-ordering-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only if this holder still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker shares locks across API instances.
type RedisLocker struct {
	rdb        *redis.Client
	ttl        time.Duration
	retryDelay time.Duration
	logger     logger.ILogger
}

func NewRedisLocker(rdb *redis.Client, ttl time.Duration, log logger.ILogger) *RedisLocker {
	return &RedisLocker{
		rdb:        rdb,
		ttl:        ttl,
		retryDelay: 25 * time.Millisecond,
		logger:     log,
	}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ErrLockTimeout
			}
			return nil, err
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ErrLockTimeout
		case <-time.After(l.retryDelay):
		}
	}

	return func() { l.release(key, token) }, nil
}

// release runs with a fresh context so a cancelled request still frees the key.
// A failed release leaves the key to expire after the TTL.
func (l *RedisLocker) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := releaseScript.Run(ctx, l.rdb, []string{key}, token).Err()
	if err == nil || errors.Is(err, redis.Nil) {
		return
	}
	l.logger.Warn("LOCKER", "Failed to release lock", map[string]interface{}{
		"key":   key,
		"ttl":   l.ttl.String(),
		"error": err.Error(),
	})
}
