package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/safeplate/internal/domain"
)

const releaseTimeout = 2 * time.Second

// releaseScript deletes the key only while it still holds our token, so a
// holder whose TTL lapsed cannot release a lock taken over by someone else.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`) //nolint:gochecknoglobals // compiled script

// Locker is a single-instance Redis mutex keyed by string.
type Locker struct {
	client *redis.Client
}

func NewLocker(client *redis.Client) *Locker {
	return &Locker{client: client}
}

// Acquire takes key for at most ttl. It fails with domain.ErrConflict when
// the key is already held. The returned release func is safe to call once
// the lock has expired.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis.Locker.Acquire: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("redis.Locker.Acquire: %s: %w", key, domain.ErrConflict)
	}

	release := func() {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
		defer cancel()

		err := releaseScript.Run(rctx, l.client, []string{key}, token).Err()
		if err != nil && !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("key", key).Msg("redis.Locker: release failed")
		}
	}

	return release, nil
}
