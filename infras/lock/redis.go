package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goRedis "github.com/redis/go-redis/v9"
)

var releaseScript = goRedis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

var errLeaseLost = errors.New("lock lease expired before release")

type redisLocker struct {
	client goRedis.Cmdable
	ttl    time.Duration
	poll   time.Duration
}

// NewRedis returns a Locker using SET NX with a safety TTL. The TTL must
// comfortably exceed the longest critical section.
func NewRedis(client goRedis.Cmdable, ttl, poll time.Duration) Locker {
	return &redisLocker{client: client, ttl: ttl, poll: poll}
}

func (l *redisLocker) Acquire(ctx context.Context, name string, timeout time.Duration) (Lease, bool, error) {
	deadline := time.Now().Add(timeout)
	key := keyPrefix + name
	token := uuid.NewString()

	for {
		acquired, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, false, fmt.Errorf("failed to set lock key: %w", err)
		}

		if acquired {
			return &redisLease{client: l.client, key: key, token: token}, true, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, false, nil
		}

		if err := sleep(ctx, min(l.poll, remaining)); err != nil {
			return nil, false, err
		}
	}
}

type redisLease struct {
	client goRedis.Cmdable
	key    string
	token  string
}

func (l *redisLease) Release(ctx context.Context) error {
	deleted, err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Int()
	if err != nil {
		return fmt.Errorf("failed to release lock key: %w", err)
	}

	if deleted == 0 {
		return errLeaseLost
	}

	return nil
}
