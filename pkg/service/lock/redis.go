package lock

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/m-mizutani/goerr/v2"
	"github.com/redis/go-redis/v9"
	"github.com/secmon-lab/releaseboard/pkg/utils/logging"
)

const (
	defaultRedisTTL    = 10 * time.Second
	defaultRedisPrefix = "releaseboard:lock:"
)

// Redis is a Locker shared by every instance connected to the same Redis
type Redis struct {
	client  *redislock.Client
	ttl     time.Duration
	prefix  string
	backoff time.Duration
	retries int
}

var _ Locker = &Redis{}

type RedisOption func(*Redis)

// WithTTL bounds how long a crashed holder can keep the lock
func WithTTL(ttl time.Duration) RedisOption {
	return func(r *Redis) {
		r.ttl = ttl
	}
}

func WithKeyPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		r.prefix = prefix
	}
}

func NewRedis(rdb redis.UniversalClient, opts ...RedisOption) *Redis {
	r := &Redis{
		client:  redislock.New(rdb),
		ttl:     defaultRedisTTL,
		prefix:  defaultRedisPrefix,
		backoff: 25 * time.Millisecond,
		retries: 200,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (x *Redis) Lock(ctx context.Context, key string) (func(), error) {
	l, err := x.client.Obtain(ctx, x.prefix+key, x.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(x.backoff), x.retries),
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to obtain redis lock", goerr.V("key", key))
	}

	return func() {
		// Use a fresh context so a cancelled request still releases the key
		if err := l.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			logging.From(ctx).Warn("failed to release redis lock", "key", key, "error", err)
		}
	}, nil
}
