package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/redis/go-redis/v9"
	"github.com/secmon-lab/releaseboard/pkg/service/lock"
	"github.com/secmon-lab/releaseboard/pkg/utils/logging"
	"github.com/secmon-lab/releaseboard/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

// Redis configures the lock shared by server instances
type Redis struct {
	addr     string
	password string
	db       int
	lockTTL  time.Duration
}

func (x *Redis) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "redis-addr",
			Usage:       "Redis address (host:port) for the distributed dedup lock",
			Category:    "Redis",
			Sources:     cli.EnvVars("RELEASEBOARD_REDIS_ADDR"),
			Destination: &x.addr,
		},
		&cli.StringFlag{
			Name:        "redis-password",
			Usage:       "Redis password",
			Category:    "Redis",
			Sources:     cli.EnvVars("RELEASEBOARD_REDIS_PASSWORD"),
			Destination: &x.password,
		},
		&cli.IntFlag{
			Name:        "redis-db",
			Usage:       "Redis database number",
			Category:    "Redis",
			Sources:     cli.EnvVars("RELEASEBOARD_REDIS_DB"),
			Destination: &x.db,
		},
		&cli.DurationFlag{
			Name:        "redis-lock-ttl",
			Usage:       "Expiry of a dedup lock held by a crashed instance",
			Category:    "Redis",
			Value:       10 * time.Second,
			Sources:     cli.EnvVars("RELEASEBOARD_REDIS_LOCK_TTL"),
			Destination: &x.lockTTL,
		},
	}
}

func (x Redis) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("addr", x.addr),
		slog.Int("password.len", len(x.password)),
		slog.Int("db", x.db),
		slog.Duration("lock-ttl", x.lockTTL),
	)
}

// Configure returns the Redis locker, or an in-process one when no address
// is set. The returned function closes the Redis connection.
func (x *Redis) Configure(ctx context.Context) (lock.Locker, func(), error) {
	if x.addr == "" {
		return lock.NewMemory(), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     x.addr,
		Password: x.password,
		DB:       x.db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, goerr.Wrap(err, "failed to connect to redis", goerr.V("addr", x.addr))
	}

	var opts []lock.RedisOption
	if x.lockTTL > 0 {
		opts = append(opts, lock.WithTTL(x.lockTTL))
	}

	logging.Default().Info("Using Redis dedup lock", "addr", x.addr)
	closer := func() { safe.Close(context.Background(), rdb) }
	return lock.NewRedis(rdb, opts...), closer, nil
}
