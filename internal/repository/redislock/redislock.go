// FilePath: internal/repository/redislock/redislock.go
package redislock

import (
	"context"
	"fmt"
	"time"

	"github.com/itsatony/w4b_v3/server/coldrelay/internal/config"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/errors"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/repository"
	"github.com/redis/go-redis/v9"
	nuts "github.com/vaudience/go-nuts"
)

const pollLockKey = "coldrelay:poll:lock"

// releaseScript deletes the key only when it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Lock is a PollLock backed by a single Redis key
type Lock struct {
	client redis.UniversalClient
	key    string
}

var _ repository.PollLock = (*Lock)(nil)

// New connects to Redis and verifies the connection
func New(ctx context.Context, cfg config.RedisConfig) (*Lock, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.NewUnavailableError("failed to reach redis", err)
	}
	nuts.L.Infof("[RedisLock] Connected to %s:%d/%d", cfg.Host, cfg.Port, cfg.DB)
	return NewWithClient(client), nil
}

// NewWithClient wraps an existing client
func NewWithClient(client redis.UniversalClient) *Lock {
	return &Lock{client: client, key: pollLockKey}
}

func (l *Lock) Acquire(ctx context.Context, ttl time.Duration) (bool, func(), error) {
	token := nuts.NID("lk", 16)
	ok, err := l.client.SetNX(ctx, l.key, token, ttl).Result()
	if err != nil {
		return false, nil, errors.NewUnavailableError("failed to acquire poll lock", err)
	}
	if !ok {
		return false, nil, nil
	}
	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Err(); err != nil {
			nuts.L.Warnf("[RedisLock] Failed to release poll lock: %v", err)
		}
	}
	return true, release, nil
}

func (l *Lock) Close() error {
	return l.client.Close()
}
