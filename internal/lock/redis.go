package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

const (
	defaultTTL          = 10 * time.Second
	defaultRetryDelay   = 50 * time.Millisecond
	defaultAttempts     = 100
	releaseTimeout      = 2 * time.Second
	defaultRedisKeyBase = "zoolspeed:lock:"
)

// Redis is a SETNX lock with a token-checked release. The TTL bounds how long a crashed
// holder can block others.
type Redis struct {
	client   *redis.Client
	script   *redis.Script
	ttl      time.Duration
	delay    time.Duration
	attempts uint
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{
		client:   client,
		script:   redis.NewScript(releaseScript),
		ttl:      defaultTTL,
		delay:    defaultRetryDelay,
		attempts: defaultAttempts,
	}
}

func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	redisKey := defaultRedisKeyBase + key
	owner := uuid.NewString()

	err := retry.Do(
		func() error {
			ok, err := r.client.SetNX(ctx, redisKey, owner, r.ttl).Result()
			if err != nil {
				return err
			}
			if !ok {
				return ErrHeld
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(r.attempts),
		retry.Delay(r.delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", key, err)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
			defer cancel()
			_ = r.script.Run(releaseCtx, r.client, []string{redisKey}, owner).Err()
		})
	}, nil
}
