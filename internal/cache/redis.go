// Package cache owns the shared Redis client used for locks and rate limits.
package cache

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/zoolspeed/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const pingTimeout = 3 * time.Second

var Module = fx.Module("cache",
	fx.Provide(NewRedis),
)

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Cfg       config.Config
	Log       *zap.Logger
}

// NewRedis returns nil when REDIS_ADDR is empty. Consumers treat a nil client as
// "run in single-instance mode".
func NewRedis(p Params) (*redis.Client, error) {
	if !p.Cfg.Redis.Enabled() {
		p.Log.Info("redis disabled, using in-process locks and no resolve rate limit")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     p.Cfg.Redis.Addr,
		Password: p.Cfg.Redis.Password,
		DB:       p.Cfg.Redis.DB,
	})

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
			defer cancel()
			if err := client.Ping(pingCtx).Err(); err != nil {
				return fmt.Errorf("redis ping %s: %w", p.Cfg.Redis.Addr, err)
			}
			p.Log.Info("redis connected", zap.String("addr", p.Cfg.Redis.Addr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}
