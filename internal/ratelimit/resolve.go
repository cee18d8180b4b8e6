package ratelimit

import (
	"context"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/zoolspeed/internal/config"
	"go.uber.org/zap"
)

const keyResolveClient = "zoolspeed:ratelimit:resolve:%s"

// ResolveLimiter throttles token lookups per client address. A nil or disabled limiter
// allows everything.
type ResolveLimiter struct {
	bucket *TokenBucket
	log    *zap.Logger
	rate   float64
	burst  int
}

func NewResolveLimiter(cfg config.Config, client *redis.Client, log *zap.Logger) *ResolveLimiter {
	limit := cfg.ResolveRateLimit
	if client == nil || limit.Rate <= 0 || limit.Burst <= 0 {
		log.Info("resolve rate limit disabled")
		return &ResolveLimiter{log: log}
	}
	return &ResolveLimiter{
		bucket: NewTokenBucket(client),
		log:    log.Named("ratelimit"),
		rate:   limit.Rate,
		burst:  limit.Burst,
	}
}

func (l *ResolveLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

// Allow fails open when Redis is unreachable; the lookup itself is still authenticated.
func (l *ResolveLimiter) Allow(ctx context.Context, client string) *Result {
	if !l.Enabled() {
		return &Result{Allowed: true}
	}
	client = strings.TrimSpace(client)
	if client == "" {
		client = "unknown"
	}

	res, err := l.bucket.Allow(ctx, fmt.Sprintf(keyResolveClient, client), l.rate, l.burst)
	if err != nil {
		l.log.Warn("resolve rate limit check failed", zap.Error(err))
		return &Result{Allowed: true, Limit: l.burst}
	}
	return res
}
