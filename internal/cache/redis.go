// Package cache provides the in-process TTL caches for recommendations and
// trending, plus Redis caching utilities for hot entity reads.
package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"wayfare/internal/observability"

	"github.com/redis/go-redis/v9"
)

const connectTimeout = 5 * time.Second

var client *redis.Client

// metricsHook counts command failures. redis.Nil is a cache miss, not an
// error.
type metricsHook struct{}

func (metricsHook) DialHook(next redis.DialHook) redis.DialHook { return next }

func (metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrors.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrors.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// InitRedis connects to Redis at addr, which may be a bare host:port or a
// redis:// URL. A failed connection leaves the client nil; callers treat a
// nil client as cache-off rather than an error.
func InitRedis(addr string) {
	opts, err := parseAddr(addr)
	if err != nil {
		observability.Logger.Warn("invalid redis address, continuing without cache",
			"addr", addr, "error", err)
		client = nil
		return
	}

	c := redis.NewClient(opts)
	c.AddHook(metricsHook{})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		observability.Logger.Warn("redis unreachable, continuing without cache", "error", err)
		client = nil
		return
	}

	observability.Logger.Info("redis connected")
	client = c
}

func parseAddr(addr string) (*redis.Options, error) {
	if strings.Contains(addr, "://") {
		return redis.ParseURL(addr)
	}
	return &redis.Options{Addr: addr}, nil
}

// GetClient returns the current Redis client, nil when the cache is off.
func GetClient() *redis.Client {
	return client
}

// SetClient replaces the Redis client. Used by tests with miniredis.
func SetClient(c *redis.Client) {
	client = c
}
