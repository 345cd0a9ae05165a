package middleware

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"wayfare/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy decides what happens to a request when the rate limit store is
// unreachable.
type FailPolicy int

const (
	// FailOpen lets the request through.
	FailOpen FailPolicy = iota
	// FailClosed rejects the request with 503 Service Unavailable.
	FailClosed
)

// bypassEnvs lists environments where throttling is suspended so local
// development and load tests run unthrottled.
var bypassEnvs = map[string]bool{"test": true, "development": true, "stress": true}

// runningEnv prefers the loaded config and falls back to APP_ENV when the
// middleware has not been initialized, as in package tests.
func runningEnv() string {
	if cfg != nil && cfg.Env != "" {
		return cfg.Env
	}
	if env := os.Getenv("APP_ENV"); env != "" {
		return env
	}
	return "development"
}

// CheckRateLimit counts one hit for id against resource and reports whether
// it stays within limit hits per window. Counters live in Redis under
// rl:<resource>:<id> and expire with the window.
func CheckRateLimit(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (bool, error) {
	if bypassEnvs[runningEnv()] {
		return true, nil
	}
	if rdb == nil {
		return false, errors.New("rate limit store not configured")
	}

	key := strings.Join([]string{"rl", resource, id}, ":")
	count, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		// First hit in the window starts the clock.
		rdb.Expire(ctx, key, window)
	}
	return count <= int64(limit), nil
}

// RateLimit enforces limit requests per window, failing open when Redis is
// down. The optional name overrides the request path as the counter's
// resource. Counters key on the authenticated user when present, the remote
// IP otherwise.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, name ...string) fiber.Handler {
	return RateLimitWithPolicy(rdb, limit, window, FailOpen, name...)
}

// RateLimitWithPolicy is RateLimit with an explicit failure policy.
func RateLimitWithPolicy(rdb *redis.Client, limit int, window time.Duration, policy FailPolicy, name ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		resource := c.Path()
		if len(name) > 0 {
			resource = name[0]
		}

		allowed, err := CheckRateLimit(c.UserContext(), rdb, resource, limiterIdentity(c), limit, window)
		switch {
		case err != nil && policy == FailClosed:
			observability.Logger.Warn("rate limit fail-closed",
				"route", c.Path(), "resource", resource, "error", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "rate limit unavailable",
			})
		case err != nil:
			return c.Next()
		case !allowed:
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "rate limit exceeded",
			})
		}
		return c.Next()
	}
}

func limiterIdentity(c *fiber.Ctx) string {
	if uid := c.Locals("userID"); uid != nil {
		return fmt.Sprintf("user:%v", uid)
	}
	return "ip:" + c.IP()
}
