package middleware

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const rateLimitPrefix = "rl:"

// KeyFunc picks the bucket a request is counted against.
type KeyFunc func(c *fiber.Ctx) string

// ByIP buckets requests by client address.
func ByIP(c *fiber.Ctx) string { return c.IP() }

// RateLimit allows at most maxPerMin requests per bucket per minute, counted in
// Redis under rl:<scope>:<key>. Without Redis, or when Redis errors, requests
// pass through.
func RateLimit(cache *redis.Client, scope string, maxPerMin int, key KeyFunc) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 30
	}
	if key == nil {
		key = ByIP
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next()
		}
		bucket := rateLimitPrefix + scope + ":" + key(c)
		ctx := c.UserContext()
		cnt, err := cache.Incr(ctx, bucket).Result()
		if err != nil {
			return c.Next()
		}
		if cnt == 1 {
			cache.Expire(ctx, bucket, time.Minute)
		}
		if cnt > int64(maxPerMin) {
			c.Set(fiber.HeaderRetryAfter, "60")
			return fiber.NewError(http.StatusTooManyRequests, "too many requests, try again later")
		}
		return c.Next()
	}
}
