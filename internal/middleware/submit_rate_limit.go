package middleware

import (
	"encoding/hex"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"
)

const submitRateLimitPrefix = "rl:checkout-submit:"

// SubmitRateLimit caps checkout submissions per client IP per minute using
// Redis. Client addresses are hashed before they become keys. Without Redis
// the limiter is a no-op, and Redis errors fail open.
func SubmitRateLimit(cache *redis.Client, maxPerMin int) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 10
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next()
		}
		sum := blake2b.Sum256([]byte(c.IP()))
		key := submitRateLimitPrefix + hex.EncodeToString(sum[:16])

		cnt, err := cache.Incr(c.UserContext(), key).Result()
		if err != nil {
			return c.Next()
		}
		if cnt == 1 {
			cache.Expire(c.UserContext(), key, time.Minute)
		}
		if cnt > int64(maxPerMin) {
			return fiber.NewError(http.StatusTooManyRequests, "too many checkout attempts, try again later")
		}
		return c.Next()
	}
}
