package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mishmeshmosh/backend/internal/models"
	"github.com/redis/go-redis/v9"
)

// RateLimitMiddleware caps requests per (path, client IP) over a fixed
// window, backed by a Redis counter. Signing and pledge endpoints sit behind
// it so a stuck client cannot hammer deed writes. Redis trouble fails open:
// rate limiting is protection, not an availability dependency.
func RateLimitMiddleware(rdb *redis.Client, limit int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := fmt.Sprintf("rl:%s:%s", c.Path(), c.IP())

		ctx := c.UserContext()
		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			return c.Next()
		}
		if count == 1 {
			rdb.Expire(ctx, key, window)
		}

		if count > int64(limit) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "too many requests, slow down",
				"code":  models.CodeRateLimited,
			})
		}

		return c.Next()
	}
}
