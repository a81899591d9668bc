package serverutils

import (
	"strconv"
	"sync/atomic"
	"time"

	"deepresearch-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// NewRateLimiter builds a per-IP fixed-window limiter. On rejection it
// writes the same error envelope as every other handler, plus a
// Retry-After header, instead of fiber's bare-text default. It also
// logs every rejection at Warn with the running total of requests this
// limiter has rejected since it was built, the same defensive-logging-without-a-
// metrics-exporter idiom the notification hub uses for a full send buffer.
func NewRateLimiter(route string, max int, window time.Duration, log logger.ILogger) fiber.Handler {
	var rejected int64
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		LimitReached: func(ctx *fiber.Ctx) error {
			count := atomic.AddInt64(&rejected, 1)
			log.Warn("ratelimit", "request rejected", map[string]interface{}{
				"route":             route,
				"rejected_total":    count,
				"client_ip":         ctx.IP(),
			})
			ctx.Set("Retry-After", strconv.Itoa(int(window.Seconds())))
			return ctx.Status(fiber.StatusTooManyRequests).JSON(ErrorEnvelope{
				Error:   "rate_limit",
				Message: "too many requests, slow down",
			})
		},
	})
}
