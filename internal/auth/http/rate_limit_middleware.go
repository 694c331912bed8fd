package http

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/allisson/secretgate/internal/logging"
	"github.com/allisson/secretgate/internal/ratelimit"
)

// RateLimitResponse is the body of a 429 answer.
type RateLimitResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// RateLimitMiddleware admits at most the configured number of requests per client IP and
// window for the given category. It runs before authentication so rejected tokens still
// count against the caller.
//
// Returns:
//   - 429 Too Many Requests with a Retry-After header (whole seconds, rounded up)
//   - 400 Bad Request when no usable caller identity can be derived
//   - Continues otherwise, with X-RateLimit-Remaining set
func RateLimitMiddleware(
	limiter *ratelimit.Limiter,
	category ratelimit.Category,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := c.ClientIP()

		decision, err := limiter.Allow(category, caller)
		if err != nil {
			if errors.Is(err, ratelimit.ErrInvalidCaller) {
				c.AbortWithStatusJSON(http.StatusBadRequest, RateLimitResponse{
					Error:   "bad_request",
					Message: "Caller identity could not be determined",
				})
				return
			}
			logger.Error("rate limiter failed",
				slog.String("category", string(category)),
				slog.Any("error", err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, RateLimitResponse{
				Error:   "internal_error",
				Message: "An internal error occurred",
			})
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))

		if !decision.Allowed {
			retryAfter := int(math.Ceil(decision.RetryAfter.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}

			logger.Debug("rate limit exceeded",
				slog.String("category", string(category)),
				logging.MaskedAttr("caller", caller),
				slog.Int("retry_after", retryAfter))

			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, RateLimitResponse{
				Success: false,
				Error:   "rate_limited",
				Message: "Too many requests. Please retry after the specified delay.",
			})
			return
		}

		c.Next()
	}
}
