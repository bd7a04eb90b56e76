package middleware

import (
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/supakorn-kn/go-book-store/apis"
	"github.com/supakorn-kn/go-book-store/errors"
	"github.com/supakorn-kn/go-book-store/ratelimit"
)

const (
	RateLimitHeader          = "X-RateLimit-Limit"
	RateLimitRemainingHeader = "X-RateLimit-Remaining"
	RetryAfterHeader         = "Retry-After"
)

// RateLimit counts requests per client IP. When the limiter itself fails the request goes through.
func RateLimit(limiter ratelimit.Limiter) gin.HandlerFunc {

	return func(ctx *gin.Context) {

		result, err := limiter.Allow(ctx.Request.Context(), ctx.ClientIP())
		if err != nil {

			slog.Warn("Rate limiter is unavailable, request is allowed",
				"client_ip", ctx.ClientIP(),
				"request_id", ctx.GetString(apis.RequestIDContextKey),
				"error", err,
			)

			ctx.Next()
			return
		}

		ctx.Header(RateLimitHeader, strconv.Itoa(result.Limit))
		ctx.Header(RateLimitRemainingHeader, strconv.Itoa(result.Remaining))

		if !result.Allowed {

			retryAfter := time.Duration(math.Ceil(result.RetryAfter.Seconds())) * time.Second
			ctx.Header(RetryAfterHeader, strconv.Itoa(int(retryAfter.Seconds())))

			apis.AbortWithError(ctx, errors.RateLimitExceededError.New(retryAfter))
			return
		}

		ctx.Next()
	}
}
