// backend/internal/middleware/ratelimit.go
package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/Ayash-Bera/miniplex/internal/ratelimit"
	"github.com/Ayash-Bera/miniplex/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RateLimiter caps requests per client IP over a sliding minute.
type RateLimiter struct {
	limiter *ratelimit.Limiter
}

// NewRateLimiter allows rate requests per minute per client. A rate of zero
// or less disables the limit.
func NewRateLimiter(rate int, logger *logrus.Logger) *RateLimiter {
	return &RateLimiter{limiter: ratelimit.New(rate, time.Minute, logger)}
}

// RateLimit middleware function
func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !rl.limiter.TryAcquire(ip) {
			retry := rl.limiter.TimeUntilAvailable(ip)
			c.Header("Retry-After", fmt.Sprintf("%d", int(math.Ceil(retry.Seconds()))))
			utils.ErrorResponse(c, http.StatusTooManyRequests, "Rate limit exceeded", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// Security middleware
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'self'")
		c.Next()
	}
}

// RequestID middleware adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Header("X-Request-ID", requestID)
		c.Set(utils.RequestIDKey, requestID)
		c.Next()
	}
}

// Cleanup prunes idle clients every interval until ctx ends.
func (rl *RateLimiter) Cleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.limiter.Prune()
		}
	}
}
