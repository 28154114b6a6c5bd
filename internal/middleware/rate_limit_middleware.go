// internal/middleware/rate_limit_middleware.go
package middleware

import (
	"context"
	"net/http"
	"time"

	"coldlist-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateChecker counts a request and reports whether it is within the limit.
type RateChecker interface {
	CheckAPIRateLimit(ctx context.Context, identityID int64, endpoint string, maxRequests int64, window time.Duration) (bool, error)
}

// RateLimit limits each identity per route. It must run after Auth. Limiter
// failures let the request through.
func RateLimit(checker RateChecker, maxRequests int64, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identityID, ok := GetIdentityID(c)
		if !ok {
			c.Next()
			return
		}

		endpoint := c.Request.Method + " " + c.FullPath()
		allowed, err := checker.CheckAPIRateLimit(c.Request.Context(), identityID, endpoint, maxRequests, window)
		if err != nil {
			logger.Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !allowed {
			response.Error(c, http.StatusTooManyRequests, "too many requests, slow down", nil)
			return
		}

		c.Next()
	}
}
