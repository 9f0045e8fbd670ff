package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shop-backend/internal/auth"
	"shop-backend/internal/util"

	"github.com/gin-gonic/gin"
)

const userIDKey = "user_id"

// TokenChecker reports whether a user's tokens have been bulk-invalidated
// (password change) and since when
type TokenChecker interface {
	TokensInvalidBefore(ctx context.Context, userID int64) (time.Time, bool, error)
}

// AuthMiddleware authenticates bearer tokens and injects the caller's user id
// into the request context. Handlers pass that id to services explicitly.
func AuthMiddleware(jwtService *auth.JWTService, checker TokenChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": "Authentication credentials were not provided.",
			})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": "Authorization header must be of the form: Bearer <token>",
			})
			return
		}

		claims, err := jwtService.ParseAccessToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": "Given token not valid for any token type",
			})
			return
		}

		// Reject tokens issued before the user's last password change
		if cutoff, ok, err := checker.TokensInvalidBefore(c.Request.Context(), claims.UserID); err == nil && ok {
			if claims.IssuedAt != nil && claims.IssuedAt.Time.Before(cutoff) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"detail": "Token has been revoked",
				})
				return
			}
		}

		c.Set(userIDKey, claims.UserID)
		c.Next()
	}
}

func currentUserID(c *gin.Context) int64 {
	return c.GetInt64(userIDKey)
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
