package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/Domenick1991/cinemabooking/internal/auth"
	"github.com/Domenick1991/cinemabooking/internal/logger"
	"github.com/gin-gonic/gin"
)

const adminIDKey = "admin_id"

// RequireAdmin accepts only requests carrying a valid HS256 bearer token and
// stores the admin id in the context.
func RequireAdmin(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := auth.ParseToken(secret, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		id, _ := claims.AdminID()
		c.Set(adminIDKey, id)
		c.Next()
	}
}

func adminID(c *gin.Context) int64 {
	return c.GetInt64(adminIDKey)
}

func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}
