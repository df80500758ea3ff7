// api/middleware/auth_middleware.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/sql-sketcher-backend/internal/auth" // Import internal auth logic and errors
)

// Context keys set by AuthMiddleware.
const (
	ContextUserID = "userId"
	ContextEmail  = "email"
)

// AuthMiddleware verifies the bearer token and stores its user id and email on the context.
// Failures are attached to the context and answered by ErrorHandler.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			_ = c.Error(auth.ErrTokenMissing)
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			_ = c.Error(auth.ErrTokenMalformed)
			c.Abort()
			return
		}

		claims, err := auth.ValidateJWT(strings.TrimSpace(parts[1]), jwtSecret)
		if err != nil {
			customLog.Printf("AuthMiddleware: Token validation failed: %v", err)
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)

		c.Next()
	}
}
