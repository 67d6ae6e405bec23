// Package middleware provides HTTP middleware for the API.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"gatehouse/internal/core/apperror"
	appctx "gatehouse/internal/core/context"
)

// TokenValidator interface for token validation.
type TokenValidator interface {
	ValidateToken(tokenString string) (*appctx.UserContext, error)
}

// Auth middleware validates bearer tokens and populates user context.
func Auth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Extract token from Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthenticated(c, "missing authorization header")
			return
		}

		// Check Bearer prefix
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortUnauthenticated(c, "invalid authorization header format")
			return
		}

		user, err := validator.ValidateToken(parts[1])
		if err != nil {
			abortUnauthenticated(c, "invalid token")
			return
		}

		// Add user to context
		ctx := appctx.WithUser(c.Request.Context(), user)
		c.Request = c.Request.WithContext(ctx)

		// Store in gin context for easy access
		c.Set("user_id", user.UserID)
		c.Set("org_id", user.OrgID)

		c.Next()
	}
}

// OptionalAuth validates token if present, but doesn't require it.
func OptionalAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.Next()
			return
		}

		user, err := validator.ValidateToken(parts[1])
		if err == nil && user != nil {
			ctx := appctx.WithUser(c.Request.Context(), user)
			c.Request = c.Request.WithContext(ctx)
			c.Set("user_id", user.UserID)
			c.Set("org_id", user.OrgID)
		}

		c.Next()
	}
}

func abortUnauthenticated(c *gin.Context, message string) {
	_ = c.Error(apperror.NewUnauthenticated(message))
	c.Abort()
}
