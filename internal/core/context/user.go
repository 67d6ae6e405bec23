// Package context provides request-scoped values extraction.
package context

import (
	"context"
)

// UserContext contains authenticated user information for the current request.
// RoleClaim carries the raw role string from the identity provider; the authz
// layer maps it to an internal role, falling back to the lowest tier for
// unknown claims.
type UserContext struct {
	UserID    string
	OrgID     string
	Email     string
	RoleClaim string
	SessionID string
}

type userContextKey struct{}

// WithUser adds UserContext to context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUser returns UserContext from context.
func GetUser(ctx context.Context) *UserContext {
	if v, ok := ctx.Value(userContextKey{}).(*UserContext); ok {
		return v
	}
	return nil
}

// GetUserID returns user ID from context or empty string.
func GetUserID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return ""
}

// GetOrgID returns organization ID from context or empty string.
func GetOrgID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.OrgID
	}
	return ""
}
