package middleware

import (
	"github.com/gin-gonic/gin"

	"gatehouse/internal/core/apperror"
	"gatehouse/internal/domain/authz"
)

// RequireAction halts the request unless the authenticated user may perform
// the action. Ownership-sensitive levels without entity data pass through:
// the handler is obligated to re-check with concrete entity data before
// mutating anything.
func RequireAction(checker *authz.Checker, action authz.Action) gin.HandlerFunc {
	return guardHandler(checker.Guard(action, nil))
}

// RequireAnyAction halts the request unless at least one action is permitted.
func RequireAnyAction(checker *authz.Checker, actions ...authz.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		dec, err := checker.CheckAny(c.Request.Context(), authz.IdentityFromContext(c.Request.Context()), actions)
		if err != nil {
			abortGuard(c, apperror.NewInternal(err))
			return
		}
		if dec.Denied() {
			abortGuard(c, deniedToError(dec))
			return
		}
		c.Next()
	}
}

// RequireAllActions halts the request unless every action is permitted.
func RequireAllActions(checker *authz.Checker, actions ...authz.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		dec, err := checker.CheckAll(c.Request.Context(), authz.IdentityFromContext(c.Request.Context()), actions)
		if err != nil {
			abortGuard(c, apperror.NewInternal(err))
			return
		}
		if dec.Denied() {
			abortGuard(c, deniedToError(dec))
			return
		}
		c.Next()
	}
}

// RequireGuard adapts any composed authz.Guard into route middleware.
func RequireGuard(guard authz.Guard) gin.HandlerFunc {
	return guardHandler(guard)
}

func guardHandler(guard authz.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		if result := guard(c.Request.Context()); result != nil {
			abortGuard(c, result)
			return
		}
		c.Next()
	}
}

func abortGuard(c *gin.Context, err *apperror.AppError) {
	_ = c.Error(err)
	c.Abort()
}

func deniedToError(dec authz.Decision) *apperror.AppError {
	if dec.Reason == authz.ReasonUnauthenticated {
		return apperror.NewUnauthenticated("authentication required")
	}
	return apperror.NewForbidden(dec.Reason)
}
