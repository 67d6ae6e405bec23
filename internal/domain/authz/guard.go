package authz

import (
	"context"

	"gatehouse/internal/core/apperror"
)

// Guard is a composable halt-or-continue wrapper over the checker. A nil
// result means proceed; a non-nil result must halt the caller's operation.
// Guards read the acting identity from the request context and perform no
// I/O beyond the resolver fetch inside the check.
type Guard func(ctx context.Context) *apperror.AppError

// Guard builds a guard for one action. A pending ownership verification
// passes the guard: the caller is obligated to re-check with concrete
// entity data before mutating state (see RequireResolved).
func (c *Checker) Guard(action Action, entity *EntityContext) Guard {
	return func(ctx context.Context) *apperror.AppError {
		dec, err := c.Check(ctx, IdentityFromContext(ctx), action, entity)
		if err != nil {
			return apperror.NewInternal(err)
		}
		if dec.Denied() {
			return deniedError(dec).WithDetail("action", string(action))
		}
		return nil
	}
}

// RequireResolved builds a strict guard that additionally halts on a pending
// ownership verification, surfacing the internal OWNERSHIP_REQUIRED signal.
// Use at mutation points where entity data must already be known.
func (c *Checker) RequireResolved(action Action, entity *EntityContext) Guard {
	return func(ctx context.Context) *apperror.AppError {
		dec, err := c.Check(ctx, IdentityFromContext(ctx), action, entity)
		if err != nil {
			return apperror.NewInternal(err)
		}
		switch {
		case dec.Denied():
			return deniedError(dec).WithDetail("action", string(action))
		case dec.RequiresOwnershipCheck():
			return apperror.NewOwnershipRequired(dec.EntityType).
				WithDetail("action", string(action))
		}
		return nil
	}
}

// AllOf passes only when every guard passes, halting on the first failure.
func AllOf(guards ...Guard) Guard {
	return func(ctx context.Context) *apperror.AppError {
		return FirstFailure(ctx, guards...)
	}
}

// AnyOf passes when at least one guard passes. On total failure the first
// failure is returned with the others recorded as details.
func AnyOf(guards ...Guard) Guard {
	return func(ctx context.Context) *apperror.AppError {
		var first *apperror.AppError
		for _, guard := range guards {
			result := guard(ctx)
			if result == nil {
				return nil
			}
			if first == nil {
				first = result
			}
		}
		if first == nil {
			// Zero guards: nothing to satisfy.
			return nil
		}
		return first
	}
}

// FirstFailure runs guards sequentially and returns the first non-nil
// result, or nil when all pass.
func FirstFailure(ctx context.Context, guards ...Guard) *apperror.AppError {
	for _, guard := range guards {
		if result := guard(ctx); result != nil {
			return result
		}
	}
	return nil
}

func deniedError(dec Decision) *apperror.AppError {
	if dec.Reason == ReasonUnauthenticated {
		return apperror.NewUnauthenticated("authentication required")
	}
	return apperror.NewForbidden(dec.Reason)
}
