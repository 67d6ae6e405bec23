package authz

import (
	"context"

	appctx "gatehouse/internal/core/context"
)

// Identity is the request-scoped identity the engine decides for.
// It is produced once per request from the identity provider's claims and
// immutable for the request's lifetime.
type Identity struct {
	UserID string
	OrgID  string
	Role   Role
}

// IdentityFromContext builds an Identity from the authenticated user in ctx.
// Returns nil when no user is present. The raw role claim is mapped through
// RoleFromClaim, so unrecognized claims resolve to the lowest tier.
func IdentityFromContext(ctx context.Context) *Identity {
	user := appctx.GetUser(ctx)
	if user == nil {
		return nil
	}
	return &Identity{
		UserID: user.UserID,
		OrgID:  user.OrgID,
		Role:   RoleFromClaim(user.RoleClaim),
	}
}
