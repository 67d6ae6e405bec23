// Package authz provides the multi-tenant authorization engine: ranked roles,
// a default role/action permission matrix, per-organization overrides,
// ownership and involvement checks, and module visibility resolution.
package authz

import (
	"fmt"

	"gatehouse/internal/core/apperror"
)

// Role is a ranked access tier. Higher values can manage lower ones.
type Role int

const (
	RoleViewer Role = iota + 1
	RoleMember
	RoleLead
	RoleOwner
)

// Roles lists all roles in ascending rank order.
var Roles = []Role{RoleViewer, RoleMember, RoleLead, RoleOwner}

var roleNames = map[Role]string{
	RoleViewer: "viewer",
	RoleMember: "member",
	RoleLead:   "lead",
	RoleOwner:  "owner",
}

var rolesByName = map[string]Role{
	"viewer": RoleViewer,
	"member": RoleMember,
	"lead":   RoleLead,
	"owner":  RoleOwner,
}

// String returns the wire name of the role.
func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// Valid reports whether the role is one of the known tiers.
func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

// AtLeast reports whether this role ranks at or above other.
// Used for "can X manage Y" comparisons.
func (r Role) AtLeast(other Role) bool {
	return r >= other
}

// CanManage reports whether this role outranks other strictly.
func (r Role) CanManage(other Role) bool {
	return r > other
}

// RoleFromClaim maps a raw role claim from the identity provider to a Role.
// Unknown claims fall back to the lowest-privilege role (fail closed).
func RoleFromClaim(claim string) Role {
	if role, ok := rolesByName[claim]; ok {
		return role
	}
	return RoleViewer
}

// ParseRole converts a wire name to a Role, rejecting unknown names.
// Used on admin write paths where silent fallback would mask caller bugs.
func ParseRole(s string) (Role, error) {
	if role, ok := rolesByName[s]; ok {
		return role, nil
	}
	return 0, apperror.NewValidation(fmt.Sprintf("unknown role %q", s)).
		WithDetail("role", s)
}
