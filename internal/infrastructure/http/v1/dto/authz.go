// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"gatehouse/internal/domain/authz"
)

// --- Decision API ---

// EntityContextRequest carries optional entity ownership data for a check.
type EntityContextRequest struct {
	EntityType      string   `json:"entityType,omitempty"`
	EntityID        string   `json:"entityId,omitempty"`
	OwnerID         string   `json:"ownerId,omitempty"`
	InvolvedUserIDs []string `json:"involvedUserIds,omitempty"`
}

// ToEntityContext converts the request payload to the domain type.
// Returns nil when no entity data was supplied at all.
func (e *EntityContextRequest) ToEntityContext() *authz.EntityContext {
	if e == nil {
		return nil
	}
	return &authz.EntityContext{
		EntityType:      e.EntityType,
		EntityID:        e.EntityID,
		OwnerID:         e.OwnerID,
		InvolvedUserIDs: e.InvolvedUserIDs,
	}
}

// CheckRequest asks whether the authenticated user may perform one action.
type CheckRequest struct {
	Action string                `json:"action" binding:"required"`
	Entity *EntityContextRequest `json:"entity,omitempty"`
}

// CheckBatchRequest asks about a set of actions (all-of or any-of).
type CheckBatchRequest struct {
	Actions []string `json:"actions" binding:"required,min=1"`
}

// DecisionResponse is the wire shape of an authorization decision.
// A pending ownership verification reports allowed=true with
// requiresOwnershipCheck=true; it is not an unconditional allow and callers
// must re-check with entity data before mutating state.
type DecisionResponse struct {
	Allowed                bool   `json:"allowed"`
	Reason                 string `json:"reason,omitempty"`
	RequiresOwnershipCheck bool   `json:"requiresOwnershipCheck"`
}

// NewDecisionResponse converts a domain decision to its wire shape.
func NewDecisionResponse(dec authz.Decision) DecisionResponse {
	return DecisionResponse{
		Allowed:                !dec.Denied(),
		Reason:                 dec.Reason,
		RequiresOwnershipCheck: dec.RequiresOwnershipCheck(),
	}
}

// ModulesResponse lists the modules visible to the authenticated user.
type ModulesResponse struct {
	Modules []string `json:"modules"`
}

// NewModulesResponse converts a module set to its wire shape.
func NewModulesResponse(set authz.ModuleSet) ModulesResponse {
	sorted := set.Sorted()
	modules := make([]string, len(sorted))
	for i, m := range sorted {
		modules[i] = string(m)
	}
	return ModulesResponse{Modules: modules}
}

// --- Admin API ---

// OverrideUpdateRequest sets one action's level for the (org, role) in the
// route path.
type OverrideUpdateRequest struct {
	Action string `json:"action" binding:"required"`
	Level  string `json:"level" binding:"required"`
}

// ModuleAccessRequest grants or withdraws one module for a role or user.
type ModuleAccessRequest struct {
	SubjectType string `json:"subjectType" binding:"required,oneof=role user"`
	SubjectID   string `json:"subjectId" binding:"required"`
	ModuleID    string `json:"moduleId" binding:"required"`
	HasAccess   *bool  `json:"hasAccess" binding:"required"`
}
