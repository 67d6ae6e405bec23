package authz

import (
	"context"

	"gatehouse/internal/core/apperror"
	"gatehouse/pkg/logger"
)

// Invalidator drops cached permission views for an organization.
// Implemented by CachedResolver; nil disables invalidation.
type Invalidator interface {
	InvalidateOrg(orgID string)
}

// Admin is the write path for organization overrides and module access.
// Every write validates against the closed taxonomy before touching the
// store and invalidates the organization's cached views afterwards.
type Admin struct {
	store OverrideStore
	cache Invalidator
	log   *logger.Logger
}

// NewAdmin creates the admin service. cache may be nil.
func NewAdmin(store OverrideStore, cache Invalidator, log *logger.Logger) *Admin {
	if log == nil {
		log = logger.Default()
	}
	return &Admin{store: store, cache: cache, log: log.WithComponent("authz.admin")}
}

// UpdateActionOverride sets one action's level for (org, role), sparse-merged
// into the existing override record. Owner targets are rejected: Owner is
// structurally maximal and non-overridable.
func (a *Admin) UpdateActionOverride(ctx context.Context, orgID string, role Role, action Action, level Level, updatedBy string) error {
	rec := &RoleOverride{
		OrgID:         orgID,
		Role:          role,
		SchemaVersion: OverrideSchemaVersion,
		Levels:        map[Action]Level{action: level},
	}
	if err := rec.Validate(); err != nil {
		return err
	}

	if err := a.store.MergeRoleOverride(ctx, orgID, role, rec.Levels, updatedBy); err != nil {
		return apperror.NewStoreUnavailable(err)
	}
	a.invalidate(orgID)

	a.log.WithContext(ctx).Infow("action override updated",
		"org_id", orgID,
		"role", role.String(),
		"action", string(action),
		"level", string(level),
	)
	return nil
}

// ResetOverrides removes the action-override payload for (org, role),
// preserving any other override metadata on the record.
func (a *Admin) ResetOverrides(ctx context.Context, orgID string, role Role) error {
	if orgID == "" {
		return apperror.NewValidation("organization id is required")
	}
	if !role.Valid() {
		return apperror.NewValidation("unknown role").WithDetail("role", role.String())
	}
	if role == RoleOwner {
		return apperror.NewValidation("owner role permissions cannot be overridden")
	}

	if err := a.store.ClearRoleOverride(ctx, orgID, role); err != nil {
		return apperror.NewStoreUnavailable(err)
	}
	a.invalidate(orgID)

	a.log.WithContext(ctx).Infow("action overrides reset",
		"org_id", orgID,
		"role", role.String(),
	)
	return nil
}

// UpdateModuleAccess grants or withdraws one module for a role tier or a
// single user. Owner-role targets are rejected.
func (a *Admin) UpdateModuleAccess(ctx context.Context, rec ModuleAccess) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	if err := a.store.UpsertModuleAccess(ctx, rec); err != nil {
		return apperror.NewStoreUnavailable(err)
	}
	a.invalidate(rec.OrgID)

	a.log.WithContext(ctx).Infow("module access updated",
		"org_id", rec.OrgID,
		"subject_type", string(rec.Subject),
		"subject_id", rec.SubjectID,
		"module", string(rec.ModuleID),
		"has_access", rec.HasAccess,
	)
	return nil
}

func (a *Admin) invalidate(orgID string) {
	if a.cache != nil {
		a.cache.InvalidateOrg(orgID)
	}
}
