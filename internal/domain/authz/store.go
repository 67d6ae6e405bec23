package authz

import (
	"context"
	"fmt"
	"time"

	"gatehouse/internal/core/apperror"
)

// OverrideSchemaVersion is the current schema version for stored override
// records. Records are validated on write, not only on read, so a malformed
// override cannot silently degrade to defaults later.
const OverrideSchemaVersion = 1

// RoleOverride is an organization-level deviation from the default matrix for
// one role. Levels is sparse: unlisted actions fall back to the matrix.
type RoleOverride struct {
	OrgID         string           `db:"org_id"`
	Role          Role             `db:"-"`
	SchemaVersion int              `db:"schema_version"`
	Levels        map[Action]Level `db:"-"`
	UpdatedBy     string           `db:"updated_by"`
	UpdatedAt     time.Time        `db:"updated_at"`
}

// Validate checks the record against the closed taxonomy.
// Owner is structurally maximal and can never carry an override.
func (o *RoleOverride) Validate() error {
	if o.OrgID == "" {
		return apperror.NewValidation("organization id is required")
	}
	if !o.Role.Valid() {
		return apperror.NewValidation(fmt.Sprintf("unknown role %q", o.Role)).
			WithDetail("role", o.Role.String())
	}
	if o.Role == RoleOwner {
		return apperror.NewValidation("owner role permissions cannot be overridden")
	}
	if o.SchemaVersion != OverrideSchemaVersion {
		return apperror.NewValidation(fmt.Sprintf("unsupported override schema version %d", o.SchemaVersion)).
			WithDetail("supported_version", OverrideSchemaVersion)
	}
	for action, level := range o.Levels {
		if !action.Known() {
			return apperror.NewValidation(fmt.Sprintf("unknown action %q", action)).
				WithDetail("action", string(action))
		}
		if !level.Valid() {
			return apperror.NewValidation(fmt.Sprintf("unknown permission level %q", level)).
				WithDetail("action", string(action)).
				WithDetail("level", string(level))
		}
	}
	return nil
}

// SubjectType distinguishes the two tiers of module access records.
type SubjectType string

const (
	SubjectRole SubjectType = "role"
	SubjectUser SubjectType = "user"
)

// Valid reports whether the subject type is known.
func (s SubjectType) Valid() bool {
	return s == SubjectRole || s == SubjectUser
}

// ModuleAccess grants or withdraws visibility of one module for a role tier
// or a single user within an organization. Only meaningful for the lowest
// role tier; upper tiers resolve modules from the fixed tier rule.
type ModuleAccess struct {
	OrgID     string      `db:"org_id"`
	Subject   SubjectType `db:"subject_type"`
	SubjectID string      `db:"subject_id"`
	ModuleID  ModuleID    `db:"module_id"`
	HasAccess bool        `db:"has_access"`
	UpdatedBy string      `db:"updated_by"`
	UpdatedAt time.Time   `db:"updated_at"`
}

// Validate checks the record against the closed taxonomy.
func (m *ModuleAccess) Validate() error {
	if m.OrgID == "" {
		return apperror.NewValidation("organization id is required")
	}
	if !m.Subject.Valid() {
		return apperror.NewValidation(fmt.Sprintf("unknown subject type %q", m.Subject))
	}
	if m.SubjectID == "" {
		return apperror.NewValidation("subject id is required")
	}
	if m.Subject == SubjectRole {
		role, err := ParseRole(m.SubjectID)
		if err != nil {
			return err
		}
		if role == RoleOwner {
			return apperror.NewValidation("owner role module access cannot be overridden")
		}
	}
	if !m.ModuleID.Known() {
		return apperror.NewValidation(fmt.Sprintf("unknown module %q", m.ModuleID)).
			WithDetail("module", string(m.ModuleID))
	}
	return nil
}

// OverrideStore is the read/write contract for the persistent override store.
// The engine treats it as an injected dependency; write atomicity (single
// conditional upsert or read-merge-write inside a transaction) is the
// store's responsibility.
type OverrideStore interface {
	// GetRoleOverride returns the organization's override record for a role,
	// or nil when none exists.
	GetRoleOverride(ctx context.Context, orgID string, role Role) (*RoleOverride, error)

	// GetRoleModuleAccess returns role-tier module access records.
	GetRoleModuleAccess(ctx context.Context, orgID string, role Role) ([]ModuleAccess, error)

	// GetUserModuleAccess returns user-tier module access records.
	GetUserModuleAccess(ctx context.Context, orgID, userID string) ([]ModuleAccess, error)

	// MergeRoleOverride upserts the given action levels into the
	// organization's override record for a role. The merge is sparse: only
	// the listed actions change.
	MergeRoleOverride(ctx context.Context, orgID string, role Role, levels map[Action]Level, updatedBy string) error

	// ClearRoleOverride removes the action-override payload for a role,
	// preserving the record's other metadata.
	ClearRoleOverride(ctx context.Context, orgID string, role Role) error

	// UpsertModuleAccess writes one module access record.
	UpsertModuleAccess(ctx context.Context, rec ModuleAccess) error
}
