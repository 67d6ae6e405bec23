package authz

import "fmt"

// defaultMatrix is the per-role default permission table. Every role carries
// an entry for every action; completeness is verified at package load rather
// than by convention, so a new action cannot silently fall through to a
// missing lookup.
//
// The Owner row is generated: Owner is structurally maximal and resolves to
// "all" for every action.
var defaultMatrix = map[Role]map[Action]Level{
	RoleOwner: ownerRow(),

	RoleLead: {
		ActionDashboardView: LevelAll,

		ActionPropertyView:   LevelAll,
		ActionPropertyCreate: LevelAll,
		ActionPropertyUpdate: LevelAll,
		ActionPropertyDelete: LevelAll,

		ActionMaintenanceView:   LevelAll,
		ActionMaintenanceCreate: LevelAll,
		ActionMaintenanceUpdate: LevelAll,
		ActionMaintenanceAssign: LevelAll,
		ActionMaintenanceClose:  LevelAll,

		ActionMessageView:   LevelAll,
		ActionMessageSend:   LevelAll,
		ActionMessageDelete: LevelAll,

		ActionReportView:     LevelAll,
		ActionReportGenerate: LevelAll,
		ActionReportSchedule: LevelAll,

		ActionDocumentView:   LevelAll,
		ActionDocumentUpload: LevelAll,
		ActionDocumentDelete: LevelAll,

		ActionNotificationView:   LevelAll,
		ActionNotificationUpdate: LevelAll,
		ActionNotificationDelete: LevelAll,

		// Leads audit but do not administer: role and settings management
		// stay with Owner.
		ActionAdminViewAuditLog:   LevelAll,
		ActionAdminManageRoles:    LevelNone,
		ActionAdminManageMembers:  LevelAll,
		ActionAdminUpdateSettings: LevelNone,
	},

	RoleMember: {
		ActionDashboardView: LevelAll,

		ActionPropertyView:   LevelAll,
		ActionPropertyCreate: LevelAll,
		ActionPropertyUpdate: LevelOwn,
		ActionPropertyDelete: LevelOwn,

		ActionMaintenanceView:   LevelAll,
		ActionMaintenanceCreate: LevelAll,
		ActionMaintenanceUpdate: LevelInvolved,
		ActionMaintenanceAssign: LevelNone,
		ActionMaintenanceClose:  LevelInvolved,

		ActionMessageView:   LevelInvolved,
		ActionMessageSend:   LevelAll,
		ActionMessageDelete: LevelOwn,

		ActionReportView:     LevelAll,
		ActionReportGenerate: LevelOwn,
		ActionReportSchedule: LevelNone,

		ActionDocumentView:   LevelAll,
		ActionDocumentUpload: LevelAll,
		ActionDocumentDelete: LevelOwn,

		ActionNotificationView:   LevelOwn,
		ActionNotificationUpdate: LevelOwn,
		ActionNotificationDelete: LevelOwn,

		ActionAdminViewAuditLog:   LevelNone,
		ActionAdminManageRoles:    LevelNone,
		ActionAdminManageMembers:  LevelNone,
		ActionAdminUpdateSettings: LevelNone,
	},

	RoleViewer: {
		ActionDashboardView: LevelAll,

		ActionPropertyView:   LevelAll,
		ActionPropertyCreate: LevelNone,
		ActionPropertyUpdate: LevelNone,
		ActionPropertyDelete: LevelNone,

		ActionMaintenanceView:   LevelAll,
		ActionMaintenanceCreate: LevelNone,
		ActionMaintenanceUpdate: LevelNone,
		ActionMaintenanceAssign: LevelNone,
		ActionMaintenanceClose:  LevelNone,

		ActionMessageView:   LevelInvolved,
		ActionMessageSend:   LevelNone,
		ActionMessageDelete: LevelNone,

		ActionReportView:     LevelAll,
		ActionReportGenerate: LevelNone,
		ActionReportSchedule: LevelNone,

		ActionDocumentView:   LevelAll,
		ActionDocumentUpload: LevelNone,
		ActionDocumentDelete: LevelNone,

		// Viewers manage their own notifications even though every other
		// mutation is withheld; the read-only restriction does not extend
		// to a user's notification inbox.
		ActionNotificationView:   LevelOwn,
		ActionNotificationUpdate: LevelOwn,
		ActionNotificationDelete: LevelOwn,

		ActionAdminViewAuditLog:   LevelNone,
		ActionAdminManageRoles:    LevelNone,
		ActionAdminManageMembers:  LevelNone,
		ActionAdminUpdateSettings: LevelNone,
	},
}

func ownerRow() map[Action]Level {
	row := make(map[Action]Level, len(Actions))
	for _, a := range Actions {
		row[a] = LevelAll
	}
	return row
}

func init() {
	if err := validateMatrix(); err != nil {
		panic(err)
	}
}

// validateMatrix checks that every Role x Action pair has a valid entry and
// that no row carries entries outside the closed action set.
func validateMatrix() error {
	for _, role := range Roles {
		row, ok := defaultMatrix[role]
		if !ok {
			return fmt.Errorf("authz: default matrix missing row for role %s", role)
		}
		for _, action := range Actions {
			level, ok := row[action]
			if !ok {
				return fmt.Errorf("authz: default matrix missing %s entry for role %s", action, role)
			}
			if !level.Valid() {
				return fmt.Errorf("authz: default matrix has invalid level %q for %s/%s", level, role, action)
			}
		}
		for action := range row {
			if !action.Known() {
				return fmt.Errorf("authz: default matrix row %s has unknown action %q", role, action)
			}
		}
	}
	return nil
}

// DefaultLevel returns the static default level for a role/action pair.
// The bool is false only for unknown roles or actions, which indicates a
// programming error at the call site.
func DefaultLevel(role Role, action Action) (Level, bool) {
	row, ok := defaultMatrix[role]
	if !ok {
		return LevelNone, false
	}
	level, ok := row[action]
	if !ok {
		return LevelNone, false
	}
	return level, true
}
