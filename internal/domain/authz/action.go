package authz

import "strings"

// Action is a namespaced permission unit of the form "<module>:<verb>".
// The action set is closed and enumerable; there are no wildcard actions
// at runtime.
type Action string

const (
	ActionDashboardView Action = "dashboard:view"

	ActionPropertyView   Action = "property:view"
	ActionPropertyCreate Action = "property:create"
	ActionPropertyUpdate Action = "property:update"
	ActionPropertyDelete Action = "property:delete"

	ActionMaintenanceView   Action = "maintenance:view"
	ActionMaintenanceCreate Action = "maintenance:create"
	ActionMaintenanceUpdate Action = "maintenance:update"
	ActionMaintenanceAssign Action = "maintenance:assign"
	ActionMaintenanceClose  Action = "maintenance:close"

	ActionMessageView   Action = "message:view"
	ActionMessageSend   Action = "message:send"
	ActionMessageDelete Action = "message:delete"

	ActionReportView     Action = "report:view"
	ActionReportGenerate Action = "report:generate"
	ActionReportSchedule Action = "report:schedule"

	ActionDocumentView   Action = "document:view"
	ActionDocumentUpload Action = "document:upload"
	ActionDocumentDelete Action = "document:delete"

	ActionNotificationView   Action = "notification:view"
	ActionNotificationUpdate Action = "notification:update"
	ActionNotificationDelete Action = "notification:delete"

	ActionAdminViewAuditLog   Action = "admin:view_audit_log"
	ActionAdminManageRoles    Action = "admin:manage_roles"
	ActionAdminManageMembers  Action = "admin:manage_members"
	ActionAdminUpdateSettings Action = "admin:update_settings"
)

// Actions lists the complete, closed action set.
var Actions = []Action{
	ActionDashboardView,
	ActionPropertyView,
	ActionPropertyCreate,
	ActionPropertyUpdate,
	ActionPropertyDelete,
	ActionMaintenanceView,
	ActionMaintenanceCreate,
	ActionMaintenanceUpdate,
	ActionMaintenanceAssign,
	ActionMaintenanceClose,
	ActionMessageView,
	ActionMessageSend,
	ActionMessageDelete,
	ActionReportView,
	ActionReportGenerate,
	ActionReportSchedule,
	ActionDocumentView,
	ActionDocumentUpload,
	ActionDocumentDelete,
	ActionNotificationView,
	ActionNotificationUpdate,
	ActionNotificationDelete,
	ActionAdminViewAuditLog,
	ActionAdminManageRoles,
	ActionAdminManageMembers,
	ActionAdminUpdateSettings,
}

var knownActions = func() map[Action]struct{} {
	m := make(map[Action]struct{}, len(Actions))
	for _, a := range Actions {
		m[a] = struct{}{}
	}
	return m
}()

// Known reports whether the action is part of the closed action set.
func (a Action) Known() bool {
	_, ok := knownActions[a]
	return ok
}

// Module returns the feature module this action belongs to.
func (a Action) Module() ModuleID {
	name, _, _ := strings.Cut(string(a), ":")
	return ModuleID(name)
}

// Verb returns the operation part of the action.
func (a Action) Verb() string {
	_, verb, _ := strings.Cut(string(a), ":")
	return verb
}
