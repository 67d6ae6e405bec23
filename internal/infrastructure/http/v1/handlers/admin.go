package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gatehouse/internal/domain/authz"
	"gatehouse/internal/infrastructure/http/v1/dto"
)

// AdminHandler exposes the override administration API.
// Routes are guarded by admin:manage_roles; validation of roles, actions,
// levels and the Owner rejection happens in the admin service.
type AdminHandler struct {
	*BaseHandler
	admin *authz.Admin
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(base *BaseHandler, admin *authz.Admin) *AdminHandler {
	return &AdminHandler{BaseHandler: base, admin: admin}
}

// UpdateOverride sets one action's level for (org, role).
// PUT /api/v1/admin/orgs/:orgId/roles/:role/overrides
func (h *AdminHandler) UpdateOverride(c *gin.Context) {
	var req dto.OverrideUpdateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	role, err := authz.ParseRole(c.Param("role"))
	if err != nil {
		h.Error(c, err)
		return
	}

	err = h.admin.UpdateActionOverride(
		c.Request.Context(),
		c.Param("orgId"),
		role,
		authz.Action(req.Action),
		authz.Level(req.Level),
		h.GetUserID(c),
	)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ResetOverrides removes the action-override payload for (org, role).
// DELETE /api/v1/admin/orgs/:orgId/roles/:role/overrides
func (h *AdminHandler) ResetOverrides(c *gin.Context) {
	role, err := authz.ParseRole(c.Param("role"))
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.admin.ResetOverrides(c.Request.Context(), c.Param("orgId"), role); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// UpdateModuleAccess grants or withdraws one module for a role or user.
// PUT /api/v1/admin/orgs/:orgId/module-access
func (h *AdminHandler) UpdateModuleAccess(c *gin.Context) {
	var req dto.ModuleAccessRequest
	if !h.BindJSON(c, &req) {
		return
	}

	rec := authz.ModuleAccess{
		OrgID:     c.Param("orgId"),
		Subject:   authz.SubjectType(req.SubjectType),
		SubjectID: req.SubjectID,
		ModuleID:  authz.ModuleID(req.ModuleID),
		HasAccess: *req.HasAccess,
		UpdatedBy: h.GetUserID(c),
	}

	if err := h.admin.UpdateModuleAccess(c.Request.Context(), rec); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
