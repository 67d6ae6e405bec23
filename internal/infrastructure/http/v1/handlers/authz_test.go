package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "gatehouse/internal/core/context"
	"gatehouse/internal/domain/authz"
	"gatehouse/internal/infrastructure/http/v1/dto"
	"gatehouse/internal/infrastructure/http/v1/middleware"
)

// injectUser stands in for the auth middleware in tests.
func injectUser(user *appctx.UserContext) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user != nil {
			c.Request = c.Request.WithContext(appctx.WithUser(c.Request.Context(), user))
		}
		c.Next()
	}
}

func newTestAPI(t *testing.T, user *appctx.UserContext) (*gin.Engine, *authz.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := authz.NewMemoryStore()
	checker := authz.NewChecker(authz.NewResolver(store, nil))
	admin := authz.NewAdmin(store, nil, nil)

	router := gin.New()
	router.Use(middleware.ErrorHandler())
	router.Use(injectUser(user))

	base := NewBaseHandler()
	authzHandler := NewAuthzHandler(base, checker)
	router.POST("/authz/check", authzHandler.Check)
	router.POST("/authz/check-all", authzHandler.CheckAll)
	router.POST("/authz/check-any", authzHandler.CheckAny)
	router.GET("/authz/modules", authzHandler.Modules)

	adminHandler := NewAdminHandler(base, admin)
	router.PUT("/admin/orgs/:orgId/roles/:role/overrides", adminHandler.UpdateOverride)
	router.DELETE("/admin/orgs/:orgId/roles/:role/overrides", adminHandler.ResetOverrides)
	router.PUT("/admin/orgs/:orgId/module-access", adminHandler.UpdateModuleAccess)

	return router, store
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func memberUser() *appctx.UserContext {
	return &appctx.UserContext{UserID: "user-1", OrgID: "org-1", RoleClaim: "member"}
}

func TestCheckEndpoint(t *testing.T) {
	router, _ := newTestAPI(t, memberUser())

	rec := doJSON(t, router, http.MethodPost, "/authz/check", dto.CheckRequest{
		Action: "property:create",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.DecisionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Allowed)
	assert.False(t, resp.RequiresOwnershipCheck)
}

func TestCheckEndpoint_OwnershipPending(t *testing.T) {
	router, _ := newTestAPI(t, memberUser())

	rec := doJSON(t, router, http.MethodPost, "/authz/check", dto.CheckRequest{
		Action: "property:update",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.DecisionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Allowed)
	assert.True(t, resp.RequiresOwnershipCheck)
}

func TestCheckEndpoint_WithEntity(t *testing.T) {
	router, _ := newTestAPI(t, memberUser())

	rec := doJSON(t, router, http.MethodPost, "/authz/check", dto.CheckRequest{
		Action: "property:update",
		Entity: &dto.EntityContextRequest{EntityType: "property", OwnerID: "someone-else"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.DecisionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Allowed)
	assert.NotEmpty(t, resp.Reason)
}

func TestCheckEndpoint_UnknownAction(t *testing.T) {
	router, _ := newTestAPI(t, memberUser())

	rec := doJSON(t, router, http.MethodPost, "/authz/check", dto.CheckRequest{
		Action: "property:teleport",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckEndpoint_Unauthenticated(t *testing.T) {
	router, _ := newTestAPI(t, nil)

	rec := doJSON(t, router, http.MethodPost, "/authz/check", dto.CheckRequest{
		Action: "property:view",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.DecisionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Allowed)
	assert.Equal(t, "unauthenticated", resp.Reason)
}

func TestCheckBatchEndpoints(t *testing.T) {
	router, _ := newTestAPI(t, memberUser())

	rec := doJSON(t, router, http.MethodPost, "/authz/check-all", dto.CheckBatchRequest{
		Actions: []string{"property:view", "maintenance:assign"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.DecisionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Allowed)

	rec = doJSON(t, router, http.MethodPost, "/authz/check-any", dto.CheckBatchRequest{
		Actions: []string{"maintenance:assign", "property:view"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Allowed)

	// Empty batches fail request validation.
	rec = doJSON(t, router, http.MethodPost, "/authz/check-all", dto.CheckBatchRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestModulesEndpoint(t *testing.T) {
	router, _ := newTestAPI(t, &appctx.UserContext{UserID: "user-1", OrgID: "org-1", RoleClaim: "viewer"})

	rec := doJSON(t, router, http.MethodGet, "/authz/modules", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.ModulesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.ElementsMatch(t, []string{"dashboard", "notification", "property", "report"}, resp.Modules)
}

func TestAdminEndpoints(t *testing.T) {
	user := &appctx.UserContext{UserID: "admin-1", OrgID: "org-1", RoleClaim: "owner"}
	router, store := newTestAPI(t, user)

	rec := doJSON(t, router, http.MethodPut, "/admin/orgs/org-1/roles/member/overrides", dto.OverrideUpdateRequest{
		Action: "maintenance:assign",
		Level:  "all",
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	stored, err := store.GetRoleOverride(t.Context(), "org-1", authz.RoleMember)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, authz.LevelAll, stored.Levels[authz.ActionMaintenanceAssign])
	assert.Equal(t, "admin-1", stored.UpdatedBy)

	rec = doJSON(t, router, http.MethodDelete, "/admin/orgs/org-1/roles/member/overrides", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	stored, err = store.GetRoleOverride(t.Context(), "org-1", authz.RoleMember)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Empty(t, stored.Levels)
}

func TestAdminEndpoints_Rejections(t *testing.T) {
	user := &appctx.UserContext{UserID: "admin-1", OrgID: "org-1", RoleClaim: "owner"}
	router, _ := newTestAPI(t, user)

	// Owner targets are non-overridable.
	rec := doJSON(t, router, http.MethodPut, "/admin/orgs/org-1/roles/owner/overrides", dto.OverrideUpdateRequest{
		Action: "property:view",
		Level:  "none",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown role names are rejected, not silently defaulted.
	rec = doJSON(t, router, http.MethodPut, "/admin/orgs/org-1/roles/superuser/overrides", dto.OverrideUpdateRequest{
		Action: "property:view",
		Level:  "all",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPut, "/admin/orgs/org-1/roles/member/overrides", dto.OverrideUpdateRequest{
		Action: "property:view",
		Level:  "sometimes",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminModuleAccessEndpoint(t *testing.T) {
	user := &appctx.UserContext{UserID: "admin-1", OrgID: "org-1", RoleClaim: "owner"}
	router, store := newTestAPI(t, user)

	hasAccess := false
	rec := doJSON(t, router, http.MethodPut, "/admin/orgs/org-1/module-access", dto.ModuleAccessRequest{
		SubjectType: "role",
		SubjectID:   "viewer",
		ModuleID:    "report",
		HasAccess:   &hasAccess,
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	recs, err := store.GetRoleModuleAccess(t.Context(), "org-1", authz.RoleViewer)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.False(t, recs[0].HasAccess)

	// Missing hasAccess fails binding.
	rec = doJSON(t, router, http.MethodPut, "/admin/orgs/org-1/module-access", map[string]any{
		"subjectType": "role",
		"subjectId":   "viewer",
		"moduleId":    "report",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
