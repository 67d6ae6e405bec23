package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "gatehouse/internal/core/context"
	"gatehouse/internal/domain/authz"
)

func newGuardRouter(t *testing.T, roleClaim string, guard gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(ErrorHandler())
	router.Use(func(c *gin.Context) {
		if roleClaim != "" {
			ctx := appctx.WithUser(c.Request.Context(), &appctx.UserContext{
				UserID: "user-1", OrgID: "org-1", RoleClaim: roleClaim,
			})
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	})
	router.GET("/guarded", guard, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func newGuardChecker() *authz.Checker {
	return authz.NewChecker(authz.NewResolver(authz.NewMemoryStore(), nil))
}

func get(router *gin.Engine) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRequireAction(t *testing.T) {
	checker := newGuardChecker()
	guard := RequireAction(checker, authz.ActionAdminManageRoles)

	assert.Equal(t, http.StatusOK, get(newGuardRouter(t, "owner", guard)).Code)
	assert.Equal(t, http.StatusForbidden, get(newGuardRouter(t, "lead", guard)).Code)
	assert.Equal(t, http.StatusForbidden, get(newGuardRouter(t, "viewer", guard)).Code)
	assert.Equal(t, http.StatusUnauthorized, get(newGuardRouter(t, "", guard)).Code)
}

func TestRequireAnyAction(t *testing.T) {
	checker := newGuardChecker()
	guard := RequireAnyAction(checker, authz.ActionAdminManageRoles, authz.ActionAdminViewAuditLog)

	// Lead fails manage_roles but passes view_audit_log.
	assert.Equal(t, http.StatusOK, get(newGuardRouter(t, "lead", guard)).Code)
	assert.Equal(t, http.StatusForbidden, get(newGuardRouter(t, "member", guard)).Code)
}

func TestRequireAllActions(t *testing.T) {
	checker := newGuardChecker()
	guard := RequireAllActions(checker, authz.ActionPropertyView, authz.ActionPropertyCreate)

	assert.Equal(t, http.StatusOK, get(newGuardRouter(t, "member", guard)).Code)
	assert.Equal(t, http.StatusForbidden, get(newGuardRouter(t, "viewer", guard)).Code)
}

func TestRequireGuard_OwnershipPendingPasses(t *testing.T) {
	checker := newGuardChecker()
	guard := RequireGuard(checker.Guard(authz.ActionPropertyUpdate, nil))

	// Member resolves to "own" without entity data; the route-level guard
	// lets it through for the handler to finish the check.
	assert.Equal(t, http.StatusOK, get(newGuardRouter(t, "member", guard)).Code)
}

func TestRequireGuard_StrictHidesOwnershipSignal(t *testing.T) {
	checker := newGuardChecker()
	guard := RequireGuard(checker.RequireResolved(authz.ActionPropertyUpdate, nil))

	rec := get(newGuardRouter(t, "member", guard))
	require.Equal(t, http.StatusForbidden, rec.Code)
	// The internal ownership-required code is remapped before rendering.
	assert.NotContains(t, rec.Body.String(), "OWNERSHIP_REQUIRED")
	assert.Contains(t, rec.Body.String(), "FORBIDDEN")
}
