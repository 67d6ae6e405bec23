package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "gatehouse/internal/core/context"
	"gatehouse/internal/domain/identity"
)

func newAuthRouter(t *testing.T, validator TokenValidator) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(ErrorHandler())
	router.Use(Auth(validator))
	router.GET("/whoami", func(c *gin.Context) {
		user := appctx.GetUser(c.Request.Context())
		require.NotNil(t, user)
		c.JSON(http.StatusOK, gin.H{"user_id": user.UserID, "org_id": user.OrgID, "role": user.RoleClaim})
	})
	return router
}

func TestAuth_ValidToken(t *testing.T) {
	svc := identity.NewJWTService(identity.DefaultJWTConfig("test-secret"))
	router := newAuthRouter(t, svc)

	token, _, err := svc.GenerateAccessToken("user-1", "org-1", "u@example.com", "lead")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "user-1", body["user_id"])
	assert.Equal(t, "org-1", body["org_id"])
	assert.Equal(t, "lead", body["role"])
}

func TestAuth_Rejections(t *testing.T) {
	svc := identity.NewJWTService(identity.DefaultJWTConfig("test-secret"))
	router := newAuthRouter(t, svc)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic dXNlcjpwYXNz"},
		{"malformed token", "Bearer not-a-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestOptionalAuth_PassesWithoutToken(t *testing.T) {
	svc := identity.NewJWTService(identity.DefaultJWTConfig("test-secret"))
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(OptionalAuth(svc))
	router.GET("/open", func(c *gin.Context) {
		if appctx.GetUser(c.Request.Context()) == nil {
			c.JSON(http.StatusOK, gin.H{"anonymous": true})
			return
		}
		c.JSON(http.StatusOK, gin.H{"anonymous": false})
	})

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "true")
}
