// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"gatehouse/internal/domain/authz"
	"gatehouse/internal/infrastructure/http/v1/handlers"
	"gatehouse/internal/infrastructure/http/v1/middleware"
	"gatehouse/internal/infrastructure/storage/postgres"
	"gatehouse/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Pool is the database connection pool (for health checks)
	Pool *postgres.Pool

	// Logger for request logging
	Logger *logger.Logger

	// TokenValidator for bearer token validation
	TokenValidator middleware.TokenValidator

	// Checker answers authorization questions
	Checker *authz.Checker

	// Admin manages per-organization overrides
	Admin *authz.Admin
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	base := handlers.NewBaseHandler()

	// API v1 - everything below requires an authenticated user
	protected := router.Group("/api/v1")
	protected.Use(middleware.Auth(cfg.TokenValidator))
	{
		authzHandler := handlers.NewAuthzHandler(base, cfg.Checker)
		decisions := protected.Group("/authz")
		{
			decisions.POST("/check", authzHandler.Check)
			decisions.POST("/check-all", authzHandler.CheckAll)
			decisions.POST("/check-any", authzHandler.CheckAny)
			decisions.GET("/modules", authzHandler.Modules)
		}

		adminHandler := handlers.NewAdminHandler(base, cfg.Admin)
		admin := protected.Group("/admin")
		admin.Use(middleware.RequireAction(cfg.Checker, authz.ActionAdminManageRoles))
		{
			admin.PUT("/orgs/:orgId/roles/:role/overrides", adminHandler.UpdateOverride)
			admin.DELETE("/orgs/:orgId/roles/:role/overrides", adminHandler.ResetOverrides)
			admin.PUT("/orgs/:orgId/module-access", adminHandler.UpdateModuleAccess)
		}
	}

	return router
}
