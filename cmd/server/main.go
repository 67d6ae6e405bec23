// Package main is the entry point for the Gatehouse authorization server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gatehouse/internal/domain/authz"
	"gatehouse/internal/domain/identity"
	v1 "gatehouse/internal/infrastructure/http/v1"
	"gatehouse/internal/infrastructure/storage/postgres"
	"gatehouse/internal/infrastructure/storage/postgres/authz_repo"
	"gatehouse/pkg/logger"
)

func main() {
	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting gatehouse server")

	// --- Database connection ---
	poolCfg := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
	if maxConns := getEnvInt("DB_MAX_CONNS", 25); maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	// --- Override store ---
	store := authz_repo.NewStore(pool)
	if getEnv("DB_ENSURE_SCHEMA", "false") == "true" {
		if err := store.EnsureSchema(ctx); err != nil {
			log.Fatalw("failed to ensure schema", "error", err)
		}
		log.Info("database schema ensured")
	}

	// --- Authorization engine ---
	resolveTTL := getEnvDuration("RESOLVE_CACHE_TTL", authz.DefaultResolveTTL)
	cache := authz.NewCachedResolver(authz.NewResolver(store, log), resolveTTL)
	checker := authz.NewChecker(cache)
	admin := authz.NewAdmin(store, cache, log)

	log.Infow("authorization engine initialized", "resolve_cache_ttl", resolveTTL)

	// --- JWT Service ---
	jwtSecret := getEnv("JWT_SECRET", "your-secret-key-change-in-production")
	jwtService := identity.NewJWTService(identity.DefaultJWTConfig(jwtSecret))

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:           pool,
		Logger:         log,
		TokenValidator: jwtService,
		Checker:        checker,
		Admin:          admin,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
