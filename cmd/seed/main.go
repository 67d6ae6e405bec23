// Package main provides a CLI tool for preparing the database and seeding
// demo override data.
package main

import (
	"context"
	"fmt"
	"os"

	"gatehouse/internal/core/id"
	"gatehouse/internal/domain/authz"
	"gatehouse/internal/infrastructure/storage/postgres"
	"gatehouse/internal/infrastructure/storage/postgres/authz_repo"
	"gatehouse/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	store := authz_repo.NewStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatalw("failed to ensure schema", "error", err)
	}
	log.Info("schema ensured")

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoOverrides(ctx, store, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

// seedDemoOverrides creates a demo organization with a few representative
// customizations: Members may assign maintenance requests, Viewers lose the
// report module, and one pilot user gets it back.
func seedDemoOverrides(ctx context.Context, store authz.OverrideStore, log *logger.Logger) error {
	orgID := os.Getenv("DEMO_ORG_ID")
	if orgID == "" {
		orgID = id.New().String()
	}
	seededBy := "seed-cli"

	err := store.MergeRoleOverride(ctx, orgID, authz.RoleMember, map[authz.Action]authz.Level{
		authz.ActionMaintenanceAssign: authz.LevelInvolved,
	}, seededBy)
	if err != nil {
		return fmt.Errorf("seed role override: %w", err)
	}

	err = store.UpsertModuleAccess(ctx, authz.ModuleAccess{
		OrgID:     orgID,
		Subject:   authz.SubjectRole,
		SubjectID: authz.RoleViewer.String(),
		ModuleID:  authz.ModuleReport,
		HasAccess: false,
		UpdatedBy: seededBy,
	})
	if err != nil {
		return fmt.Errorf("seed role module access: %w", err)
	}

	pilotUserID := os.Getenv("DEMO_PILOT_USER_ID")
	if pilotUserID == "" {
		pilotUserID = id.New().String()
	}

	err = store.UpsertModuleAccess(ctx, authz.ModuleAccess{
		OrgID:     orgID,
		Subject:   authz.SubjectUser,
		SubjectID: pilotUserID,
		ModuleID:  authz.ModuleReport,
		HasAccess: true,
		UpdatedBy: seededBy,
	})
	if err != nil {
		return fmt.Errorf("seed user module access: %w", err)
	}

	log.Infow("demo overrides seeded", "org_id", orgID, "pilot_user_id", pilotUserID)
	return nil
}
