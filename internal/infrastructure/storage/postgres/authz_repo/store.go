// Package authz_repo provides the PostgreSQL implementation of the
// authorization override store.
package authz_repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"gatehouse/internal/domain/authz"
	"gatehouse/internal/infrastructure/storage/postgres"
)

var tracer = otel.Tracer("gatehouse/authz_repo")

const (
	roleOverridesTable = "role_overrides"
	moduleAccessTable  = "module_access"
)

// Store implements authz.OverrideStore on PostgreSQL. Sparse override merges
// are a single conditional upsert (jsonb concatenation), so write atomicity
// never depends on the engine.
type Store struct {
	pool *postgres.Pool
}

// NewStore creates a new override store.
func NewStore(pool *postgres.Pool) *Store {
	return &Store{pool: pool}
}

// builder returns a squirrel builder with PostgreSQL placeholder format.
func (s *Store) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

type roleOverrideRow struct {
	OrgID         string          `db:"org_id"`
	Role          string          `db:"role"`
	SchemaVersion int             `db:"schema_version"`
	Levels        json.RawMessage `db:"levels"`
	UpdatedBy     string          `db:"updated_by"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

type moduleAccessRow struct {
	OrgID       string    `db:"org_id"`
	SubjectType string    `db:"subject_type"`
	SubjectID   string    `db:"subject_id"`
	ModuleID    string    `db:"module_id"`
	HasAccess   bool      `db:"has_access"`
	UpdatedBy   string    `db:"updated_by"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// GetRoleOverride retrieves the override record for (org, role), or nil when
// none exists.
func (s *Store) GetRoleOverride(ctx context.Context, orgID string, role authz.Role) (*authz.RoleOverride, error) {
	ctx, span := tracer.Start(ctx, "authz_repo.get_role_override",
		otelAttrs(orgID, role.String())...)
	defer span.End()

	sql, args, err := s.selectRoleOverrideQuery(orgID, role.String())
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var row roleOverrideRow
	if err := pgxscan.Get(ctx, s.pool.Pool, &row, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query role override: %w", err)
	}

	levels := make(map[authz.Action]authz.Level)
	if len(row.Levels) > 0 {
		if err := json.Unmarshal(row.Levels, &levels); err != nil {
			return nil, fmt.Errorf("decode override levels: %w", err)
		}
	}

	return &authz.RoleOverride{
		OrgID:         row.OrgID,
		Role:          role,
		SchemaVersion: row.SchemaVersion,
		Levels:        levels,
		UpdatedBy:     row.UpdatedBy,
		UpdatedAt:     row.UpdatedAt,
	}, nil
}

// GetRoleModuleAccess retrieves role-tier module access records.
func (s *Store) GetRoleModuleAccess(ctx context.Context, orgID string, role authz.Role) ([]authz.ModuleAccess, error) {
	return s.listModuleAccess(ctx, orgID, authz.SubjectRole, role.String())
}

// GetUserModuleAccess retrieves user-tier module access records.
func (s *Store) GetUserModuleAccess(ctx context.Context, orgID, userID string) ([]authz.ModuleAccess, error) {
	return s.listModuleAccess(ctx, orgID, authz.SubjectUser, userID)
}

func (s *Store) listModuleAccess(ctx context.Context, orgID string, subject authz.SubjectType, subjectID string) ([]authz.ModuleAccess, error) {
	ctx, span := tracer.Start(ctx, "authz_repo.list_module_access",
		otelAttrs(orgID, subjectID)...)
	defer span.End()

	sql, args, err := s.selectModuleAccessQuery(orgID, string(subject), subjectID)
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var rows []moduleAccessRow
	if err := pgxscan.Select(ctx, s.pool.Pool, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("query module access: %w", err)
	}

	out := make([]authz.ModuleAccess, 0, len(rows))
	for _, row := range rows {
		out = append(out, authz.ModuleAccess{
			OrgID:     row.OrgID,
			Subject:   authz.SubjectType(row.SubjectType),
			SubjectID: row.SubjectID,
			ModuleID:  authz.ModuleID(row.ModuleID),
			HasAccess: row.HasAccess,
			UpdatedBy: row.UpdatedBy,
			UpdatedAt: row.UpdatedAt,
		})
	}
	return out, nil
}

// MergeRoleOverride upserts the given levels into the record's jsonb payload.
// Unlisted actions keep their current value; the whole merge is one
// conditional upsert.
func (s *Store) MergeRoleOverride(ctx context.Context, orgID string, role authz.Role, levels map[authz.Action]authz.Level, updatedBy string) error {
	ctx, span := tracer.Start(ctx, "authz_repo.merge_role_override",
		otelAttrs(orgID, role.String())...)
	defer span.End()

	payload, err := json.Marshal(levels)
	if err != nil {
		return fmt.Errorf("encode override levels: %w", err)
	}

	sql, args, err := s.mergeRoleOverrideQuery(orgID, role.String(), payload, updatedBy)
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := s.pool.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("merge role override: %w", err)
	}
	return nil
}

// ClearRoleOverride empties the action payload while preserving the record's
// metadata. A missing record is not an error.
func (s *Store) ClearRoleOverride(ctx context.Context, orgID string, role authz.Role) error {
	ctx, span := tracer.Start(ctx, "authz_repo.clear_role_override",
		otelAttrs(orgID, role.String())...)
	defer span.End()

	sql, args, err := s.clearRoleOverrideQuery(orgID, role.String())
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	if _, err := s.pool.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("clear role override: %w", err)
	}
	return nil
}

// UpsertModuleAccess writes one module access record.
func (s *Store) UpsertModuleAccess(ctx context.Context, rec authz.ModuleAccess) error {
	ctx, span := tracer.Start(ctx, "authz_repo.upsert_module_access",
		otelAttrs(rec.OrgID, rec.SubjectID)...)
	defer span.End()

	sql, args, err := s.upsertModuleAccessQuery(rec)
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := s.pool.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("upsert module access: %w", err)
	}
	return nil
}

// EnsureSchema creates the override tables when they do not exist yet.
// Used by the seed tool and integration setups.
func (s *Store) EnsureSchema(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "authz_repo.ensure_schema")
	defer span.End()

	statements := []string{
		`CREATE TABLE IF NOT EXISTS ` + roleOverridesTable + ` (
			org_id         text        NOT NULL,
			role           text        NOT NULL,
			schema_version int         NOT NULL DEFAULT 1,
			levels         jsonb       NOT NULL DEFAULT '{}'::jsonb,
			updated_by     text        NOT NULL DEFAULT '',
			updated_at     timestamptz NOT NULL DEFAULT now(),
			PRIMARY KEY (org_id, role)
		)`,
		`CREATE TABLE IF NOT EXISTS ` + moduleAccessTable + ` (
			org_id       text        NOT NULL,
			subject_type text        NOT NULL,
			subject_id   text        NOT NULL,
			module_id    text        NOT NULL,
			has_access   boolean     NOT NULL,
			updated_by   text        NOT NULL DEFAULT '',
			updated_at   timestamptz NOT NULL DEFAULT now(),
			PRIMARY KEY (org_id, subject_type, subject_id, module_id)
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// --- Query builders (pure; exercised directly by tests) ---

func (s *Store) selectRoleOverrideQuery(orgID, role string) (string, []any, error) {
	return s.builder().
		Select("org_id", "role", "schema_version", "levels", "updated_by", "updated_at").
		From(roleOverridesTable).
		Where(squirrel.Eq{"org_id": orgID, "role": role}).
		ToSql()
}

func (s *Store) selectModuleAccessQuery(orgID, subjectType, subjectID string) (string, []any, error) {
	return s.builder().
		Select("org_id", "subject_type", "subject_id", "module_id", "has_access", "updated_by", "updated_at").
		From(moduleAccessTable).
		Where(squirrel.Eq{
			"org_id":       orgID,
			"subject_type": subjectType,
			"subject_id":   subjectID,
		}).
		OrderBy("module_id").
		ToSql()
}

func (s *Store) mergeRoleOverrideQuery(orgID, role string, payload []byte, updatedBy string) (string, []any, error) {
	return s.builder().
		Insert(roleOverridesTable).
		Columns("org_id", "role", "schema_version", "levels", "updated_by", "updated_at").
		Values(orgID, role, authz.OverrideSchemaVersion, payload, updatedBy, squirrel.Expr("now()")).
		Suffix(`ON CONFLICT (org_id, role) DO UPDATE SET levels = ` + roleOverridesTable + `.levels || EXCLUDED.levels, updated_by = EXCLUDED.updated_by, updated_at = now()`).
		ToSql()
}

func (s *Store) clearRoleOverrideQuery(orgID, role string) (string, []any, error) {
	return s.builder().
		Update(roleOverridesTable).
		Set("levels", squirrel.Expr("'{}'::jsonb")).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"org_id": orgID, "role": role}).
		ToSql()
}

func (s *Store) upsertModuleAccessQuery(rec authz.ModuleAccess) (string, []any, error) {
	return s.builder().
		Insert(moduleAccessTable).
		Columns("org_id", "subject_type", "subject_id", "module_id", "has_access", "updated_by", "updated_at").
		Values(rec.OrgID, string(rec.Subject), rec.SubjectID, string(rec.ModuleID), rec.HasAccess, rec.UpdatedBy, squirrel.Expr("now()")).
		Suffix(`ON CONFLICT (org_id, subject_type, subject_id, module_id) DO UPDATE SET has_access = EXCLUDED.has_access, updated_by = EXCLUDED.updated_by, updated_at = now()`).
		ToSql()
}

func otelAttrs(orgID, subject string) []trace.SpanStartOption {
	return []trace.SpanStartOption{
		trace.WithAttributes(
			attribute.String("authz.org_id", orgID),
			attribute.String("authz.subject", subject),
		),
	}
}

// Ensure interface compliance
var _ authz.OverrideStore = (*Store)(nil)
