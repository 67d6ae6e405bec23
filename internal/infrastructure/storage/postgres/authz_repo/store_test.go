package authz_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatehouse/internal/domain/authz"
)

func TestSelectRoleOverrideQuery(t *testing.T) {
	s := NewStore(nil)

	sql, args, err := s.selectRoleOverrideQuery("org-1", "member")
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT org_id, role, schema_version, levels, updated_by, updated_at "+
			"FROM role_overrides WHERE org_id = $1 AND role = $2",
		sql)
	assert.Equal(t, []any{"org-1", "member"}, args)
}

func TestSelectModuleAccessQuery(t *testing.T) {
	s := NewStore(nil)

	sql, args, err := s.selectModuleAccessQuery("org-1", "role", "viewer")
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT org_id, subject_type, subject_id, module_id, has_access, updated_by, updated_at "+
			"FROM module_access WHERE org_id = $1 AND subject_id = $2 AND subject_type = $3 "+
			"ORDER BY module_id",
		sql)
	assert.Equal(t, []any{"org-1", "viewer", "role"}, args)
}

func TestMergeRoleOverrideQuery(t *testing.T) {
	s := NewStore(nil)
	payload := []byte(`{"maintenance:assign":"all"}`)

	sql, args, err := s.mergeRoleOverrideQuery("org-1", "member", payload, "admin-1")
	require.NoError(t, err)

	// The merge must be a single conditional upsert concatenating jsonb, so
	// unlisted actions survive and no read-modify-write race exists.
	assert.Contains(t, sql, "INSERT INTO role_overrides")
	assert.Contains(t, sql, "ON CONFLICT (org_id, role) DO UPDATE SET levels = role_overrides.levels || EXCLUDED.levels")
	require.Len(t, args, 5)
	assert.Equal(t, "org-1", args[0])
	assert.Equal(t, "member", args[1])
	assert.Equal(t, authz.OverrideSchemaVersion, args[2])
	assert.Equal(t, payload, args[3])
	assert.Equal(t, "admin-1", args[4])
}

func TestClearRoleOverrideQuery(t *testing.T) {
	s := NewStore(nil)

	sql, args, err := s.clearRoleOverrideQuery("org-1", "member")
	require.NoError(t, err)
	assert.Equal(t,
		"UPDATE role_overrides SET levels = '{}'::jsonb, updated_at = now() "+
			"WHERE org_id = $1 AND role = $2",
		sql)
	assert.Equal(t, []any{"org-1", "member"}, args)
}

func TestUpsertModuleAccessQuery(t *testing.T) {
	s := NewStore(nil)

	sql, args, err := s.upsertModuleAccessQuery(authz.ModuleAccess{
		OrgID:     "org-1",
		Subject:   authz.SubjectUser,
		SubjectID: "user-1",
		ModuleID:  authz.ModuleReport,
		HasAccess: true,
		UpdatedBy: "admin-1",
	})
	require.NoError(t, err)
	assert.Contains(t, sql, "INSERT INTO module_access")
	assert.Contains(t, sql, "ON CONFLICT (org_id, subject_type, subject_id, module_id) DO UPDATE SET has_access = EXCLUDED.has_access")
	assert.Equal(t, []any{"org-1", "user", "user-1", "report", true, "admin-1"}, args)
}
