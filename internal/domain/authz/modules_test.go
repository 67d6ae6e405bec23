package authz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func viewer(orgID, userID string) *Identity {
	return &Identity{UserID: userID, OrgID: orgID, Role: RoleViewer}
}

func TestModules_UpperTiers(t *testing.T) {
	checker, store := newTestChecker(t)
	ctx := context.Background()

	// Upper tiers ignore access records entirely; plant one to prove it.
	err := store.UpsertModuleAccess(ctx, ModuleAccess{
		OrgID:     "org-1",
		Subject:   SubjectRole,
		SubjectID: RoleMember.String(),
		ModuleID:  ModuleProperty,
		HasAccess: false,
		UpdatedBy: "admin-1",
	})
	require.NoError(t, err)

	owner := &Identity{UserID: "u", OrgID: "org-1", Role: RoleOwner}
	set, err := checker.Modules(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, set, len(AllModules))

	lead := &Identity{UserID: "u", OrgID: "org-1", Role: RoleLead}
	set, err = checker.Modules(ctx, lead)
	require.NoError(t, err)
	assert.Len(t, set, len(AllModules))

	mem := &Identity{UserID: "u", OrgID: "org-1", Role: RoleMember}
	set, err = checker.Modules(ctx, mem)
	require.NoError(t, err)
	assert.Len(t, set, len(AllModules)-1)
	assert.False(t, set.Contains(ModuleAdmin))
	assert.True(t, set.Contains(ModuleProperty))
}

func TestModules_ViewerDefaults(t *testing.T) {
	checker, _ := newTestChecker(t)

	set, err := checker.Modules(context.Background(), viewer("org-1", "user-1"))
	require.NoError(t, err)

	assert.Len(t, set, len(DefaultViewerModules))
	for _, m := range DefaultViewerModules {
		assert.True(t, set.Contains(m), "default set should contain %s", m)
	}
	assert.False(t, set.Contains(ModuleAdmin))
}

func TestModules_ViewerRoleRecords(t *testing.T) {
	checker, store := newTestChecker(t)
	ctx := context.Background()

	// Withdraw one default, grant one extra at the role tier.
	for _, rec := range []ModuleAccess{
		{OrgID: "org-1", Subject: SubjectRole, SubjectID: RoleViewer.String(), ModuleID: ModuleReport, HasAccess: false},
		{OrgID: "org-1", Subject: SubjectRole, SubjectID: RoleViewer.String(), ModuleID: ModuleDocument, HasAccess: true},
	} {
		require.NoError(t, store.UpsertModuleAccess(ctx, rec))
	}

	set, err := checker.Modules(ctx, viewer("org-1", "user-1"))
	require.NoError(t, err)

	assert.False(t, set.Contains(ModuleReport))
	assert.True(t, set.Contains(ModuleDocument))
	assert.True(t, set.Contains(ModuleDashboard))
}

func TestModules_UserRecordBeatsRoleRecord(t *testing.T) {
	checker, store := newTestChecker(t)
	ctx := context.Background()

	for _, rec := range []ModuleAccess{
		{OrgID: "org-1", Subject: SubjectRole, SubjectID: RoleViewer.String(), ModuleID: ModuleReport, HasAccess: false},
		{OrgID: "org-1", Subject: SubjectUser, SubjectID: "pilot", ModuleID: ModuleReport, HasAccess: true},
	} {
		require.NoError(t, store.UpsertModuleAccess(ctx, rec))
	}

	set, err := checker.Modules(ctx, viewer("org-1", "pilot"))
	require.NoError(t, err)
	assert.True(t, set.Contains(ModuleReport))

	// Other viewers in the organization still see the role-tier withdrawal.
	set, err = checker.Modules(ctx, viewer("org-1", "user-2"))
	require.NoError(t, err)
	assert.False(t, set.Contains(ModuleReport))
}

func TestModules_UserRecordCanWithdraw(t *testing.T) {
	checker, store := newTestChecker(t)
	ctx := context.Background()

	err := store.UpsertModuleAccess(ctx, ModuleAccess{
		OrgID: "org-1", Subject: SubjectUser, SubjectID: "user-1",
		ModuleID: ModuleDashboard, HasAccess: false,
	})
	require.NoError(t, err)

	set, err := checker.Modules(ctx, viewer("org-1", "user-1"))
	require.NoError(t, err)
	assert.False(t, set.Contains(ModuleDashboard))
}

func TestModules_NilIdentity(t *testing.T) {
	checker, _ := newTestChecker(t)

	set, err := checker.Modules(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, set)
}
