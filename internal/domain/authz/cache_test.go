package authz

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingResolver counts inner resolves and can hand out degraded views.
type countingResolver struct {
	calls    atomic.Int64
	degraded bool
}

func (r *countingResolver) Resolve(ctx context.Context, identity Identity) (*EffectiveContext, error) {
	r.calls.Add(1)
	return &EffectiveContext{Identity: identity, Degraded: r.degraded}, nil
}

func TestCachedResolver_ServesWithinTTL(t *testing.T) {
	inner := &countingResolver{}
	cached := NewCachedResolver(inner, time.Minute)
	ctx := context.Background()
	identity := Identity{UserID: "user-1", OrgID: "org-1", Role: RoleMember}

	for i := 0; i < 5; i++ {
		_, err := cached.Resolve(ctx, identity)
		require.NoError(t, err)
	}
	assert.Equal(t, int64(1), inner.calls.Load())

	// A different identity misses.
	_, err := cached.Resolve(ctx, Identity{UserID: "user-2", OrgID: "org-1", Role: RoleMember})
	require.NoError(t, err)
	assert.Equal(t, int64(2), inner.calls.Load())
}

func TestCachedResolver_Expiry(t *testing.T) {
	inner := &countingResolver{}
	cached := NewCachedResolver(inner, 15*time.Second)

	clock := time.Now()
	cached.now = func() time.Time { return clock }

	ctx := context.Background()
	identity := Identity{UserID: "user-1", OrgID: "org-1", Role: RoleMember}

	_, err := cached.Resolve(ctx, identity)
	require.NoError(t, err)

	clock = clock.Add(10 * time.Second)
	_, err = cached.Resolve(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, int64(1), inner.calls.Load())

	clock = clock.Add(6 * time.Second)
	_, err = cached.Resolve(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, int64(2), inner.calls.Load())
}

func TestCachedResolver_InvalidateOrg(t *testing.T) {
	inner := &countingResolver{}
	cached := NewCachedResolver(inner, time.Minute)
	ctx := context.Background()

	orgA := Identity{UserID: "user-1", OrgID: "org-a", Role: RoleMember}
	orgB := Identity{UserID: "user-1", OrgID: "org-b", Role: RoleMember}

	_, err := cached.Resolve(ctx, orgA)
	require.NoError(t, err)
	_, err = cached.Resolve(ctx, orgB)
	require.NoError(t, err)
	require.Equal(t, int64(2), inner.calls.Load())

	cached.InvalidateOrg("org-a")

	_, err = cached.Resolve(ctx, orgA)
	require.NoError(t, err)
	assert.Equal(t, int64(3), inner.calls.Load())

	// org-b is untouched.
	_, err = cached.Resolve(ctx, orgB)
	require.NoError(t, err)
	assert.Equal(t, int64(3), inner.calls.Load())
}

func TestCachedResolver_DegradedNotCached(t *testing.T) {
	inner := &countingResolver{degraded: true}
	cached := NewCachedResolver(inner, time.Minute)
	ctx := context.Background()
	identity := Identity{UserID: "user-1", OrgID: "org-1", Role: RoleMember}

	_, err := cached.Resolve(ctx, identity)
	require.NoError(t, err)
	_, err = cached.Resolve(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, int64(2), inner.calls.Load())

	// Once the store recovers the next result is cached again.
	inner.degraded = false
	_, err = cached.Resolve(ctx, identity)
	require.NoError(t, err)
	_, err = cached.Resolve(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, int64(3), inner.calls.Load())
}

func TestCachedResolver_WriteThenReadSeesNewData(t *testing.T) {
	store := NewMemoryStore()
	cached := NewCachedResolver(NewResolver(store, nil), time.Minute)
	checker := NewChecker(cached)
	admin := NewAdmin(store, cached, nil)
	ctx := context.Background()

	dec, err := checker.Check(ctx, member("org-1"), ActionMaintenanceAssign, nil)
	require.NoError(t, err)
	require.True(t, dec.Denied())

	// The admin write invalidates the cached view, so the next check within
	// the TTL already reflects it.
	require.NoError(t, admin.UpdateActionOverride(ctx, "org-1", RoleMember, ActionMaintenanceAssign, LevelAll, "admin-1"))

	dec, err = checker.Check(ctx, member("org-1"), ActionMaintenanceAssign, nil)
	require.NoError(t, err)
	assert.True(t, dec.Allowed())
}
