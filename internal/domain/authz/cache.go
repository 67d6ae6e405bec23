package authz

import (
	"context"
	"sync"
	"time"
)

// DefaultResolveTTL bounds how long a cached permission view may outlive the
// store. Permission changes are rare, so brief staleness is acceptable;
// admin writes additionally invalidate the owning organization outright.
const DefaultResolveTTL = 15 * time.Second

// CachedResolver decorates a ContextResolver with a short-TTL,
// identity-keyed cache. Degraded results are never cached so recovery from a
// store outage is immediate.
type CachedResolver struct {
	inner ContextResolver
	ttl   time.Duration

	mu      sync.RWMutex
	entries map[string]cacheEntry

	// now is swappable for tests.
	now func() time.Time
}

type cacheEntry struct {
	ec        *EffectiveContext
	expiresAt time.Time
}

// NewCachedResolver wraps inner with a TTL cache. A non-positive ttl uses
// DefaultResolveTTL.
func NewCachedResolver(inner ContextResolver, ttl time.Duration) *CachedResolver {
	if ttl <= 0 {
		ttl = DefaultResolveTTL
	}
	return &CachedResolver{
		inner:   inner,
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

func cacheKey(identity Identity) string {
	return identity.OrgID + "|" + identity.UserID + "|" + identity.Role.String()
}

// Resolve returns a cached view when fresh, otherwise delegates to the inner
// resolver and caches the result.
func (c *CachedResolver) Resolve(ctx context.Context, identity Identity) (*EffectiveContext, error) {
	key := cacheKey(identity)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && c.now().Before(entry.expiresAt) {
		return entry.ec, nil
	}

	ec, err := c.inner.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}
	if !ec.Degraded {
		c.mu.Lock()
		c.entries[key] = cacheEntry{ec: ec, expiresAt: c.now().Add(c.ttl)}
		c.mu.Unlock()
	}
	return ec, nil
}

// InvalidateOrg drops every cached view for an organization. Called on any
// override or module access write so a cache never outlives a write.
func (c *CachedResolver) InvalidateOrg(orgID string) {
	prefix := orgID + "|"
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(c.entries, key)
		}
	}
}

// Ensure interface compliance
var _ ContextResolver = (*CachedResolver)(nil)
