package authz

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"gatehouse/pkg/logger"
)

var tracer = otel.Tracer("gatehouse/authz")

// EffectiveContext is the merged permission view for one identity: the
// organization's overrides layered over the static defaults, plus the module
// access records the module resolver needs for the lowest tier.
type EffectiveContext struct {
	Identity Identity

	// Overrides is the organization's sparse action-level override for the
	// identity's role. Nil when the organization has none.
	Overrides map[Action]Level

	// RoleModules and UserModules are only populated for the lowest tier;
	// upper tiers resolve modules from the fixed tier rule.
	RoleModules []ModuleAccess
	UserModules []ModuleAccess

	// Degraded is set when the override store was unreachable and the
	// context fell back to static defaults (fail closed).
	Degraded bool
}

// LevelFor returns the effective level for an action: the override entry if
// present, otherwise the default matrix entry. The bool is false only for
// unknown role/action pairs.
func (ec *EffectiveContext) LevelFor(action Action) (Level, bool) {
	if level, ok := ec.Overrides[action]; ok {
		return level, true
	}
	return DefaultLevel(ec.Identity.Role, action)
}

// ContextResolver produces an EffectiveContext for an identity.
type ContextResolver interface {
	Resolve(ctx context.Context, identity Identity) (*EffectiveContext, error)
}

// Resolver fetches override data from the store and merges it with the
// static defaults. Store fetches are issued concurrently; a store failure
// degrades to the static defaults rather than propagating, but caller
// cancellation aborts the resolve outright.
type Resolver struct {
	store OverrideStore
	log   *logger.Logger
}

// NewResolver creates a resolver over the given store.
func NewResolver(store OverrideStore, log *logger.Logger) *Resolver {
	if log == nil {
		log = logger.Default()
	}
	return &Resolver{store: store, log: log.WithComponent("authz.resolver")}
}

type overrideResult struct {
	rec *RoleOverride
	err error
}

type modulesResult struct {
	recs []ModuleAccess
	err  error
}

// Resolve fetches the identity's override data and returns the merged view.
func (r *Resolver) Resolve(ctx context.Context, identity Identity) (*EffectiveContext, error) {
	ctx, span := tracer.Start(ctx, "authz.resolve")
	span.SetAttributes(
		attribute.String("authz.org_id", identity.OrgID),
		attribute.String("authz.role", identity.Role.String()),
	)
	defer span.End()

	overrideCh := make(chan overrideResult, 1)
	go func() {
		rec, err := r.store.GetRoleOverride(ctx, identity.OrgID, identity.Role)
		overrideCh <- overrideResult{rec: rec, err: err}
	}()

	// Module access records only matter for the lowest tier.
	var roleModCh, userModCh chan modulesResult
	if identity.Role == RoleViewer {
		roleModCh = make(chan modulesResult, 1)
		userModCh = make(chan modulesResult, 1)
		go func() {
			recs, err := r.store.GetRoleModuleAccess(ctx, identity.OrgID, identity.Role)
			roleModCh <- modulesResult{recs: recs, err: err}
		}()
		go func() {
			recs, err := r.store.GetUserModuleAccess(ctx, identity.OrgID, identity.UserID)
			userModCh <- modulesResult{recs: recs, err: err}
		}()
	}

	ec := &EffectiveContext{Identity: identity}

	override := <-overrideCh
	if err := r.noteFetchError(ctx, ec, "role_override", override.err); err != nil {
		return nil, err
	}
	if override.err == nil && override.rec != nil && len(override.rec.Levels) > 0 {
		ec.Overrides = override.rec.Levels
	}

	if roleModCh != nil {
		roleMods := <-roleModCh
		if err := r.noteFetchError(ctx, ec, "role_module_access", roleMods.err); err != nil {
			return nil, err
		}
		if roleMods.err == nil {
			ec.RoleModules = roleMods.recs
		}

		userMods := <-userModCh
		if err := r.noteFetchError(ctx, ec, "user_module_access", userMods.err); err != nil {
			return nil, err
		}
		if userMods.err == nil {
			ec.UserModules = userMods.recs
		}
	}

	return ec, nil
}

// noteFetchError classifies a store fetch error. Cancellation propagates so
// the caller never acts on a partial view; any other failure marks the
// context degraded and the resolve continues on static defaults.
func (r *Resolver) noteFetchError(ctx context.Context, ec *EffectiveContext, fetch string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	ec.Degraded = true
	r.log.WithContext(ctx).Warnw("override store unavailable, falling back to static defaults",
		"fetch", fetch,
		"org_id", ec.Identity.OrgID,
		"role", ec.Identity.Role.String(),
		"error", err,
	)
	return nil
}

// Ensure interface compliance
var _ ContextResolver = (*Resolver)(nil)
