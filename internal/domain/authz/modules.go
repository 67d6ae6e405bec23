package authz

import "context"

// Modules computes the set of feature modules visible to the identity.
//
// The three upper tiers follow a fixed rule and ignore overrides entirely:
// Owner and Lead always see the full set, Member the full set minus admin.
// Only the lowest tier is override-driven, with strict precedence
// user-level > role-level > static default, per module.
func (c *Checker) Modules(ctx context.Context, identity *Identity) (ModuleSet, error) {
	if identity == nil {
		return NewModuleSet(), nil
	}

	switch identity.Role {
	case RoleOwner, RoleLead:
		return NewModuleSet(AllModules...), nil

	case RoleMember:
		set := NewModuleSet(AllModules...)
		set.Remove(ModuleAdmin)
		return set, nil

	case RoleViewer:
		ec, err := c.resolver.Resolve(ctx, *identity)
		if err != nil {
			return nil, err
		}
		return viewerModules(ec), nil

	default:
		// Unknown roles never reach here through RoleFromClaim, which fails
		// closed to Viewer; treat a raw invalid role as no visibility.
		return NewModuleSet(), nil
	}
}

// viewerModules layers the lowest tier's access records over the static
// default set. For each module the highest-precedence layer that mentions it
// wins: a user record beats a role record beats the static default.
func viewerModules(ec *EffectiveContext) ModuleSet {
	roleAccess := latestBySubject(ec.RoleModules)
	userAccess := latestBySubject(ec.UserModules)
	static := NewModuleSet(DefaultViewerModules...)

	set := NewModuleSet()
	for _, module := range AllModules {
		if has, ok := userAccess[module]; ok {
			if has {
				set.Add(module)
			}
			continue
		}
		if has, ok := roleAccess[module]; ok {
			if has {
				set.Add(module)
			}
			continue
		}
		if static.Contains(module) {
			set.Add(module)
		}
	}
	return set
}

// latestBySubject collapses access records to one verdict per module,
// keeping the most recently updated record when duplicates appear.
func latestBySubject(recs []ModuleAccess) map[ModuleID]bool {
	verdicts := make(map[ModuleID]bool, len(recs))
	seen := make(map[ModuleID]ModuleAccess, len(recs))
	for _, rec := range recs {
		if prev, ok := seen[rec.ModuleID]; ok && prev.UpdatedAt.After(rec.UpdatedAt) {
			continue
		}
		seen[rec.ModuleID] = rec
		verdicts[rec.ModuleID] = rec.HasAccess
	}
	return verdicts
}
