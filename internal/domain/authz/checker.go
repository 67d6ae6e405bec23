package authz

import (
	"context"
	"fmt"
	"strings"
)

// Checker evaluates actions against an identity's effective permission view.
// Checks are pure functions of (identity, fetched override data, entity
// context): no engine state is mutated during a check, so identical inputs
// against an unchanged store yield identical decisions.
type Checker struct {
	resolver ContextResolver
}

// NewChecker creates a checker over the given resolver.
func NewChecker(resolver ContextResolver) *Checker {
	return &Checker{resolver: resolver}
}

// Check evaluates one action. Expected authorization outcomes (deny, allow,
// pending ownership verification) are reported through the Decision; the
// error return is reserved for caller cancellation and for programming
// errors such as an action outside the closed set.
func (c *Checker) Check(ctx context.Context, identity *Identity, action Action, entity *EntityContext) (Decision, error) {
	if identity == nil {
		return denied(ReasonUnauthenticated), nil
	}
	if !action.Known() {
		return Decision{}, fmt.Errorf("authz: unknown action %q", action)
	}

	ec, err := c.resolver.Resolve(ctx, *identity)
	if err != nil {
		return Decision{}, err
	}
	return evaluate(ec, identity, action, entity)
}

// CheckAll evaluates a logical AND over actions, short-circuiting on the
// first deny. Overrides are resolved once for the whole set.
func (c *Checker) CheckAll(ctx context.Context, identity *Identity, actions []Action) (Decision, error) {
	if identity == nil {
		return denied(ReasonUnauthenticated), nil
	}
	ec, err := c.resolveFor(ctx, identity, actions)
	if err != nil {
		return Decision{}, err
	}

	pending := false
	for _, action := range actions {
		dec, err := evaluate(ec, identity, action, nil)
		if err != nil {
			return Decision{}, err
		}
		if dec.Denied() {
			return denied(fmt.Sprintf("denied action: %s", action)), nil
		}
		if dec.RequiresOwnershipCheck() {
			pending = true
		}
	}
	if pending {
		return needsOwnership(""), nil
	}
	return allowed(), nil
}

// CheckAny evaluates a logical OR over actions. On total failure the reason
// lists every attempted action.
func (c *Checker) CheckAny(ctx context.Context, identity *Identity, actions []Action) (Decision, error) {
	if identity == nil {
		return denied(ReasonUnauthenticated), nil
	}
	ec, err := c.resolveFor(ctx, identity, actions)
	if err != nil {
		return Decision{}, err
	}

	pending := false
	for _, action := range actions {
		dec, err := evaluate(ec, identity, action, nil)
		if err != nil {
			return Decision{}, err
		}
		if dec.Allowed() {
			return Decision{Outcome: OutcomeAllowed, Reason: fmt.Sprintf("allowed by: %s", action)}, nil
		}
		if dec.RequiresOwnershipCheck() {
			pending = true
		}
	}
	if pending {
		return needsOwnership(""), nil
	}
	attempted := make([]string, len(actions))
	for i, a := range actions {
		attempted[i] = string(a)
	}
	return denied(fmt.Sprintf("none of the attempted actions are permitted: %s", strings.Join(attempted, ", "))), nil
}

func (c *Checker) resolveFor(ctx context.Context, identity *Identity, actions []Action) (*EffectiveContext, error) {
	for _, action := range actions {
		if !action.Known() {
			return nil, fmt.Errorf("authz: unknown action %q", action)
		}
	}
	return c.resolver.Resolve(ctx, *identity)
}

// evaluate applies the decision algorithm to one action against a resolved
// context. entity may be nil for broad checks.
func evaluate(ec *EffectiveContext, identity *Identity, action Action, entity *EntityContext) (Decision, error) {
	level, ok := ec.LevelFor(action)
	if !ok {
		return Decision{}, fmt.Errorf("authz: no permission level for %s/%s", identity.Role, action)
	}

	switch level {
	case LevelNone:
		return denied(fmt.Sprintf("role %s is not permitted to %s", identity.Role, action)), nil

	case LevelAll:
		return allowed(), nil

	case LevelOwn:
		if !entity.HasOwner() {
			return needsOwnership(entityType(entity)), nil
		}
		if entity.OwnerID == identity.UserID {
			return allowed(), nil
		}
		return denied(ReasonOwnershipMismatch), nil

	case LevelInvolved:
		if !entity.HasInvolved() {
			return needsOwnership(entityType(entity)), nil
		}
		if entity.Involves(identity.UserID) {
			return allowed(), nil
		}
		return denied(ReasonNotInvolved), nil

	default:
		return Decision{}, fmt.Errorf("authz: invalid permission level %q for %s/%s", level, identity.Role, action)
	}
}

func entityType(entity *EntityContext) string {
	if entity == nil {
		return ""
	}
	return entity.EntityType
}
