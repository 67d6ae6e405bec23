package authz

// Outcome is the tagged result of an authorization check. Modeling the
// pending-verification case as its own outcome keeps callers from mistaking
// it for an unconditional allow.
type Outcome int

const (
	// OutcomeDenied is an explicit deny.
	OutcomeDenied Outcome = iota

	// OutcomeAllowed is an unconditional allow.
	OutcomeAllowed

	// OutcomeNeedsOwnershipCheck means the action resolved to an
	// ownership-sensitive level and no entity data was supplied. The caller
	// must re-check with concrete entity data before mutating state.
	OutcomeNeedsOwnershipCheck
)

// Reasons for denied decisions, kept stable for callers that branch on them.
const (
	ReasonUnauthenticated   = "unauthenticated"
	ReasonOwnershipMismatch = "entity is owned by another user"
	ReasonNotInvolved       = "user is not involved with this entity"
)

// Decision is the result of evaluating one or more actions for an identity.
type Decision struct {
	Outcome Outcome

	// Reason explains a deny, or names the satisfied action for composite
	// any-of checks. Empty for plain allows.
	Reason string

	// EntityType names the entity kind awaiting ownership verification when
	// Outcome is OutcomeNeedsOwnershipCheck.
	EntityType string
}

// Allowed reports an unconditional allow.
func (d Decision) Allowed() bool {
	return d.Outcome == OutcomeAllowed
}

// Denied reports an explicit deny.
func (d Decision) Denied() bool {
	return d.Outcome == OutcomeDenied
}

// RequiresOwnershipCheck reports the allowed-pending-verification case.
func (d Decision) RequiresOwnershipCheck() bool {
	return d.Outcome == OutcomeNeedsOwnershipCheck
}

func allowed() Decision {
	return Decision{Outcome: OutcomeAllowed}
}

func denied(reason string) Decision {
	return Decision{Outcome: OutcomeDenied, Reason: reason}
}

func needsOwnership(entityType string) Decision {
	return Decision{Outcome: OutcomeNeedsOwnershipCheck, EntityType: entityType}
}
