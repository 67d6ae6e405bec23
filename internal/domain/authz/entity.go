package authz

// EntityContext carries ownership data for the target of an
// ownership-sensitive check. Callers supply it when the effective level may
// be "own" or "involved".
//
// Absence semantics matter: an empty OwnerID means ownership is unknown, and
// a nil InvolvedUserIDs slice means the participant list is unknown. Both
// resolve to a pending-verification decision rather than an allow or deny.
// An empty non-nil InvolvedUserIDs is a known-empty participant list and
// denies.
type EntityContext struct {
	EntityType      string
	EntityID        string
	OwnerID         string
	InvolvedUserIDs []string
}

// HasOwner reports whether ownership data was supplied.
func (e *EntityContext) HasOwner() bool {
	return e != nil && e.OwnerID != ""
}

// HasInvolved reports whether the participant list was supplied.
func (e *EntityContext) HasInvolved() bool {
	return e != nil && e.InvolvedUserIDs != nil
}

// Involves reports whether userID appears in the participant list.
func (e *EntityContext) Involves(userID string) bool {
	if e == nil {
		return false
	}
	for _, id := range e.InvolvedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}
