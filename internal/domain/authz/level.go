package authz

// Level is the granularity of a permission grant for one action.
type Level string

const (
	// LevelAll grants the action unconditionally.
	LevelAll Level = "all"

	// LevelOwn grants the action only on entities owned by the acting user.
	// Resolving it to a boolean requires entity ownership data.
	LevelOwn Level = "own"

	// LevelInvolved grants the action only on entities the acting user
	// participates in. Requires the entity's involved-user list.
	LevelInvolved Level = "involved"

	// LevelNone denies the action.
	LevelNone Level = "none"
)

// Levels lists all permission levels.
var Levels = []Level{LevelAll, LevelOwn, LevelInvolved, LevelNone}

// Valid reports whether the level is one of the known values.
func (l Level) Valid() bool {
	switch l {
	case LevelAll, LevelOwn, LevelInvolved, LevelNone:
		return true
	}
	return false
}

// OwnershipSensitive reports whether resolving the level needs entity data.
func (l Level) OwnershipSensitive() bool {
	return l == LevelOwn || l == LevelInvolved
}
