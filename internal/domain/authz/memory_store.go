package authz

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory OverrideStore for tests and seeding.
// Safe for concurrent use.
type MemoryStore struct {
	mu        sync.RWMutex
	overrides map[string]*RoleOverride // key: orgID|role
	modules   map[string]ModuleAccess  // key: orgID|subjectType|subjectID|module
	now       func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		overrides: make(map[string]*RoleOverride),
		modules:   make(map[string]ModuleAccess),
		now:       time.Now,
	}
}

func overrideKey(orgID string, role Role) string {
	return orgID + "|" + role.String()
}

func moduleKey(orgID string, subject SubjectType, subjectID string, module ModuleID) string {
	return orgID + "|" + string(subject) + "|" + subjectID + "|" + string(module)
}

// GetRoleOverride returns a copy of the stored record, or nil when none exists.
func (s *MemoryStore) GetRoleOverride(ctx context.Context, orgID string, role Role) (*RoleOverride, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.overrides[overrideKey(orgID, role)]
	if !ok {
		return nil, nil
	}
	out := *rec
	out.Levels = make(map[Action]Level, len(rec.Levels))
	for a, l := range rec.Levels {
		out.Levels[a] = l
	}
	return &out, nil
}

// GetRoleModuleAccess returns role-tier records for the organization.
func (s *MemoryStore) GetRoleModuleAccess(ctx context.Context, orgID string, role Role) ([]ModuleAccess, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.listModules(orgID, SubjectRole, role.String()), nil
}

// GetUserModuleAccess returns user-tier records for the organization.
func (s *MemoryStore) GetUserModuleAccess(ctx context.Context, orgID, userID string) ([]ModuleAccess, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.listModules(orgID, SubjectUser, userID), nil
}

func (s *MemoryStore) listModules(orgID string, subject SubjectType, subjectID string) []ModuleAccess {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ModuleAccess
	for _, rec := range s.modules {
		if rec.OrgID == orgID && rec.Subject == subject && rec.SubjectID == subjectID {
			out = append(out, rec)
		}
	}
	return out
}

// MergeRoleOverride sparse-merges levels into the stored record.
func (s *MemoryStore) MergeRoleOverride(ctx context.Context, orgID string, role Role, levels map[Action]Level, updatedBy string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := overrideKey(orgID, role)
	rec, ok := s.overrides[key]
	if !ok {
		rec = &RoleOverride{
			OrgID:         orgID,
			Role:          role,
			SchemaVersion: OverrideSchemaVersion,
			Levels:        make(map[Action]Level),
		}
		s.overrides[key] = rec
	}
	for a, l := range levels {
		rec.Levels[a] = l
	}
	rec.UpdatedBy = updatedBy
	rec.UpdatedAt = s.now()
	return nil
}

// ClearRoleOverride drops the action payload but keeps the record metadata.
func (s *MemoryStore) ClearRoleOverride(ctx context.Context, orgID string, role Role) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.overrides[overrideKey(orgID, role)]; ok {
		rec.Levels = make(map[Action]Level)
		rec.UpdatedAt = s.now()
	}
	return nil
}

// UpsertModuleAccess writes one module access record.
func (s *MemoryStore) UpsertModuleAccess(ctx context.Context, rec ModuleAccess) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.UpdatedAt = s.now()
	s.modules[moduleKey(rec.OrgID, rec.Subject, rec.SubjectID, rec.ModuleID)] = rec
	return nil
}

// Ensure interface compliance
var _ OverrideStore = (*MemoryStore)(nil)
