package authz

import "sort"

// ModuleID identifies a coarse feature area whose visibility is gated
// independently of individual actions.
type ModuleID string

const (
	ModuleDashboard    ModuleID = "dashboard"
	ModuleProperty     ModuleID = "property"
	ModuleMaintenance  ModuleID = "maintenance"
	ModuleMessage      ModuleID = "message"
	ModuleReport       ModuleID = "report"
	ModuleDocument     ModuleID = "document"
	ModuleNotification ModuleID = "notification"
	ModuleAdmin        ModuleID = "admin"
)

// AllModules lists every feature module.
var AllModules = []ModuleID{
	ModuleDashboard,
	ModuleProperty,
	ModuleMaintenance,
	ModuleMessage,
	ModuleReport,
	ModuleDocument,
	ModuleNotification,
	ModuleAdmin,
}

// DefaultViewerModules is the static module set seeded for the lowest tier
// when an organization has no role-level module access records.
var DefaultViewerModules = []ModuleID{
	ModuleDashboard,
	ModuleProperty,
	ModuleReport,
	ModuleNotification,
}

var knownModules = func() map[ModuleID]struct{} {
	m := make(map[ModuleID]struct{}, len(AllModules))
	for _, id := range AllModules {
		m[id] = struct{}{}
	}
	return m
}()

// Known reports whether the module is part of the closed module set.
func (m ModuleID) Known() bool {
	_, ok := knownModules[m]
	return ok
}

// ModuleSet is a set of visible modules.
type ModuleSet map[ModuleID]struct{}

// NewModuleSet builds a set from the given modules.
func NewModuleSet(modules ...ModuleID) ModuleSet {
	s := make(ModuleSet, len(modules))
	for _, m := range modules {
		s[m] = struct{}{}
	}
	return s
}

// Contains reports whether the module is in the set.
func (s ModuleSet) Contains(m ModuleID) bool {
	_, ok := s[m]
	return ok
}

// Add inserts a module into the set.
func (s ModuleSet) Add(m ModuleID) {
	s[m] = struct{}{}
}

// Remove deletes a module from the set.
func (s ModuleSet) Remove(m ModuleID) {
	delete(s, m)
}

// Sorted returns the set contents in stable lexical order.
func (s ModuleSet) Sorted() []ModuleID {
	out := make([]ModuleID, 0, len(s))
	for m := range s {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
