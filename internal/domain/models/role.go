package models

import "strings"

// Role is one of the fixed set of roles the system understands. Membership is
// tested with set operations, never substring matching, so a role named
// "admin-assistant" can never satisfy a check for "admin".
type Role string

const (
	RoleUser       Role = "user"
	RoleEditor     Role = "editor"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// RoleSet is an explicit set of roles.
type RoleSet map[Role]struct{}

// ParseRoles parses a comma-separated role string into a RoleSet. Unknown
// tokens are dropped; whitespace around tokens is ignored.
func ParseRoles(s string) RoleSet {
	set := make(RoleSet)
	for _, tok := range strings.Split(s, ",") {
		switch Role(strings.TrimSpace(tok)) {
		case RoleUser:
			set[RoleUser] = struct{}{}
		case RoleEditor:
			set[RoleEditor] = struct{}{}
		case RoleAdmin:
			set[RoleAdmin] = struct{}{}
		case RoleSuperAdmin:
			set[RoleSuperAdmin] = struct{}{}
		}
	}
	return set
}

// NewRoleSet builds a set from the given roles.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Has reports whether the set contains the exact role.
func (s RoleSet) Has(r Role) bool {
	_, ok := s[r]
	return ok
}

// HasAny reports whether the set contains at least one of the given roles.
func (s RoleSet) HasAny(roles ...Role) bool {
	for _, r := range roles {
		if s.Has(r) {
			return true
		}
	}
	return false
}

// Slice returns the set's members in a stable order.
func (s RoleSet) Slice() []Role {
	ordered := []Role{RoleSuperAdmin, RoleAdmin, RoleEditor, RoleUser}
	out := make([]Role, 0, len(s))
	for _, r := range ordered {
		if s.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

// String renders the set back to the comma-separated storage form.
func (s RoleSet) String() string {
	parts := make([]string, 0, len(s))
	for _, r := range s.Slice() {
		parts = append(parts, string(r))
	}
	return strings.Join(parts, ",")
}

// CanManageUsers reports whether a holder of this set may administer users.
func (s RoleSet) CanManageUsers() bool {
	return s.HasAny(RoleAdmin, RoleSuperAdmin)
}

// CanManageContent reports whether a holder may mutate folders and media.
func (s RoleSet) CanManageContent() bool {
	return s.HasAny(RoleEditor, RoleAdmin, RoleSuperAdmin)
}
