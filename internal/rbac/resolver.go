package rbac

// Role and permission predicates. All of them are pure, nil-safe and never
// panic: a nil user answers false (or an empty set) everywhere.

// HasRole reports whether the user carries exactly the given role.
func HasRole(u *User, role Role) bool {
	return u != nil && u.Role == role
}

// HasAnyRole reports whether the user's role appears in roles.
func HasAnyRole(u *User, roles ...Role) bool {
	if u == nil {
		return false
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// HasAllRoles reports whether the user carries every role in roles. Under the
// current single-role model this can only hold for an empty set or a singleton
// matching the user's role; kept literal as a shim for future multi-role
// accounts.
func HasAllRoles(u *User, roles ...Role) bool {
	if u == nil {
		return false
	}
	for _, r := range roles {
		if u.Role != r {
			return false
		}
	}
	return true
}

// IsAuthenticated reports whether a user is present at all.
func IsAuthenticated(u *User) bool {
	return u != nil
}

// IsAdmin reports whether the user is an admin.
func IsAdmin(u *User) bool {
	return HasRole(u, RoleAdmin)
}

// IsMentor reports whether the user is a mentor.
func IsMentor(u *User) bool {
	return HasRole(u, RoleMentor)
}

// IsStudent reports whether the user is a student.
func IsStudent(u *User) bool {
	return HasRole(u, RoleStudent)
}

// UserPermissions returns the capability set granted by the user's role. Nil
// user yields an empty set.
func UserPermissions(u *User) []Capability {
	if u == nil {
		return nil
	}
	return Capabilities(u.Role)
}

// HasPermission reports whether the user's role grants the capability. The
// admin:all wildcard satisfies every capability, listed in the catalog or not.
func HasPermission(u *User, cap Capability) bool {
	if u == nil {
		return false
	}
	set, ok := capabilityIndex[u.Role]
	if !ok {
		return false
	}
	if _, ok := set[CapAdminAll]; ok {
		return true
	}
	_, ok = set[cap]
	return ok
}
