package rbac

import "testing"

func TestPredicatesNilUser(t *testing.T) {
	if HasRole(nil, RoleAdmin) {
		t.Fatalf("nil user must not hold a role")
	}
	if HasAnyRole(nil, RoleStudent, RoleMentor, RoleAdmin) {
		t.Fatalf("nil user must not match any role")
	}
	if HasAllRoles(nil) {
		t.Fatalf("nil user must fail even the empty role set")
	}
	if IsAuthenticated(nil) {
		t.Fatalf("nil user must not be authenticated")
	}
	if HasPermission(nil, "view:dashboard") {
		t.Fatalf("nil user must not hold permissions")
	}
	if perms := UserPermissions(nil); perms != nil {
		t.Fatalf("expected empty permission set for nil user got %v", perms)
	}
}

func TestHasAnyRole(t *testing.T) {
	mentor := &User{ID: 2, Role: RoleMentor}
	if !HasAnyRole(mentor, RoleAdmin, RoleMentor) {
		t.Fatalf("expected mentor to match [admin mentor]")
	}
	if HasAnyRole(mentor, RoleAdmin, RoleStudent) {
		t.Fatalf("mentor must not match [admin student]")
	}
	if HasAnyRole(mentor) {
		t.Fatalf("empty set must not match")
	}
}

func TestHasAllRolesSingleRoleModel(t *testing.T) {
	admin := &User{ID: 1, Role: RoleAdmin}
	if !HasAllRoles(admin) {
		t.Fatalf("empty set must hold vacuously for a non-nil user")
	}
	if !HasAllRoles(admin, RoleAdmin) {
		t.Fatalf("singleton matching the user's role must hold")
	}
	if HasAllRoles(admin, RoleAdmin, RoleMentor) {
		t.Fatalf("two distinct roles can never both hold for one user")
	}
	if HasAllRoles(admin, RoleAdmin, RoleAdmin) == false {
		t.Fatalf("repeated matching role must hold")
	}
}

func TestRoleShorthands(t *testing.T) {
	if !IsAdmin(&User{Role: RoleAdmin}) || IsAdmin(&User{Role: RoleMentor}) {
		t.Fatalf("IsAdmin misclassifies")
	}
	if !IsMentor(&User{Role: RoleMentor}) || IsMentor(&User{Role: RoleStudent}) {
		t.Fatalf("IsMentor misclassifies")
	}
	if !IsStudent(&User{Role: RoleStudent}) || IsStudent(&User{Role: RoleAdmin}) {
		t.Fatalf("IsStudent misclassifies")
	}
}

func TestHasPermission(t *testing.T) {
	student := &User{Role: RoleStudent}
	if !HasPermission(student, "view:dashboard") {
		t.Fatalf("student must hold view:dashboard")
	}
	if HasPermission(student, "manage:users") {
		t.Fatalf("student must not hold manage:users")
	}

	mentor := &User{Role: RoleMentor}
	if !HasPermission(mentor, "manage:mentees") {
		t.Fatalf("mentor must hold manage:mentees")
	}
	if HasPermission(mentor, "view:analytics") {
		t.Fatalf("mentor must not hold view:analytics")
	}
}

func TestHasPermissionAdminWildcard(t *testing.T) {
	admin := &User{Role: RoleAdmin}
	// Wildcard grants capabilities that appear in no catalog at all.
	if !HasPermission(admin, "manage:anything-at-all") {
		t.Fatalf("admin wildcard must grant uncataloged capabilities")
	}
	if !HasPermission(admin, "view:dashboard") {
		t.Fatalf("admin must hold cataloged capabilities too")
	}
}

func TestHasPermissionUnknownRole(t *testing.T) {
	ghost := &User{Role: Role("ghost")}
	if HasPermission(ghost, "view:dashboard") {
		t.Fatalf("unknown role must fail closed")
	}
	if perms := UserPermissions(ghost); len(perms) != 0 {
		t.Fatalf("unknown role must yield no permissions got %v", perms)
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range Roles() {
		if !r.Valid() {
			t.Fatalf("listed role %s must be valid", r)
		}
	}
	if Role("root").Valid() {
		t.Fatalf("unlisted role must be invalid")
	}
}
