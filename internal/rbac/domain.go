package rbac

// Role is one of the fixed account classes. Assigned at account creation and
// carried in session evidence.
type Role string

const (
	RoleStudent Role = "student"
	RoleMentor  Role = "mentor"
	RoleAdmin   Role = "admin"
)

// Valid reports whether the role belongs to the closed role set.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleMentor, RoleAdmin:
		return true
	}
	return false
}

// Roles lists every known role.
func Roles() []Role {
	return []Role{RoleStudent, RoleMentor, RoleAdmin}
}

// Capability names a single allowed action, e.g. "view:dashboard".
type Capability string

// CapAdminAll is the wildcard capability: a user holding it passes every
// permission check regardless of the capability asked for.
const CapAdminAll Capability = "admin:all"

// User is the minimal identity record the access-control core reads. The auth
// collaborator owns it; the core only ever holds a read-only reference, or nil
// when unauthenticated.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}
