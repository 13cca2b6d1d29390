package rbac

// The catalog is the single source of truth for which actions exist. Adding a
// capability to a role is a data edit here; nothing else changes.
//
// Invariant: admin ⊇ mentor ⊇ student, plus the admin:all wildcard.

var studentCapabilities = []Capability{
	"view:dashboard",
	"view:skills",
	"view:missions",
	"view:teams",
	"view:career-simulator",
	"view:journal",
	"view:time-capsule",
	"view:resume-builder",
	"view:mentors",
	"edit:profile",
	"create:journal-entry",
	"join:teams",
}

var mentorCapabilities = append(append([]Capability{}, studentCapabilities...),
	"manage:mentees",
	"create:learning-spaces",
	"view:mentor-insights",
)

var adminCapabilities = append(append([]Capability{}, mentorCapabilities...),
	CapAdminAll,
	"manage:users",
	"manage:content",
	"view:analytics",
)

var catalog = map[Role][]Capability{
	RoleStudent: studentCapabilities,
	RoleMentor:  mentorCapabilities,
	RoleAdmin:   adminCapabilities,
}

// capabilityIndex gives O(1) membership checks per role. Built once at init;
// never mutated afterwards.
var capabilityIndex = func() map[Role]map[Capability]struct{} {
	idx := make(map[Role]map[Capability]struct{}, len(catalog))
	for role, caps := range catalog {
		set := make(map[Capability]struct{}, len(caps))
		for _, c := range caps {
			set[c] = struct{}{}
		}
		idx[role] = set
	}
	return idx
}()

// Capabilities returns the ordered capability list for a role. Unknown roles
// yield an empty list: the catalog fails closed rather than erroring.
func Capabilities(role Role) []Capability {
	caps, ok := catalog[role]
	if !ok {
		return nil
	}
	out := make([]Capability, len(caps))
	copy(out, caps)
	return out
}
