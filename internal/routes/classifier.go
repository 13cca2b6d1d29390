// Package routes classifies request paths against the static route tables:
// protected prefixes require a login, public prefixes bounce authenticated
// users back to the dashboard, admin prefixes additionally require the admin
// role.
package routes

import "strings"

// Classification carries the three independent flags for a path. The prefix
// tables are disjoint by construction, but the flags are not mutually
// exclusive in general.
type Classification struct {
	Protected bool
	Public    bool
	Admin     bool
}

// Classifier matches paths against ordered prefix tables. Tables are fixed at
// construction and never mutated, so a Classifier is safe for concurrent use.
type Classifier struct {
	protected []string
	public    []string
	admin     []string
}

// DefaultProtected lists the page prefixes that require authentication.
var DefaultProtected = []string{
	"/dashboard",
	"/skills",
	"/missions",
	"/teams",
	"/career-simulator",
	"/incubation",
	"/journal",
	"/time-capsule",
	"/resume-builder",
	"/mentors",
}

// DefaultPublic lists prefixes that redirect to the dashboard when the
// visitor is already authenticated.
var DefaultPublic = []string{"/login", "/home"}

// DefaultAdmin lists prefixes reserved for admin accounts.
var DefaultAdmin = []string{"/admin"}

// NewClassifier builds a Classifier from the three prefix tables. Empty
// slices fall back to the defaults.
func NewClassifier(protected, public, admin []string) *Classifier {
	if len(protected) == 0 {
		protected = DefaultProtected
	}
	if len(public) == 0 {
		public = DefaultPublic
	}
	if len(admin) == 0 {
		admin = DefaultAdmin
	}
	return &Classifier{
		protected: cloneTable(protected),
		public:    cloneTable(public),
		admin:     cloneTable(admin),
	}
}

// Classify returns the flags for a path. Matching is case-sensitive exact
// prefix match with no segment-boundary check: prefix "/dashboard" matches
// "/dashboards" too, mirroring the route matcher this table was lifted from.
func (c *Classifier) Classify(path string) Classification {
	return Classification{
		Protected: matchesAny(path, c.protected),
		Public:    matchesAny(path, c.public),
		Admin:     matchesAny(path, c.admin),
	}
}

func matchesAny(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func cloneTable(table []string) []string {
	out := make([]string, 0, len(table))
	for _, prefix := range table {
		prefix = strings.TrimSpace(prefix)
		if prefix == "" {
			continue
		}
		out = append(out, prefix)
	}
	return out
}
