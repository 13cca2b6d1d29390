// Package gate makes the per-request access decision. Decide is pure: it
// consumes a path plus the session evidence and returns exactly one action.
// The HTTP adapter in middleware.go is the only place redirects actually
// happen.
package gate

import (
	"encoding/json"
	"net/url"

	"github.com/em-sphere/emsphere/internal/rbac"
	"github.com/em-sphere/emsphere/internal/routes"
)

// Action enumerates the possible outcomes of a gate decision.
type Action int

const (
	// ActionAllow lets the request through untouched.
	ActionAllow Action = iota
	// ActionRedirectLogin sends the visitor to the login page, preserving
	// the requested path in the redirect query parameter.
	ActionRedirectLogin
	// ActionRedirectDashboard sends the visitor to the dashboard.
	ActionRedirectDashboard
)

// String returns the metric label for an action.
func (a Action) String() string {
	switch a {
	case ActionAllow:
		return "allow"
	case ActionRedirectLogin:
		return "redirect_login"
	case ActionRedirectDashboard:
		return "redirect_dashboard"
	}
	return "unknown"
}

// Decision is the result of a single gate invocation.
type Decision struct {
	Action Action
	// Target is the redirect location; empty for ActionAllow.
	Target string
}

// Evidence carries the two request-boundary signals: an opaque auth-presence
// token and an optional serialized user snapshot. The gate never verifies the
// token; verification is the auth collaborator's job.
type Evidence struct {
	AuthToken string
	UserData  string
}

// AuthPresent reports whether the auth-presence token was supplied.
func (e Evidence) AuthPresent() bool {
	return e.AuthToken != ""
}

// Gate decides whether a request path may proceed given session evidence.
// Stateless across requests; safe for concurrent use.
type Gate struct {
	classifier    *routes.Classifier
	loginPath     string
	dashboardPath string
}

// New constructs a Gate over the given classifier and redirect targets.
func New(classifier *routes.Classifier, loginPath, dashboardPath string) *Gate {
	if loginPath == "" {
		loginPath = "/login"
	}
	if dashboardPath == "" {
		dashboardPath = "/dashboard"
	}
	return &Gate{classifier: classifier, loginPath: loginPath, dashboardPath: dashboardPath}
}

// Decide returns the single action for the request. Evidence is read-only; a
// snapshot that fails to decode on an admin route converts to a login
// redirect rather than an error.
func (g *Gate) Decide(path string, ev Evidence) Decision {
	cls := g.classifier.Classify(path)

	if cls.Protected && !ev.AuthPresent() {
		return Decision{Action: ActionRedirectLogin, Target: g.LoginRedirect(path)}
	}

	if cls.Public && ev.AuthPresent() {
		return Decision{Action: ActionRedirectDashboard, Target: g.dashboardPath}
	}

	if cls.Admin && ev.AuthPresent() {
		user, err := decodeSnapshot(ev.UserData)
		if err != nil {
			// Corrupt session data fails closed.
			return Decision{Action: ActionRedirectLogin, Target: g.loginPath}
		}
		if !rbac.IsAdmin(user) {
			return Decision{Action: ActionRedirectDashboard, Target: g.dashboardPath}
		}
	}

	return Decision{Action: ActionAllow}
}

// LoginRedirect builds the login URL carrying the originally requested path.
func (g *Gate) LoginRedirect(returnPath string) string {
	return g.loginPath + "?redirect=" + url.QueryEscape(returnPath)
}

// DashboardPath exposes the configured safe landing target.
func (g *Gate) DashboardPath() string {
	return g.dashboardPath
}

// decodeSnapshot parses the serialized user record. An absent snapshot is not
// an error: it decodes to a nil user, whose role then simply fails the admin
// check.
func decodeSnapshot(data string) (*rbac.User, error) {
	if data == "" {
		return nil, nil
	}
	var user rbac.User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return nil, err
	}
	return &user, nil
}
