// Package guard blocks a protected view until the auth collaborator has
// resolved whether a session exists, then enforces an optional required role.
// It is the rendering-side counterpart of the request gate: the gate decides
// before a page is served, the guard decides while one is being composed.
package guard

import (
	"context"
	"net/url"
	"sync"

	"github.com/em-sphere/emsphere/internal/rbac"
)

// State is the guard lifecycle. StateResolving is the only non-terminal
// state; once a terminal state is reached the guard never changes again.
type State int

const (
	// StateResolving means auth status is still unknown; render a fallback.
	StateResolving State = iota
	// StateUnauthenticated means no session exists; redirect to login.
	StateUnauthenticated
	// StateRoleDenied means a session exists but the required role does not
	// match; render an access-denied view.
	StateRoleDenied
	// StateAuthorized means the wrapped view may render.
	StateAuthorized
)

// String returns a readable state name for logs.
func (s State) String() string {
	switch s {
	case StateResolving:
		return "resolving"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateRoleDenied:
		return "role_denied"
	case StateAuthorized:
		return "authorized"
	}
	return "unknown"
}

// AuthStatus is a snapshot of the auth collaborator's observable state.
type AuthStatus struct {
	User    *rbac.User
	Loading bool
}

// Config parameterizes a Guard for one mount.
type Config struct {
	// RequiredRole, when set, must equal the resolved user's role.
	RequiredRole rbac.Role
	// ReturnPath is preserved in the login redirect.
	ReturnPath string
	// LoginPath defaults to /login.
	LoginPath string
	// OnRedirect, when set, fires once if the guard resolves to
	// StateUnauthenticated. Suppressed after Unmount.
	OnRedirect func(target string)
}

// Guard is a single-mount state machine. It commits to a terminal state only
// after both MountComplete and a non-loading SetAuthStatus have been
// observed, in either order. Safe for concurrent use.
type Guard struct {
	mu        sync.Mutex
	cfg       Config
	mounted   bool
	resolved  bool
	user      *rbac.User
	state     State
	unmounted bool
	done      chan struct{}
}

// New constructs a Guard in StateResolving.
func New(cfg Config) *Guard {
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/login"
	}
	return &Guard{cfg: cfg, state: StateResolving, done: make(chan struct{})}
}

// MountComplete records that the surrounding runtime finished its first
// render pass.
func (g *Guard) MountComplete() {
	g.mu.Lock()
	g.mounted = true
	fire := g.evaluate()
	g.mu.Unlock()
	if fire != nil {
		fire()
	}
}

// SetAuthStatus feeds the latest auth collaborator snapshot. Snapshots with
// Loading set keep the guard resolving; the first settled snapshot decides.
func (g *Guard) SetAuthStatus(st AuthStatus) {
	g.mu.Lock()
	if !st.Loading {
		g.resolved = true
		g.user = st.User
	}
	fire := g.evaluate()
	g.mu.Unlock()
	if fire != nil {
		fire()
	}
}

// Unmount detaches the guard. Any redirect that has not fired yet is
// suppressed; the state machine itself may still settle for observability.
func (g *Guard) Unmount() {
	g.mu.Lock()
	g.unmounted = true
	g.mu.Unlock()
}

// State returns the current state.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// User returns the resolved user, nil until resolution and for anonymous
// visitors.
func (g *Guard) User() *rbac.User {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.user
}

// Wait blocks until the guard reaches a terminal state or ctx is done. On
// context cancellation it unmounts the guard so no redirect fires later.
func (g *Guard) Wait(ctx context.Context) (State, error) {
	select {
	case <-g.done:
		return g.State(), nil
	case <-ctx.Done():
		g.Unmount()
		return g.State(), ctx.Err()
	}
}

// RedirectTarget is the login URL carrying the return path.
func (g *Guard) RedirectTarget() string {
	return g.cfg.LoginPath + "?redirect=" + url.QueryEscape(g.cfg.ReturnPath)
}

// evaluate runs with g.mu held and returns the side effect, if any, to fire
// after the lock is released. The terminal state depends only on the resolved
// facts, never on the order the two signals arrived in.
func (g *Guard) evaluate() func() {
	if g.state != StateResolving || !g.mounted || !g.resolved {
		return nil
	}
	var fire func()
	switch {
	case g.user == nil:
		g.state = StateUnauthenticated
		if !g.unmounted && g.cfg.OnRedirect != nil {
			target := g.RedirectTarget()
			fn := g.cfg.OnRedirect
			fire = func() { fn(target) }
		}
	case g.cfg.RequiredRole != "" && g.user.Role != g.cfg.RequiredRole:
		g.state = StateRoleDenied
	default:
		g.state = StateAuthorized
	}
	close(g.done)
	return fire
}
