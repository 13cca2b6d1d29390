package guard

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/em-sphere/emsphere/internal/rbac"
)

// UserResolver resolves the current user for a request, nil when anonymous.
// Resolution may involve the session store and is expected to be slow enough
// that callers should not block rendering on it synchronously.
type UserResolver interface {
	ResolveUser(ctx context.Context, r *http.Request) (*rbac.User, error)
}

// Gatekeeper wraps protected page handlers with a Guard per request.
type Gatekeeper struct {
	Resolver  UserResolver
	LoginPath string
	Logger    *slog.Logger
	// Denied renders the access-denied view. Falls back to a bare 403 when
	// unset.
	Denied func(w http.ResponseWriter, r *http.Request, required rbac.Role)
}

// Middleware adapts Protect to the chi middleware shape.
func (k *Gatekeeper) Middleware(required rbac.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return k.Protect(required, next)
	}
}

// Protect returns a handler that renders next only for an authorized user.
// Anonymous visitors are redirected to login with a return path; a role
// mismatch renders the denied view instead of silently redirecting.
func (k *Gatekeeper) Protect(required rbac.Role, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g := New(Config{
			RequiredRole: required,
			ReturnPath:   r.URL.Path,
			LoginPath:    k.LoginPath,
		})
		g.MountComplete()

		go func() {
			user, err := k.Resolver.ResolveUser(r.Context(), r)
			if err != nil {
				if k.Logger != nil {
					k.Logger.Warn("resolve user", slog.Any("error", err))
				}
				user = nil
			}
			g.SetAuthStatus(AuthStatus{User: user})
		}()

		state, err := g.Wait(r.Context())
		if err != nil {
			// Client went away before auth resolved; render nothing.
			return
		}

		switch state {
		case StateUnauthenticated:
			http.Redirect(w, r, g.RedirectTarget(), http.StatusSeeOther)
		case StateRoleDenied:
			r = r.WithContext(rbac.ContextWithUser(r.Context(), g.User()))
			if k.Denied != nil {
				k.Denied(w, r, required)
				return
			}
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		case StateAuthorized:
			ctx := rbac.ContextWithUser(r.Context(), g.User())
			next.ServeHTTP(w, r.WithContext(ctx))
		}
	})
}
