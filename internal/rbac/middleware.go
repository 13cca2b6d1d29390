package rbac

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"log/slog"

	"github.com/em-sphere/emsphere/internal/shared"
)

// UserSource looks up the identity record behind a session user ID.
type UserSource interface {
	UserByID(ctx context.Context, id int64) (*User, error)
}

// Middleware wires role and permission checks for HTTP handlers.
type Middleware struct {
	Users  UserSource
	Logger *slog.Logger
}

// RequirePermission ensures the current user holds at least one of the given
// capabilities. The admin:all wildcard passes every check.
func (m Middleware) RequirePermission(caps ...Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(caps) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			user, ok := m.currentUser(r)
			if !ok {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			for _, c := range caps {
				if HasPermission(user, c) {
					next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
					return
				}
			}
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}

// RequireRole ensures the current user carries one of the given roles.
func (m Middleware) RequireRole(roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(roles) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			user, ok := m.currentUser(r)
			if !ok {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			if HasAnyRole(user, roles...) {
				next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
				return
			}
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}

func (m Middleware) currentUser(r *http.Request) (*User, bool) {
	if user := UserFromContext(r.Context()); user != nil {
		return user, true
	}
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || m.Users == nil {
		return nil, false
	}
	raw := strings.TrimSpace(sess.User())
	if raw == "" {
		return nil, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Error("rbac parse user id", slog.String("value", raw))
		}
		return nil, false
	}
	user, err := m.Users.UserByID(r.Context(), id)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Error("rbac load user", slog.Any("error", err))
		}
		return nil, false
	}
	return user, true
}
