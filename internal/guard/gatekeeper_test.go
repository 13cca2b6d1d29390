package guard_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/em-sphere/emsphere/internal/guard"
	"github.com/em-sphere/emsphere/internal/rbac"
)

type stubResolver struct {
	user *rbac.User
	err  error
}

func (s stubResolver) ResolveUser(ctx context.Context, r *http.Request) (*rbac.User, error) {
	return s.user, s.err
}

func protect(resolver guard.UserResolver, required rbac.Role, next http.Handler) http.Handler {
	k := &guard.Gatekeeper{Resolver: resolver, LoginPath: "/login"}
	return k.Protect(required, next)
}

func TestGatekeeperAuthorizedPassesUserThrough(t *testing.T) {
	user := &rbac.User{ID: 7, Name: "Asha", Role: rbac.RoleStudent}
	var seen *rbac.User
	handler := protect(stubResolver{user: user}, "", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = rbac.UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}
	if seen == nil || seen.ID != 7 {
		t.Fatalf("expected resolved user in context, got %+v", seen)
	}
}

func TestGatekeeperAnonymousRedirectsToLogin(t *testing.T) {
	handler := protect(stubResolver{}, "", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("next must not run for anonymous visitor")
	}))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	if res.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 got %d", res.Code)
	}
	if loc := res.Header().Get("Location"); loc != "/login?redirect=%2Fdashboard" {
		t.Fatalf("unexpected location %q", loc)
	}
}

func TestGatekeeperResolverErrorTreatedAsAnonymous(t *testing.T) {
	handler := protect(stubResolver{err: errors.New("redis down")}, "", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("next must not run on resolver error")
	}))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	if res.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 got %d", res.Code)
	}
}

func TestGatekeeperRoleDeniedRenders403(t *testing.T) {
	mentor := &rbac.User{ID: 2, Role: rbac.RoleMentor}
	handler := protect(stubResolver{user: mentor}, rbac.RoleAdmin, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("next must not run for denied role")
	}))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/admin", nil))

	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", res.Code)
	}
}

func TestGatekeeperCustomDeniedView(t *testing.T) {
	mentor := &rbac.User{ID: 2, Role: rbac.RoleMentor}
	var deniedFor rbac.Role
	var deniedUser *rbac.User
	k := &guard.Gatekeeper{
		Resolver:  stubResolver{user: mentor},
		LoginPath: "/login",
		Denied: func(w http.ResponseWriter, r *http.Request, required rbac.Role) {
			deniedFor = required
			deniedUser = rbac.UserFromContext(r.Context())
			w.WriteHeader(http.StatusForbidden)
		},
	}
	handler := k.Protect(rbac.RoleAdmin, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/admin", nil))

	if deniedFor != rbac.RoleAdmin {
		t.Fatalf("expected denied view for admin requirement, got %q", deniedFor)
	}
	if deniedUser == nil || deniedUser.ID != 2 {
		t.Fatalf("denied view must see the resolved user, got %+v", deniedUser)
	}
}

func TestGatekeeperMatchingRoleAuthorized(t *testing.T) {
	admin := &rbac.User{ID: 1, Role: rbac.RoleAdmin}
	handler := protect(stubResolver{user: admin}, rbac.RoleAdmin, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/admin", nil))

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}
}
