package users_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/em-sphere/emsphere/internal/rbac"
	"github.com/em-sphere/emsphere/internal/shared"
	"github.com/em-sphere/emsphere/internal/users"
	"github.com/em-sphere/emsphere/internal/view"
	_ "github.com/em-sphere/emsphere/testing"
)

func newRouter(t *testing.T, repo users.RepositoryPort, actor *rbac.User) http.Handler {
	t.Helper()
	templates, err := view.NewEngine()
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := users.NewHandler(logger, users.NewService(repo), templates, shared.NewCSRFManager("csrfsecret"), rbac.Middleware{Logger: logger})

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if actor != nil {
				req = req.WithContext(rbac.ContextWithUser(req.Context(), actor))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Route("/admin/users", handler.MountRoutes)
	return r
}

func TestListUsersPage(t *testing.T) {
	repo := &stubRepo{list: []users.User{
		{ID: 1, Name: "Asha", Email: "asha@emsphere.local", Role: rbac.RoleStudent, IsActive: true},
		{ID: 2, Name: "Meera", Email: "mentor@emsphere.local", Role: rbac.RoleMentor, IsActive: true},
	}}
	router := newRouter(t, repo, &rbac.User{ID: 9, Role: rbac.RoleAdmin})

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/admin/users", nil))

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}
	body := res.Body.String()
	if !strings.Contains(body, "asha@emsphere.local") || !strings.Contains(body, "mentor@emsphere.local") {
		t.Fatalf("expected both users listed, got: %s", body)
	}
}

func TestListUsersForbiddenForNonAdmin(t *testing.T) {
	router := newRouter(t, &stubRepo{}, &rbac.User{ID: 3, Role: rbac.RoleStudent})

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/admin/users", nil))

	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", res.Code)
	}
}

func TestChangeRoleEndpoint(t *testing.T) {
	repo := &stubRepo{}
	router := newRouter(t, repo, &rbac.User{ID: 9, Role: rbac.RoleAdmin})

	form := url.Values{}
	form.Set("role", "mentor")
	req := httptest.NewRequest(http.MethodPost, "/admin/users/5/role", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 got %d", res.Code)
	}
	if loc := res.Header().Get("Location"); loc != "/admin/users" {
		t.Fatalf("unexpected location %q", loc)
	}
	if repo.updatedID != 5 || repo.updatedRole != "mentor" {
		t.Fatalf("unexpected update %d %q", repo.updatedID, repo.updatedRole)
	}
}

func TestChangeRoleBadID(t *testing.T) {
	router := newRouter(t, &stubRepo{}, &rbac.User{ID: 9, Role: rbac.RoleAdmin})

	req := httptest.NewRequest(http.MethodPost, "/admin/users/abc/role", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", res.Code)
	}
}
