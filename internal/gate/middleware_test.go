package gate

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/em-sphere/emsphere/internal/rbac"
	"github.com/em-sphere/emsphere/internal/routes"
)

func middlewareUnderTest(observe func(Decision)) http.Handler {
	g := New(routes.NewClassifier(nil, nil, nil), "/login", "/dashboard")
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return Middleware(g, nil, observe)(next)
}

func TestMiddlewareRedirectsAnonymousFromProtected(t *testing.T) {
	handler := middlewareUnderTest(nil)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 got %d", res.Code)
	}
	loc := res.Header().Get("Location")
	if loc != "/login?redirect=%2Fdashboard" {
		t.Fatalf("unexpected location %q", loc)
	}
}

func TestMiddlewarePassesAuthenticatedRequest(t *testing.T) {
	handler := middlewareUnderTest(nil)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: AuthTokenCookie, Value: "tok"})
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}
}

func TestMiddlewareBouncesAuthenticatedFromLogin(t *testing.T) {
	handler := middlewareUnderTest(nil)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(&http.Cookie{Name: AuthTokenCookie, Value: "tok"})
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 got %d", res.Code)
	}
	if loc := res.Header().Get("Location"); loc != "/dashboard" {
		t.Fatalf("unexpected location %q", loc)
	}
}

func TestMiddlewareSkipsInfrastructurePaths(t *testing.T) {
	var seen []Decision
	handler := middlewareUnderTest(func(d Decision) { seen = append(seen, d) })

	for _, path := range []string{"/healthz", "/metrics", "/static/css/app.css", "/favicon.ico"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)
		if res.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s got %d", path, res.Code)
		}
	}
	if len(seen) != 0 {
		t.Fatalf("skip paths must not be observed, got %d decisions", len(seen))
	}
}

func TestMiddlewareObservesDecisions(t *testing.T) {
	var seen []Decision
	handler := middlewareUnderTest(func(d Decision) { seen = append(seen, d) })

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if len(seen) != 1 {
		t.Fatalf("expected one observed decision got %d", len(seen))
	}
	if seen[0].Action != ActionRedirectLogin {
		t.Fatalf("expected observed login redirect got %s", seen[0].Action)
	}
}

func TestEvidenceFromRequestDecodesSnapshot(t *testing.T) {
	user := rbac.User{ID: 3, Name: "Asha", Email: "asha@emsphere.local", Role: rbac.RoleStudent}
	raw, err := json.Marshal(user)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: AuthTokenCookie, Value: "tok"})
	req.AddCookie(&http.Cookie{Name: UserDataCookie, Value: url.QueryEscape(string(raw))})

	ev := EvidenceFromRequest(req)
	if !ev.AuthPresent() {
		t.Fatalf("expected auth token present")
	}
	var decoded rbac.User
	if err := json.Unmarshal([]byte(ev.UserData), &decoded); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if decoded != user {
		t.Fatalf("snapshot round trip mismatch: %+v", decoded)
	}
}

func TestEvidenceFromRequestUndecodableSnapshot(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: UserDataCookie, Value: "%zz"})

	ev := EvidenceFromRequest(req)
	if ev.UserData != "%zz" {
		t.Fatalf("undecodable value must pass through raw, got %q", ev.UserData)
	}
}
