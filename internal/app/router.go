package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/em-sphere/emsphere/internal/auth"
	"github.com/em-sphere/emsphere/internal/gate"
	"github.com/em-sphere/emsphere/internal/guard"
	"github.com/em-sphere/emsphere/internal/observability"
	"github.com/em-sphere/emsphere/internal/platform/httpx"
	"github.com/em-sphere/emsphere/internal/rbac"
	"github.com/em-sphere/emsphere/internal/shared"
	"github.com/em-sphere/emsphere/internal/users"
	"github.com/em-sphere/emsphere/internal/view"
	"github.com/em-sphere/emsphere/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Templates      *view.Engine
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Gate           *gate.Gate
	AuthHandler    *auth.Handler
	AuthService    *auth.Service
	UsersHandler   *users.Handler
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router with Em-Sphere defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		Gate:           params.Gate,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	gatekeeper := &guard.Gatekeeper{
		Resolver:  auth.SessionUserResolver{Service: params.AuthService},
		LoginPath: params.Config.LoginPath,
		Logger:    params.Logger,
		Denied: func(w http.ResponseWriter, req *http.Request, required rbac.Role) {
			renderDenied(params, w, req, required)
		},
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Session introspection for client-side scripts: who am I and what may I
	// do. Anonymous visitors get authenticated=false rather than an error.
	r.Get("/api/session", func(w http.ResponseWriter, r *http.Request) {
		user, err := gatekeeper.Resolver.ResolveUser(r.Context(), r)
		if err != nil {
			params.Logger.Error("resolve session user", slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, sessionInfo{
			Authenticated: rbac.IsAuthenticated(user),
			User:          user,
			Permissions:   rbac.UserPermissions(user),
		})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess == nil || sess.User() == "" {
			http.Redirect(w, r, "/home", http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, params.Config.DashboardPath, http.StatusSeeOther)
	})

	// Landing page for unauthenticated visitors; the gate bounces signed-in
	// users to the dashboard before this handler runs.
	r.Get("/home", func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		csrfToken, _ := params.CSRFManager.EnsureToken(r.Context(), sess)
		var flash *shared.FlashMessage
		if sess != nil {
			flash = sess.PopFlash()
		}
		data := view.TemplateData{
			Title:     "Em-Sphere",
			CSRFToken: csrfToken,
			Flash:     flash,
		}
		if err := params.Templates.Render(w, "pages/landing.html", data); err != nil {
			params.Logger.Error("render landing", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	})

	params.AuthHandler.MountRoutes(r)

	r.Group(func(r chi.Router) {
		r.Use(gatekeeper.Middleware(""))
		r.Get("/dashboard", func(w http.ResponseWriter, req *http.Request) {
			renderDashboard(params, w, req)
		})
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(gatekeeper.Middleware(rbac.RoleAdmin))
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, "/admin/users", http.StatusSeeOther)
		})
		r.Route("/users", params.UsersHandler.MountRoutes)
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

type sessionInfo struct {
	Authenticated bool              `json:"authenticated"`
	User          *rbac.User        `json:"user,omitempty"`
	Permissions   []rbac.Capability `json:"permissions,omitempty"`
}

func renderDashboard(params RouterParams, w http.ResponseWriter, r *http.Request) {
	user := rbac.UserFromContext(r.Context())
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := params.CSRFManager.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	data := view.TemplateData{
		Title:       "Dashboard",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		User:        user,
		Data:        rbac.UserPermissions(user),
	}
	if err := params.Templates.Render(w, "pages/dashboard.html", data); err != nil {
		params.Logger.Error("render dashboard", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func renderDenied(params RouterParams, w http.ResponseWriter, r *http.Request, required rbac.Role) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := params.CSRFManager.EnsureToken(r.Context(), sess)
	w.WriteHeader(http.StatusForbidden)
	data := view.TemplateData{
		Title:       "Access denied",
		CSRFToken:   csrfToken,
		CurrentPath: r.URL.Path,
		User:        rbac.UserFromContext(r.Context()),
		Data:        required,
	}
	if err := params.Templates.Render(w, "pages/denied.html", data); err != nil {
		params.Logger.Error("render denied", slog.Any("error", err))
	}
}

// staticCacheHandler wraps a file server with Cache-Control headers.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
