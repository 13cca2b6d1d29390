package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/em-sphere/emsphere/internal/gate"
	"github.com/em-sphere/emsphere/internal/rbac"
	"github.com/em-sphere/emsphere/internal/shared"
	"github.com/em-sphere/emsphere/internal/view"
)

// TaskEnqueuer hands off background work triggered by auth flows.
type TaskEnqueuer interface {
	EnqueueWelcomeEmail(ctx context.Context, email, name string) error
}

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	templates      *view.Engine
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	validator      *validator.Validate
	enqueuer       TaskEnqueuer
	secureCookies  bool
}

// NewHandler constructs a Handler instance. enqueuer may be nil; welcome
// emails are then skipped.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, sessions *shared.SessionManager, csrf *shared.CSRFManager, enqueuer TaskEnqueuer, secureCookies bool) *Handler {
	return &Handler{
		logger:         logger,
		service:        service,
		templates:      templates,
		sessionManager: sessions,
		csrfManager:    csrf,
		validator:      validator.New(),
		enqueuer:       enqueuer,
		secureCookies:  secureCookies,
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.showLogin)
	r.Post("/login", h.handleLogin)
	r.Get("/signup", h.showSignup)
	r.Post("/signup", h.handleSignup)
	r.Post("/demo-login", h.handleDemoLogin)
	r.Post("/logout", h.handleLogout)
}

// ShowLoginForTest exposes the GET handler for tests.
func (h *Handler) ShowLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.showLogin(w, r)
}

// HandleLoginForTest exposes the POST handler for tests.
func (h *Handler) HandleLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.handleLogin(w, r)
}

// HandleSignupForTest exposes the signup POST handler for tests.
func (h *Handler) HandleSignupForTest(w http.ResponseWriter, r *http.Request) {
	h.handleSignup(w, r)
}

// HandleDemoLoginForTest exposes the demo login handler for tests.
func (h *Handler) HandleDemoLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.handleDemoLogin(w, r)
}

// HandleLogoutForTest exposes the logout handler for tests.
func (h *Handler) HandleLogoutForTest(w http.ResponseWriter, r *http.Request) {
	h.handleLogout(w, r)
}

type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
}

type signupForm struct {
	Name     string `validate:"required,min=2"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
}

type formPageData struct {
	Form   any
	Errors map[string]string
	// Redirect is echoed back so the return path survives a failed attempt.
	Redirect string
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, "pages/login.html", "Sign in", formPageData{
		Form:     loginForm{},
		Redirect: r.URL.Query().Get("redirect"),
	}, http.StatusOK)
}

func (h *Handler) showSignup(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, "pages/signup.html", "Create account", formPageData{Form: signupForm{}}, http.StatusOK)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	form := loginForm{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
	fieldErrors := h.validate(form)

	if len(fieldErrors) == 0 {
		account, err := h.service.Authenticate(r.Context(), form.Email, form.Password)
		if err != nil {
			fieldErrors["general"] = "Invalid email or password"
		} else {
			h.establishSession(w, r, account, shared.FlashMessage{Kind: "success", Message: "Welcome back"})
			http.Redirect(w, r, safeRedirect(r.PostFormValue("redirect")), http.StatusSeeOther)
			return
		}
	}

	h.renderForm(w, r, "pages/login.html", "Sign in", formPageData{
		Form:     form,
		Errors:   fieldErrors,
		Redirect: r.PostFormValue("redirect"),
	}, http.StatusBadRequest)
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	form := signupForm{
		Name:     r.PostFormValue("name"),
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
	fieldErrors := h.validate(form)

	if len(fieldErrors) == 0 {
		account, err := h.service.Signup(r.Context(), form.Name, form.Email, form.Password)
		switch {
		case err == nil:
			if h.enqueuer != nil {
				if err := h.enqueuer.EnqueueWelcomeEmail(r.Context(), account.Email, account.Name); err != nil {
					h.logger.Warn("enqueue welcome email", slog.Any("error", err))
				}
			}
			h.establishSession(w, r, account, shared.FlashMessage{Kind: "success", Message: "Welcome to Em-Sphere"})
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		case errors.Is(err, shared.ErrEmailTaken):
			fieldErrors["Email"] = "An account with this email already exists"
		default:
			h.logger.Error("signup", slog.Any("error", err))
			fieldErrors["general"] = "Could not create the account, try again"
		}
	}

	h.renderForm(w, r, "pages/signup.html", "Create account", formPageData{
		Form:   form,
		Errors: fieldErrors,
	}, http.StatusBadRequest)
}

func (h *Handler) handleDemoLogin(w http.ResponseWriter, r *http.Request) {
	account, err := h.service.DemoLogin(r.Context())
	if err != nil {
		h.logger.Error("demo login", slog.Any("error", err))
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	h.establishSession(w, r, account, shared.FlashMessage{Kind: "info", Message: "You are exploring the demo account"})
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if sess.ID != "" {
			if err := h.service.RemoveSession(r.Context(), sess.ID); err != nil {
				h.logger.Warn("remove session", slog.Any("error", err))
			}
		}
		h.sessionManager.Destroy(sess)
	}
	h.clearEvidenceCookies(w)
	http.Redirect(w, r, "/home", http.StatusSeeOther)
}

// establishSession binds the session to the account and writes the evidence
// cookies the request gate consumes.
func (h *Handler) establishSession(w http.ResponseWriter, r *http.Request, account *Account, flash shared.FlashMessage) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during login")
		return
	}
	sess.SetUser(strconv.FormatInt(account.ID, 10), string(account.Role))
	sess.AddFlash(flash)

	expiresAt := time.Now().Add(h.sessionManager.TTL())
	if err := h.service.RegisterSession(r.Context(), sess.ID, account.ID, expiresAt, r.RemoteAddr, r.UserAgent()); err != nil {
		h.logger.Warn("register session", slog.Any("error", err))
	}

	h.writeEvidenceCookies(w, sess.ID, account.User(), expiresAt)
}

func (h *Handler) writeEvidenceCookies(w http.ResponseWriter, token string, user *rbac.User, expiresAt time.Time) {
	snapshot, err := json.Marshal(user)
	if err != nil {
		h.logger.Error("marshal user snapshot", slog.Any("error", err))
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     gate.AuthTokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
		Expires:  expiresAt,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     gate.UserDataCookie,
		Value:    url.QueryEscape(string(snapshot)),
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
		Expires:  expiresAt,
	})
}

func (h *Handler) clearEvidenceCookies(w http.ResponseWriter) {
	for _, name := range []string{gate.AuthTokenCookie, gate.UserDataCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.secureCookies,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func (h *Handler) validate(form any) map[string]string {
	fieldErrors := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fieldErr := range verrs {
				fieldErrors[fieldErr.Field()] = messageFor(fieldErr)
			}
		} else {
			fieldErrors["general"] = "Invalid input"
		}
	}
	return fieldErrors
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, page, title string, data formPageData, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrfManager.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	viewData := view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if err := h.templates.Render(w, page, viewData); err != nil {
		h.logger.Error("render form page", slog.String("page", page), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func messageFor(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Enter a valid email address"
	case "min":
		return "Too short (minimum " + fieldErr.Param() + " characters)"
	}
	return "Invalid value"
}

// safeRedirect only honors site-local return paths; anything else lands on
// the dashboard.
func safeRedirect(target string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return "/dashboard"
	}
	return target
}
