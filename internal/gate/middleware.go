package gate

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// Cookie names carrying the session evidence. The auth handler writes them on
// login and clears them on logout.
const (
	AuthTokenCookie = "auth-token"
	UserDataCookie  = "user-data"
)

// skipPrefixes lists request paths the gate never inspects: infrastructure
// endpoints and static assets.
var skipPrefixes = []string{"/healthz", "/metrics", "/static/", "/favicon.ico"}

// Middleware adapts the pure gate decision to the HTTP boundary. It reads the
// evidence cookies, asks the gate, and performs the redirect when one is
// ordered. Session state is never mutated here. observe, when non-nil,
// receives every decision for metrics.
func Middleware(g *Gate, logger *slog.Logger, observe func(Decision)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			for _, prefix := range skipPrefixes {
				if strings.HasPrefix(path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}

			decision := g.Decide(path, EvidenceFromRequest(r))
			if observe != nil {
				observe(decision)
			}
			switch decision.Action {
			case ActionRedirectLogin, ActionRedirectDashboard:
				if logger != nil {
					logger.Debug("gate redirect",
						slog.String("path", path),
						slog.String("target", decision.Target))
				}
				http.Redirect(w, r, decision.Target, http.StatusSeeOther)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// EvidenceFromRequest extracts the evidence cookies. The user snapshot is
// stored URL-encoded; an undecodable value is passed through raw so the gate
// treats it as a malformed snapshot.
func EvidenceFromRequest(r *http.Request) Evidence {
	var ev Evidence
	if c, err := r.Cookie(AuthTokenCookie); err == nil {
		ev.AuthToken = c.Value
	}
	if c, err := r.Cookie(UserDataCookie); err == nil {
		if decoded, err := url.QueryUnescape(c.Value); err == nil {
			ev.UserData = decoded
		} else {
			ev.UserData = c.Value
		}
	}
	return ev
}
