package auth

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/em-sphere/emsphere/internal/rbac"
	"github.com/em-sphere/emsphere/internal/shared"
)

// SessionUserResolver resolves the current user from the request session.
// Implements guard.UserResolver: a missing or anonymous session yields a nil
// user without error.
type SessionUserResolver struct {
	Service *Service
}

// ResolveUser returns the identity record for the session user, nil when the
// visitor is anonymous.
func (res SessionUserResolver) ResolveUser(ctx context.Context, r *http.Request) (*rbac.User, error) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return nil, nil
	}
	raw := strings.TrimSpace(sess.User())
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	user, err := res.Service.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}
