package auth

import (
	"time"

	"github.com/em-sphere/emsphere/internal/rbac"
)

// Account represents a stored user account, credentials included. The
// access-control core never sees this type; it consumes the read-only
// identity record returned by User.
type Account struct {
	ID           int64
	Name         string
	Email        string
	Role         rbac.Role
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// User returns the identity record the core reads.
func (a *Account) User() *rbac.User {
	if a == nil {
		return nil
	}
	return &rbac.User{ID: a.ID, Name: a.Name, Email: a.Email, Role: a.Role}
}

// DemoEmail is the seeded account used by the one-click demo login.
const DemoEmail = "demo@emsphere.local"
