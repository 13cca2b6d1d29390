package users

import (
	"time"

	"github.com/em-sphere/emsphere/internal/rbac"
)

// User represents a user account for management views.
type User struct {
	ID        int64
	Name      string
	Email     string
	Role      rbac.Role
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
