package users

import (
	"context"
	"fmt"

	"github.com/em-sphere/emsphere/internal/rbac"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
	UpdateRole(ctx context.Context, id int64, role string) error
}

// Service handles user management business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// ChangeRole moves a user to another role from the closed role set.
func (s *Service) ChangeRole(ctx context.Context, id int64, role rbac.Role) error {
	if !role.Valid() {
		return fmt.Errorf("users: unknown role %q", role)
	}
	return s.repo.UpdateRole(ctx, id, string(role))
}
