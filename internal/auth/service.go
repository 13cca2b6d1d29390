package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/em-sphere/emsphere/internal/rbac"
	"github.com/em-sphere/emsphere/internal/shared"
)

// Service wraps authentication business rules. The access-control core
// treats it as an external collaborator: it issues sessions and owns user
// records, while the gate and guard only read the evidence it leaves behind.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Account, error) {
	account, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !account.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return account, nil
}

// Signup registers a new student account and returns it logged-in ready.
// Every self-registered account starts as a student; role upgrades are an
// admin operation.
func (s *Service) Signup(ctx context.Context, name, email, password string) (*Account, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" {
		return nil, errors.New("auth: name and email required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return s.repo.CreateAccount(ctx, name, email, string(hash), string(rbac.RoleStudent))
}

// DemoLogin returns the seeded demo account without a password check.
func (s *Service) DemoLogin(ctx context.Context) (*Account, error) {
	account, err := s.repo.FindByEmail(ctx, DemoEmail)
	if err != nil {
		return nil, err
	}
	if !account.IsActive {
		return nil, shared.ErrNotFound
	}
	return account, nil
}

// UserByID resolves the read-only identity record for the core. Satisfies
// rbac.UserSource.
func (s *Service) UserByID(ctx context.Context, id int64) (*rbac.User, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !account.IsActive {
		return nil, shared.ErrNotFound
	}
	return account.User(), nil
}

// RegisterSession persists the session metadata for auditing.
func (s *Service) RegisterSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return s.repo.CreateSession(ctx, id, userID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}

var _ rbac.UserSource = (*Service)(nil)
