package users

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/white-jotter/white-jotter/internal/auth"
)

// defaultResetPassword is the credential installed by an admin reset; the
// user is expected to change it on next login.
const defaultResetPassword = "123"

// RepositoryPort defines data access for user administration.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
	UpdateUserStatus(ctx context.Context, id int64, enabled bool) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UpdateUsername(ctx context.Context, id int64, username string) error
}

// RoleAssignmentPort is the user-role slice of the RBAC graph. The
// user_role join is written only through it.
type RoleAssignmentPort interface {
	SetUserRoles(ctx context.Context, userID int64, roleIDs []int64) error
}

// Service handles administrative user management.
type Service struct {
	repo  RepositoryPort
	graph RoleAssignmentPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, graph RoleAssignmentPort) *Service {
	return &Service{repo: repo, graph: graph}
}

// ListUsers returns all users with their role assignments.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// UpdateUserStatus toggles the enabled flag. Disabling takes effect on the
// next login attempt; existing sessions are not revoked here.
func (s *Service) UpdateUserStatus(ctx context.Context, id int64, enabled bool) error {
	return s.repo.UpdateUserStatus(ctx, id, enabled)
}

// ResetPassword installs the default credential for the account.
func (s *Service) ResetPassword(ctx context.Context, id int64) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(defaultResetPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("users: hash password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, id, string(hash))
}

// EditUser renames the account and replaces its role assignments.
func (s *Service) EditUser(ctx context.Context, id int64, username string, roleIDs []int64) error {
	if err := s.repo.UpdateUsername(ctx, id, auth.NormalizeUsername(username)); err != nil {
		return err
	}
	return s.graph.SetUserRoles(ctx, id, roleIDs)
}
