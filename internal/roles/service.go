package roles

import (
	"context"
	"errors"
	"fmt"

	"github.com/white-jotter/white-jotter/internal/rbac"
	"github.com/white-jotter/white-jotter/internal/shared"
)

// ErrRoleUpdateFailed is the single fault surfaced when an atomic join
// replacement cannot commit. The pre-operation state is guaranteed intact.
var ErrRoleUpdateFailed = errors.New("roles: role update failed")

// GraphPort is the slice of the RBAC graph the workflow writes through.
// Join tables are mutated only via these replace operations.
type GraphPort interface {
	ListRolesHydrated(ctx context.Context) ([]rbac.Role, error)
	AllPermissions(ctx context.Context) ([]rbac.Permission, error)
	GetRole(ctx context.Context, id int64) (rbac.Role, error)
	SaveRole(ctx context.Context, role rbac.Role) (rbac.Role, error)
	SaveRoleWithPermissions(ctx context.Context, role rbac.Role, permissionIDs []int64) (rbac.Role, error)
	UpdateRoleStatus(ctx context.Context, id int64, enabled bool) error
	ReplaceRoleMenus(ctx context.Context, roleID int64, menuIDs []int64) error
	ReplaceRoleAssociations(ctx context.Context, roleID int64, permissionIDs, menuIDs []int64) error
}

// Service orchestrates role administration. Edits to a role's associations
// are full replacements, never incremental add/remove.
type Service struct {
	graph GraphPort
}

// NewService builds a Service instance.
func NewService(graph GraphPort) *Service {
	return &Service{graph: graph}
}

// ListRoles returns all roles hydrated with their permission and menu
// associations.
func (s *Service) ListRoles(ctx context.Context) ([]rbac.Role, error) {
	return s.graph.ListRolesHydrated(ctx)
}

// ListPermissions returns the full permission catalog.
func (s *Service) ListPermissions(ctx context.Context) ([]rbac.Permission, error) {
	return s.graph.AllPermissions(ctx)
}

// SaveRole upserts role metadata. Associations are edited separately.
func (s *Service) SaveRole(ctx context.Context, role rbac.Role) (rbac.Role, error) {
	return s.graph.SaveRole(ctx, role)
}

// UpdateRoleStatus toggles the enabled flag of an existing role.
func (s *Service) UpdateRoleStatus(ctx context.Context, roleID int64, enabled bool) error {
	if err := s.graph.UpdateRoleStatus(ctx, roleID, enabled); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.ErrNotFound
		}
		return fmt.Errorf("roles: update status: %w", err)
	}
	return nil
}

// EditRole saves role metadata and replaces its permission set as one unit.
// A failure on either side leaves the pre-call metadata and permissions.
func (s *Service) EditRole(ctx context.Context, role rbac.Role, permissionIDs []int64) error {
	if _, err := s.graph.SaveRoleWithPermissions(ctx, role, permissionIDs); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.ErrNotFound
		}
		return fmt.Errorf("%w: %v", ErrRoleUpdateFailed, err)
	}
	return nil
}

// EditRolePermissionsAndMenus replaces both association sets of a role as
// one unit: a failure partway leaves the pre-call state.
func (s *Service) EditRolePermissionsAndMenus(ctx context.Context, roleID int64, permissionIDs, menuIDs []int64) error {
	if _, err := s.graph.GetRole(ctx, roleID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.ErrNotFound
		}
		return fmt.Errorf("roles: load role: %w", err)
	}
	if err := s.graph.ReplaceRoleAssociations(ctx, roleID, permissionIDs, menuIDs); err != nil {
		return fmt.Errorf("%w: %v", ErrRoleUpdateFailed, err)
	}
	return nil
}

// UpdateRoleMenus replaces the role's menu set.
func (s *Service) UpdateRoleMenus(ctx context.Context, roleID int64, menuIDs []int64) error {
	if err := s.graph.ReplaceRoleMenus(ctx, roleID, menuIDs); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.ErrNotFound
		}
		return fmt.Errorf("%w: %v", ErrRoleUpdateFailed, err)
	}
	return nil
}
