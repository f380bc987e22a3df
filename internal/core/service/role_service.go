package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tiu-access/visit-access/internal/core/domain"
	"github.com/tiu-access/visit-access/internal/core/ports"
)

// RoleService answers permission checks against the latest committed role
// assignments. Nothing is cached between calls.
type RoleService struct {
	roles  ports.RoleRepository
	users  ports.UserRepository
	logger zerolog.Logger
}

func NewRoleService(roles ports.RoleRepository, users ports.UserRepository, logger zerolog.Logger) *RoleService {
	return &RoleService{roles: roles, users: users, logger: logger}
}

func (s *RoleService) RolesOf(ctx context.Context, userID string) (domain.RoleSet, error) {
	set, err := s.roles.RolesOf(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("roles of %s: %w", userID, err)
	}
	return set, nil
}

func (s *RoleService) HasRole(ctx context.Context, userID string, role domain.RoleID) (bool, error) {
	set, err := s.RolesOf(ctx, userID)
	if err != nil {
		return false, err
	}
	return set.Has(role), nil
}

// require fails with domain.ErrForbidden unless userID holds role.
func (s *RoleService) require(ctx context.Context, userID string, role domain.RoleID) error {
	ok, err := s.HasRole(ctx, userID, role)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s role required", domain.ErrForbidden, role)
	}
	return nil
}

// AssignRole grants role to the target user. Only admins may do this.
func (s *RoleService) AssignRole(ctx context.Context, actor domain.Actor, targetUserID string, role domain.RoleID) error {
	if err := s.require(ctx, actor.ID, domain.RoleAdmin); err != nil {
		return err
	}
	if !role.Valid() {
		return domain.ErrRoleNotFound
	}
	if _, err := s.users.FindByID(ctx, targetUserID); err != nil {
		return err
	}

	if err := s.roles.Assign(ctx, domain.RoleAssignment{UserID: targetUserID, RoleID: role}); err != nil {
		return err
	}

	s.logger.Info().
		Str("actor_id", actor.ID).
		Str("user_id", targetUserID).
		Str("role", role.String()).
		Msg("role assigned")
	return nil
}

// RemoveRole revokes role from the target user. Admins cannot strip their
// own roles.
func (s *RoleService) RemoveRole(ctx context.Context, actor domain.Actor, targetUserID string, role domain.RoleID) error {
	if err := s.require(ctx, actor.ID, domain.RoleAdmin); err != nil {
		return err
	}
	if targetUserID == actor.ID {
		return domain.ErrSelfRoleRemoval
	}
	if !role.Valid() {
		return domain.ErrRoleNotFound
	}

	if err := s.roles.Remove(ctx, domain.RoleAssignment{UserID: targetUserID, RoleID: role}); err != nil {
		return err
	}

	s.logger.Info().
		Str("actor_id", actor.ID).
		Str("user_id", targetUserID).
		Str("role", role.String()).
		Msg("role removed")
	return nil
}
