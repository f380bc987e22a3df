package ports

import (
	"context"
	"time"

	"github.com/tiu-access/visit-access/internal/core/domain"
)

// UserRepository defines persistence operations for accounts.
type UserRepository interface {
	// Create inserts a user. A duplicate email yields domain.ErrUserExists.
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	SetPassword(ctx context.Context, id, encoded string, at time.Time) error
	List(ctx context.Context) ([]*domain.User, error)
}

// RoleRepository reads and writes the user_roles relation.
type RoleRepository interface {
	RolesOf(ctx context.Context, userID string) (domain.RoleSet, error)
	// Assign fails with domain.ErrRoleAssigned when the pair already exists.
	Assign(ctx context.Context, a domain.RoleAssignment) error
	// Remove fails with domain.ErrRoleNotAssigned when the pair does not exist.
	Remove(ctx context.Context, a domain.RoleAssignment) error
	// EnsureRoles upserts the static role reference data.
	EnsureRoles(ctx context.Context, roles []domain.Role) error
}
