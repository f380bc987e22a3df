package ports

import (
	"context"

	"github.com/tiu-access/visit-access/internal/core/domain"
)

// TokenRepository persists activation tokens. Token values are unique.
type TokenRepository interface {
	Exists(ctx context.Context, value string) (bool, error)
	// Insert fails with domain.ErrTokenCollision on a duplicate value.
	Insert(ctx context.Context, token *domain.ActivationToken) error
	// Claim atomically moves a pending token of the given purpose to
	// consumed and returns it. Only one concurrent caller can succeed.
	// Absent tokens (or a purpose mismatch) yield domain.ErrTokenNotFound,
	// already consumed ones domain.ErrTokenConsumed.
	Claim(ctx context.Context, value string, purpose domain.TokenPurpose) (*domain.ActivationToken, error)
	// Release returns a claimed token to pending after its action failed.
	Release(ctx context.Context, value string) error
}
