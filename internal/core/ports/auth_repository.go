package ports

import (
	"context"

	"github.com/skinscan/api/internal/core/domain"
)

// AuthRepository defines the interface for user credential persistence.
// Create must return domain.ErrUserExists when the email is already taken and
// FindByEmail must return domain.ErrUserNotFound when no record matches.
type AuthRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
