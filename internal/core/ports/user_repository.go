package ports

import (
	"context"

	"github.com/crmhub/crm-system/internal/core/domain"
)

// UserRepository is the credential store backing the auth service.
//
// Lookups by username or id return domain.ErrUserNotFound when nothing matches.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// Save inserts the user when ID is empty and replaces it otherwise.
	// A username collision yields domain.ErrUserExists.
	Save(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindAll(ctx context.Context) ([]*domain.User, error)
	Delete(ctx context.Context, user *domain.User) error
	CountByRole(ctx context.Context, role domain.Role) (int64, error)
}
