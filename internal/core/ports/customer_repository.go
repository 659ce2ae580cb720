package ports

import (
	"context"

	"github.com/crmhub/crm-system/internal/core/domain"
)

// CustomerRepository defines persistence operations for customers.
type CustomerRepository interface {
	// Create assigns the ID. An email collision yields domain.ErrCustomerExists.
	Create(ctx context.Context, c *domain.Customer) error
	FindByID(ctx context.Context, id string) (*domain.Customer, error)
	FindAll(ctx context.Context) ([]*domain.Customer, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, c *domain.Customer) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// InteractionRepository defines persistence operations for interactions.
type InteractionRepository interface {
	Create(ctx context.Context, i *domain.Interaction) error
	FindByID(ctx context.Context, id string) (*domain.Interaction, error)
	FindByCustomerID(ctx context.Context, customerID string) ([]*domain.Interaction, error)
	FindAll(ctx context.Context) ([]*domain.Interaction, error)
	Update(ctx context.Context, i *domain.Interaction) error
	Delete(ctx context.Context, id string) error
	DeleteByCustomerID(ctx context.Context, customerID string) (int64, error)
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status domain.InteractionStatus) (int64, error)
}
