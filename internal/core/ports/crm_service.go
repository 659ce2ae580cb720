package ports

import (
	"context"
	"time"

	"github.com/crmhub/crm-system/internal/core/domain"
)

// CustomerInput carries the writable fields of a customer.
type CustomerInput struct {
	FirstName        string
	LastName         string
	Email            string
	PhoneNumber      string
	CustomerType     domain.CustomerType
	RegistrationDate time.Time // zero means today
}

// CustomerService defines use-case operations for customers.
type CustomerService interface {
	CreateCustomer(ctx context.Context, in CustomerInput) (*domain.Customer, error)
	ListCustomers(ctx context.Context) ([]*domain.Customer, error)
	GetCustomer(ctx context.Context, id string) (*domain.Customer, error)
	UpdateCustomer(ctx context.Context, id string, in CustomerInput) (*domain.Customer, error)
	DeleteCustomer(ctx context.Context, id string) error
}

// InteractionInput carries the writable fields of an interaction.
type InteractionInput struct {
	CustomerID      string
	InteractionType domain.InteractionType
	Description     string
	Status          domain.InteractionStatus
	InteractionDate time.Time // zero means now
}

// InteractionCounts is the summary served by the interaction count endpoint.
type InteractionCounts struct {
	TotalInteractions   int64 `json:"totalInteractions"`
	PendingInteractions int64 `json:"pendingInteractions"`
}

// InteractionService defines use-case operations for interactions.
type InteractionService interface {
	CreateInteraction(ctx context.Context, in InteractionInput) (*domain.Interaction, error)
	GetInteraction(ctx context.Context, id string) (*domain.Interaction, error)
	UpdateInteraction(ctx context.Context, id string, in InteractionInput) (*domain.Interaction, error)
	DeleteInteraction(ctx context.Context, id string) error
	ListByCustomer(ctx context.Context, customerID string) ([]*domain.Interaction, error)
	Counts(ctx context.Context) (*InteractionCounts, error)
}
