package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/crmhub/crm-system/internal/core/domain"
	"github.com/crmhub/crm-system/internal/core/ports"
	"github.com/crmhub/crm-system/internal/pkg/metrics"
)

type CustomerService struct {
	customers    ports.CustomerRepository
	interactions ports.InteractionRepository
	logger       zerolog.Logger
	now          func() time.Time
}

var _ ports.CustomerService = (*CustomerService)(nil)

func NewCustomerService(customers ports.CustomerRepository, interactions ports.InteractionRepository, logger zerolog.Logger) *CustomerService {
	return &CustomerService{
		customers:    customers,
		interactions: interactions,
		logger:       logger,
		now:          time.Now,
	}
}

// CreateCustomer stores a new customer. Emails are unique.
func (s *CustomerService) CreateCustomer(ctx context.Context, in ports.CustomerInput) (*domain.Customer, error) {
	c, err := s.fromInput(in)
	if err != nil {
		return nil, err
	}

	exists, err := s.customers.ExistsByEmail(ctx, c.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, domain.ErrCustomerExists
	}

	if err := s.customers.Create(ctx, c); err != nil {
		return nil, err
	}

	metrics.CustomersCreatedTotal.WithLabelValues(string(c.CustomerType)).Inc()
	s.logger.Info().Str("customer_id", c.ID).Str("customer_type", string(c.CustomerType)).Msg("customer created")
	return c, nil
}

func (s *CustomerService) ListCustomers(ctx context.Context) ([]*domain.Customer, error) {
	return s.customers.FindAll(ctx)
}

func (s *CustomerService) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	return s.customers.FindByID(ctx, id)
}

// UpdateCustomer replaces the writable fields. The registration date is kept
// unless the input carries one.
func (s *CustomerService) UpdateCustomer(ctx context.Context, id string, in ports.CustomerInput) (*domain.Customer, error) {
	existing, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.RegistrationDate.IsZero() {
		in.RegistrationDate = existing.RegistrationDate
	}
	next, err := s.fromInput(in)
	if err != nil {
		return nil, err
	}

	if next.Email != existing.Email {
		exists, err := s.customers.ExistsByEmail(ctx, next.Email)
		if err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if exists {
			return nil, domain.ErrCustomerExists
		}
	}

	next.ID = existing.ID
	if err := s.customers.Update(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// DeleteCustomer removes the customer and every interaction logged against it.
func (s *CustomerService) DeleteCustomer(ctx context.Context, id string) error {
	if _, err := s.customers.FindByID(ctx, id); err != nil {
		return err
	}

	removed, err := s.interactions.DeleteByCustomerID(ctx, id)
	if err != nil {
		return fmt.Errorf("delete interactions: %w", err)
	}
	if err := s.customers.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("customer_id", id).Int64("interactions_removed", removed).Msg("customer deleted")
	return nil
}

func (s *CustomerService) fromInput(in ports.CustomerInput) (*domain.Customer, error) {
	c := &domain.Customer{
		FirstName:        strings.TrimSpace(in.FirstName),
		LastName:         strings.TrimSpace(in.LastName),
		Email:            strings.ToLower(strings.TrimSpace(in.Email)),
		PhoneNumber:      strings.TrimSpace(in.PhoneNumber),
		CustomerType:     in.CustomerType,
		RegistrationDate: in.RegistrationDate,
	}
	if c.FirstName == "" || c.LastName == "" {
		return nil, fmt.Errorf("%w: first and last name are required", domain.ErrInvalidInput)
	}
	if !strings.Contains(c.Email, "@") {
		return nil, fmt.Errorf("%w: email is invalid", domain.ErrInvalidInput)
	}
	if c.CustomerType == "" {
		c.CustomerType = domain.CustomerRegular
	}
	if !c.CustomerType.Valid() {
		return nil, fmt.Errorf("%w: unknown customer type %q", domain.ErrInvalidInput, c.CustomerType)
	}
	if c.RegistrationDate.IsZero() {
		y, m, d := s.now().UTC().Date()
		c.RegistrationDate = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	return c, nil
}
