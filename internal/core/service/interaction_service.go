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

type InteractionService struct {
	interactions ports.InteractionRepository
	customers    ports.CustomerRepository
	logger       zerolog.Logger
	now          func() time.Time
}

var _ ports.InteractionService = (*InteractionService)(nil)

func NewInteractionService(interactions ports.InteractionRepository, customers ports.CustomerRepository, logger zerolog.Logger) *InteractionService {
	return &InteractionService{
		interactions: interactions,
		customers:    customers,
		logger:       logger,
		now:          time.Now,
	}
}

// CreateInteraction logs an interaction against an existing customer.
func (s *InteractionService) CreateInteraction(ctx context.Context, in ports.InteractionInput) (*domain.Interaction, error) {
	if strings.TrimSpace(in.CustomerID) == "" {
		return nil, fmt.Errorf("%w: customer id is required", domain.ErrInvalidInput)
	}
	if _, err := s.customers.FindByID(ctx, in.CustomerID); err != nil {
		return nil, err
	}

	i, err := s.fromInput(in)
	if err != nil {
		return nil, err
	}
	i.CustomerID = in.CustomerID

	if err := s.interactions.Create(ctx, i); err != nil {
		return nil, err
	}

	metrics.InteractionsCreatedTotal.WithLabelValues(string(i.InteractionType)).Inc()
	s.logger.Info().
		Str("interaction_id", i.ID).
		Str("customer_id", i.CustomerID).
		Str("interaction_type", string(i.InteractionType)).
		Msg("interaction created")
	return i, nil
}

func (s *InteractionService) GetInteraction(ctx context.Context, id string) (*domain.Interaction, error) {
	return s.interactions.FindByID(ctx, id)
}

// UpdateInteraction replaces type, description, status and date. The owning
// customer never changes.
func (s *InteractionService) UpdateInteraction(ctx context.Context, id string, in ports.InteractionInput) (*domain.Interaction, error) {
	existing, err := s.interactions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.InteractionDate.IsZero() {
		in.InteractionDate = existing.InteractionDate
	}
	next, err := s.fromInput(in)
	if err != nil {
		return nil, err
	}
	next.ID = existing.ID
	next.CustomerID = existing.CustomerID

	if err := s.interactions.Update(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

func (s *InteractionService) DeleteInteraction(ctx context.Context, id string) error {
	return s.interactions.Delete(ctx, id)
}

func (s *InteractionService) ListByCustomer(ctx context.Context, customerID string) ([]*domain.Interaction, error) {
	return s.interactions.FindByCustomerID(ctx, customerID)
}

func (s *InteractionService) Counts(ctx context.Context) (*ports.InteractionCounts, error) {
	total, err := s.interactions.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count interactions: %w", err)
	}
	pending, err := s.interactions.CountByStatus(ctx, domain.InteractionPending)
	if err != nil {
		return nil, fmt.Errorf("count pending interactions: %w", err)
	}
	return &ports.InteractionCounts{TotalInteractions: total, PendingInteractions: pending}, nil
}

func (s *InteractionService) fromInput(in ports.InteractionInput) (*domain.Interaction, error) {
	i := &domain.Interaction{
		InteractionType: in.InteractionType,
		Description:     strings.TrimSpace(in.Description),
		Status:          in.Status,
		InteractionDate: in.InteractionDate,
	}
	if !i.InteractionType.Valid() {
		return nil, fmt.Errorf("%w: unknown interaction type %q", domain.ErrInvalidInput, i.InteractionType)
	}
	if i.Status == "" {
		i.Status = domain.InteractionOpen
	}
	if !i.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown interaction status %q", domain.ErrInvalidInput, i.Status)
	}
	if i.InteractionDate.IsZero() {
		i.InteractionDate = s.now().UTC()
	}
	return i, nil
}
