package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/crmhub/crm-system/internal/core/ports"
	"github.com/crmhub/crm-system/internal/pkg/metrics"
)

const (
	keyCustomerStats       = "analytics:customer-stats"
	keyInteractionStats    = "analytics:interaction-stats"
	keyMonthlyInteractions = "analytics:monthly-interactions"
	keyInteractionTypes    = "analytics:interaction-types"
)

// AnalyticsService computes CRM aggregates. Results are cached for a short
// TTL when a cache is configured; cache failures fall back to computing.
type AnalyticsService struct {
	customers    ports.CustomerRepository
	interactions ports.InteractionRepository
	cache        ports.StatsCache
	ttl          time.Duration
	logger       zerolog.Logger
}

var _ ports.AnalyticsService = (*AnalyticsService)(nil)

// NewAnalyticsService builds the service. cache may be nil and a non-positive
// ttl disables caching.
func NewAnalyticsService(
	customers ports.CustomerRepository,
	interactions ports.InteractionRepository,
	cache ports.StatsCache,
	ttl time.Duration,
	logger zerolog.Logger,
) *AnalyticsService {
	return &AnalyticsService{
		customers:    customers,
		interactions: interactions,
		cache:        cache,
		ttl:          ttl,
		logger:       logger,
	}
}

// cached serves key from the cache or computes and stores it.
func cached[T any](ctx context.Context, s *AnalyticsService, key string, compute func(context.Context) (T, error)) (T, error) {
	if s.cache == nil || s.ttl <= 0 {
		return compute(ctx)
	}

	var hit T
	found, err := s.cache.Get(ctx, key, &hit)
	switch {
	case err != nil:
		metrics.AnalyticsCacheTotal.WithLabelValues("error").Inc()
		s.logger.Warn().Err(err).Str("key", key).Msg("analytics cache read failed")
	case found:
		metrics.AnalyticsCacheTotal.WithLabelValues("hit").Inc()
		return hit, nil
	default:
		metrics.AnalyticsCacheTotal.WithLabelValues("miss").Inc()
	}

	v, err := compute(ctx)
	if err != nil {
		return v, err
	}
	if err := s.cache.Set(ctx, key, v, s.ttl); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("analytics cache write failed")
	}
	return v, nil
}

func (s *AnalyticsService) CustomerStats(ctx context.Context) (*ports.CustomerStats, error) {
	return cached(ctx, s, keyCustomerStats, s.computeCustomerStats)
}

func (s *AnalyticsService) computeCustomerStats(ctx context.Context) (*ports.CustomerStats, error) {
	customers, err := s.customers.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := &ports.CustomerStats{
		TotalCustomers:      len(customers),
		CustomersByStatus:   make(map[string]int64),
		CustomersByIndustry: make(map[string]int64),
	}
	for _, c := range customers {
		stats.CustomersByStatus[string(c.CustomerType)]++
		// email domain stands in for industry
		if _, domainPart, ok := strings.Cut(c.Email, "@"); ok && domainPart != "" {
			stats.CustomersByIndustry[domainPart]++
		}
	}
	return stats, nil
}

func (s *AnalyticsService) InteractionStats(ctx context.Context) (*ports.InteractionStats, error) {
	return cached(ctx, s, keyInteractionStats, s.computeInteractionStats)
}

func (s *AnalyticsService) computeInteractionStats(ctx context.Context) (*ports.InteractionStats, error) {
	interactions, err := s.interactions.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := &ports.InteractionStats{
		TotalInteractions:  len(interactions),
		InteractionsByType: make(map[string]int64),
	}
	for _, i := range interactions {
		stats.InteractionsByType[string(i.InteractionType)]++
	}

	if len(interactions) > 0 {
		customers, err := s.customers.Count(ctx)
		if err != nil {
			return nil, err
		}
		if customers > 0 {
			stats.AvgInteractionsPerCustomer = float64(len(interactions)) / float64(customers)
		}
	}
	return stats, nil
}

// MonthlyInteractions counts interactions per calendar month, January first,
// every month present even when zero.
func (s *AnalyticsService) MonthlyInteractions(ctx context.Context) ([]ports.MonthlyCount, error) {
	return cached(ctx, s, keyMonthlyInteractions, s.computeMonthlyInteractions)
}

func (s *AnalyticsService) computeMonthlyInteractions(ctx context.Context) ([]ports.MonthlyCount, error) {
	interactions, err := s.interactions.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	var counts [12]int
	for _, i := range interactions {
		if i.InteractionDate.IsZero() {
			continue
		}
		counts[i.InteractionDate.Month()-1]++
	}

	out := make([]ports.MonthlyCount, 0, 12)
	for m := time.January; m <= time.December; m++ {
		out = append(out, ports.MonthlyCount{Month: m.String(), Count: counts[m-1]})
	}
	return out, nil
}

func (s *AnalyticsService) InteractionTypeDistribution(ctx context.Context) (map[string]int, error) {
	return cached(ctx, s, keyInteractionTypes, s.computeInteractionTypes)
}

func (s *AnalyticsService) computeInteractionTypes(ctx context.Context) (map[string]int, error) {
	interactions, err := s.interactions.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	dist := make(map[string]int)
	for _, i := range interactions {
		dist[string(i.InteractionType)]++
	}
	return dist, nil
}
