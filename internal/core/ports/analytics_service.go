package ports

import (
	"context"
	"time"
)

// CustomerStats groups customers by type and by email domain.
type CustomerStats struct {
	TotalCustomers      int              `json:"totalCustomers"`
	CustomersByStatus   map[string]int64 `json:"customersByStatus"`
	CustomersByIndustry map[string]int64 `json:"customersByIndustry"`
}

// InteractionStats groups interactions by type.
type InteractionStats struct {
	TotalInteractions          int              `json:"totalInteractions"`
	InteractionsByType         map[string]int64 `json:"interactionsByType"`
	AvgInteractionsPerCustomer float64          `json:"avgInteractionsPerCustomer"`
}

// MonthlyCount is one calendar month of interaction volume.
type MonthlyCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// StatsCache stores computed analytics snapshots for a short time.
// Get reports false on a miss.
type StatsCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// AnalyticsService computes aggregate CRM statistics.
type AnalyticsService interface {
	CustomerStats(ctx context.Context) (*CustomerStats, error)
	InteractionStats(ctx context.Context) (*InteractionStats, error)
	MonthlyInteractions(ctx context.Context) ([]MonthlyCount, error)
	InteractionTypeDistribution(ctx context.Context) (map[string]int, error)
}
