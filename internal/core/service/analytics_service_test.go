package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/crmhub/crm-system/internal/core/domain"
	"github.com/crmhub/crm-system/internal/core/ports"
)

// memoryCache round-trips values through JSON like the Redis cache does.
type memoryCache struct {
	entries map[string][]byte
	fail    bool
}

func newMemoryCache() *memoryCache { return &memoryCache{entries: make(map[string][]byte)} }

func (c *memoryCache) Get(_ context.Context, key string, dest any) (bool, error) {
	if c.fail {
		return false, errors.New("cache down")
	}
	raw, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	if c.fail {
		return errors.New("cache down")
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	return nil
}

func seedAnalytics(t *testing.T) (*stubCustomerRepo, *stubInteractionRepo) {
	t.Helper()
	cs, is, customers, interactions := newCRMServices()
	ctx := context.Background()

	a, _ := cs.CreateCustomer(ctx, ports.CustomerInput{FirstName: "A", LastName: "A", Email: "a@acme.com", CustomerType: domain.CustomerVIP})
	b, _ := cs.CreateCustomer(ctx, ports.CustomerInput{FirstName: "B", LastName: "B", Email: "b@acme.com", CustomerType: domain.CustomerRegular})
	_, _ = cs.CreateCustomer(ctx, ports.CustomerInput{FirstName: "C", LastName: "C", Email: "c@globex.io", CustomerType: domain.CustomerRegular})

	dates := []struct {
		customer string
		kind     domain.InteractionType
		at       time.Time
	}{
		{a.ID, domain.InteractionPurchase, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)},
		{a.ID, domain.InteractionPurchase, time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)},
		{a.ID, domain.InteractionSupport, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)},
		{b.ID, domain.InteractionInquiry, time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC)},
	}
	for _, d := range dates {
		if _, err := is.CreateInteraction(ctx, ports.InteractionInput{
			CustomerID: d.customer, InteractionType: d.kind, InteractionDate: d.at,
		}); err != nil {
			t.Fatalf("seed interaction failed: %v", err)
		}
	}
	return customers, interactions
}

func TestAnalyticsService_CustomerStats(t *testing.T) {
	customers, interactions := seedAnalytics(t)
	svc := NewAnalyticsService(customers, interactions, nil, 0, zerolog.Nop())

	stats, err := svc.CustomerStats(context.Background())
	if err != nil {
		t.Fatalf("customer stats failed: %v", err)
	}
	if stats.TotalCustomers != 3 {
		t.Fatalf("expected 3 customers, got %d", stats.TotalCustomers)
	}
	if stats.CustomersByStatus["REGULAR"] != 2 || stats.CustomersByStatus["VIP"] != 1 {
		t.Fatalf("unexpected by-type counts: %v", stats.CustomersByStatus)
	}
	if stats.CustomersByIndustry["acme.com"] != 2 || stats.CustomersByIndustry["globex.io"] != 1 {
		t.Fatalf("unexpected by-domain counts: %v", stats.CustomersByIndustry)
	}
}

func TestAnalyticsService_InteractionStats(t *testing.T) {
	customers, interactions := seedAnalytics(t)
	svc := NewAnalyticsService(customers, interactions, nil, 0, zerolog.Nop())

	stats, err := svc.InteractionStats(context.Background())
	if err != nil {
		t.Fatalf("interaction stats failed: %v", err)
	}
	if stats.TotalInteractions != 4 {
		t.Fatalf("expected 4 interactions, got %d", stats.TotalInteractions)
	}
	if stats.InteractionsByType["PURCHASE"] != 2 {
		t.Fatalf("unexpected by-type counts: %v", stats.InteractionsByType)
	}
	if want := 4.0 / 3.0; stats.AvgInteractionsPerCustomer != want {
		t.Fatalf("expected avg %v, got %v", want, stats.AvgInteractionsPerCustomer)
	}
}

func TestAnalyticsService_InteractionStats_Empty(t *testing.T) {
	svc := NewAnalyticsService(newStubCustomerRepo(), newStubInteractionRepo(), nil, 0, zerolog.Nop())

	stats, err := svc.InteractionStats(context.Background())
	if err != nil {
		t.Fatalf("interaction stats failed: %v", err)
	}
	if stats.TotalInteractions != 0 || stats.AvgInteractionsPerCustomer != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestAnalyticsService_MonthlyInteractions(t *testing.T) {
	customers, interactions := seedAnalytics(t)
	svc := NewAnalyticsService(customers, interactions, nil, 0, zerolog.Nop())

	months, err := svc.MonthlyInteractions(context.Background())
	if err != nil {
		t.Fatalf("monthly failed: %v", err)
	}
	if len(months) != 12 {
		t.Fatalf("expected 12 months, got %d", len(months))
	}
	if months[0].Month != "January" || months[11].Month != "December" {
		t.Fatalf("months out of order: %s .. %s", months[0].Month, months[11].Month)
	}
	want := map[string]int{"January": 2, "March": 1, "December": 1}
	for _, m := range months {
		if m.Count != want[m.Month] {
			t.Fatalf("%s: expected %d, got %d", m.Month, want[m.Month], m.Count)
		}
	}
}

func TestAnalyticsService_InteractionTypeDistribution(t *testing.T) {
	customers, interactions := seedAnalytics(t)
	svc := NewAnalyticsService(customers, interactions, nil, 0, zerolog.Nop())

	dist, err := svc.InteractionTypeDistribution(context.Background())
	if err != nil {
		t.Fatalf("distribution failed: %v", err)
	}
	if dist["PURCHASE"] != 2 || dist["SUPPORT"] != 1 || dist["INQUIRY"] != 1 {
		t.Fatalf("unexpected distribution: %v", dist)
	}
	if _, ok := dist["COMPLAINT"]; ok {
		t.Fatalf("absent types must not be reported")
	}
}

func TestAnalyticsService_ServesFromCache(t *testing.T) {
	customers, interactions := seedAnalytics(t)
	cache := newMemoryCache()
	svc := NewAnalyticsService(customers, interactions, cache, time.Minute, zerolog.Nop())
	ctx := context.Background()

	first, err := svc.MonthlyInteractions(ctx)
	if err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	calls := interactions.findAllCalls

	second, err := svc.MonthlyInteractions(ctx)
	if err != nil {
		t.Fatalf("second call failed: %v", err)
	}
	if interactions.findAllCalls != calls {
		t.Fatalf("expected cached result, repository queried again")
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("cached value differs at %d: %+v vs %+v", i, first[i], second[i])
		}
	}

	stats, err := svc.CustomerStats(ctx)
	if err != nil {
		t.Fatalf("customer stats failed: %v", err)
	}
	cachedStats, err := svc.CustomerStats(ctx)
	if err != nil || cachedStats.TotalCustomers != stats.TotalCustomers {
		t.Fatalf("cached customer stats: %+v / %v", cachedStats, err)
	}
}

func TestAnalyticsService_CacheFailureFallsBack(t *testing.T) {
	customers, interactions := seedAnalytics(t)
	cache := newMemoryCache()
	cache.fail = true
	svc := NewAnalyticsService(customers, interactions, cache, time.Minute, zerolog.Nop())

	dist, err := svc.InteractionTypeDistribution(context.Background())
	if err != nil {
		t.Fatalf("expected fallback computation, got %v", err)
	}
	if dist["PURCHASE"] != 2 {
		t.Fatalf("unexpected distribution: %v", dist)
	}
}
