package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/set-night/shopapp/internal/config"
	"github.com/set-night/shopapp/internal/domain"
	"github.com/set-night/shopapp/internal/repository"
)

// activeOrderScanLimit bounds the attention scan to recent active orders
// rather than the full historical table.
const activeOrderScanLimit = 500

// AttentionService fetches the inputs for the attention scan and caches the
// report for a short TTL. The queue is advisory, not a source of truth, so
// staleness within the TTL is acceptable.
type AttentionService struct {
	store      *repository.Store
	thresholds domain.OpsThresholds

	mu       sync.Mutex
	cached   domain.OpsReport
	cachedAt time.Time
	cacheTTL time.Duration
}

func NewAttentionService(store *repository.Store, cfg *config.Config) *AttentionService {
	return &AttentionService{
		store: store,
		thresholds: domain.OpsThresholds{
			LowStockThreshold: cfg.LowStockThreshold,
			StaleOrderHours:   cfg.StaleOrderHours,
			IncludeLowStock:   cfg.IncludeLowStock,
			Limit:             cfg.AttentionLimit,
		},
		cacheTTL: config.AttentionCacheDuration,
	}
}

// Report returns the current attention queue, serving the cached report while
// it is fresh. force bypasses the cache.
func (s *AttentionService) Report(ctx context.Context, force bool) (domain.OpsReport, error) {
	s.mu.Lock()
	if !force && !s.cachedAt.IsZero() && time.Since(s.cachedAt) < s.cacheTTL {
		report := s.cached
		s.mu.Unlock()
		return report, nil
	}
	s.mu.Unlock()

	orders, err := s.store.ListActiveOrders(ctx, activeOrderScanLimit)
	if err != nil {
		return domain.OpsReport{}, fmt.Errorf("load active orders: %w", err)
	}
	products, err := s.store.ListAllVisibleProducts(ctx)
	if err != nil {
		return domain.OpsReport{}, fmt.Errorf("load products: %w", err)
	}
	variants, err := s.store.ListAllVariants(ctx)
	if err != nil {
		return domain.OpsReport{}, fmt.Errorf("load variants: %w", err)
	}

	report := BuildAttentionQueue(orders, products, variants, s.thresholds, time.Now())

	s.mu.Lock()
	s.cached = report
	s.cachedAt = time.Now()
	s.mu.Unlock()
	return report, nil
}
