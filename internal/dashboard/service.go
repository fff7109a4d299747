package dashboard

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const recentLimit = 5

// Service coordinates the aggregate queries with the cache layer.
// Concurrent requests for the same owner share one computation.
type Service struct {
	repo  Repository
	cache *Cache
	group singleflight.Group
	now   func() time.Time
}

// NewService wires a Repository with a Cache helper.
func NewService(repo Repository, cache *Cache) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		now:   time.Now,
	}
}

// Stats returns the owner's dashboard, served from cache when fresh.
func (s *Service) Stats(ctx context.Context, ownerID string) (*Stats, error) {
	key, err := s.cache.BuildKey(ctx, "dashboard", "stats", ownerID)
	if err != nil {
		return nil, fmt.Errorf("dashboard: cache key: %w", err)
	}
	var stats Stats
	err = s.cache.FetchJSON(ctx, key, &stats, func(ctx context.Context) (interface{}, error) {
		result := s.group.DoChan(key, func() (interface{}, error) {
			return s.compute(ctx, ownerID)
		})
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case res := <-result:
			return res.Val, res.Err
		}
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// Warm recomputes the owner's dashboard and refreshes the cached copy.
func (s *Service) Warm(ctx context.Context, ownerID string) error {
	stats, err := s.compute(ctx, ownerID)
	if err != nil {
		return err
	}
	key, err := s.cache.BuildKey(ctx, "dashboard", "stats", ownerID)
	if err != nil {
		return fmt.Errorf("dashboard: cache key: %w", err)
	}
	return s.cache.Store(ctx, key, stats)
}

// WarmAll refreshes the dashboard of every owner who has invoices.
// Failures for individual owners do not stop the sweep.
func (s *Service) WarmAll(ctx context.Context) error {
	owners, err := s.repo.Owners(ctx)
	if err != nil {
		return err
	}
	var firstErr error
	for _, owner := range owners {
		if err := s.Warm(ctx, owner); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("dashboard: warm %s: %w", owner, err)
		}
	}
	return firstErr
}

// Invalidate drops every cached dashboard.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

func (s *Service) compute(ctx context.Context, ownerID string) (*Stats, error) {
	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	stats := &Stats{GeneratedAt: now}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		count, err := s.repo.CountInvoicesSince(ctx, ownerID, midnight)
		if err != nil {
			return err
		}
		stats.InvoicesToday = count
		return nil
	})
	g.Go(func() error {
		count, err := s.repo.CountInvoicesSince(ctx, ownerID, monthStart)
		if err != nil {
			return err
		}
		stats.InvoicesThisMonth = count
		return nil
	})
	g.Go(func() error {
		total, err := s.repo.TotalRevenue(ctx, ownerID)
		if err != nil {
			return err
		}
		stats.TotalRevenue = total
		return nil
	})
	g.Go(func() error {
		recent, err := s.repo.RecentInvoices(ctx, ownerID, recentLimit)
		if err != nil {
			return err
		}
		stats.RecentInvoices = recent
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard: compute: %w", err)
	}
	return stats, nil
}
