package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"railists/internal/cache"
	"railists/internal/core"
	"railists/internal/metrics"
)

// CollectionSource is the read side of a collection backend.
type CollectionSource interface {
	Load(ctx context.Context) (core.Collection, error)
	Version(ctx context.Context) (string, error)
}

// Reports bundles every view computed from one collection version.
type Reports struct {
	Version    string
	Collection core.Collection
	Stats      core.CollectionStats
	Depot      core.Depot
}

// ReportService builds reports and caches them by source version.
type ReportService struct {
	source CollectionSource
	cache  *cache.LRUCache[*Reports]
}

// NewReportService caches up to a handful of versions for ttl. A zero ttl
// recomputes on every call.
func NewReportService(source CollectionSource, ttl time.Duration) *ReportService {
	c := cache.NewLRUCache[*Reports](4, ttl)
	c.OnLookup(metrics.IncCacheLookup)
	return &ReportService{source: source, cache: c}
}

// Cache exposes the report cache for cleanup registration.
func (s *ReportService) Cache() *cache.LRUCache[*Reports] {
	return s.cache
}

// Reports returns the reports for the current collection version.
func (s *ReportService) Reports(ctx context.Context) (*Reports, error) {
	version, err := s.source.Version(ctx)
	if err != nil {
		return nil, fmt.Errorf("collection version: %w", err)
	}
	if r, ok := s.cache.Get(version); ok {
		return r, nil
	}

	c, err := s.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load collection: %w", err)
	}

	r, err := BuildReports(ctx, c)
	if err != nil {
		return nil, err
	}
	r.Version = version
	s.cache.Set(version, r)

	slog.DebugContext(ctx, "Reports computed", "version", version, "items", c.Len())
	return r, nil
}

// BuildReports computes stats and depot of a collection concurrently.
func BuildReports(ctx context.Context, c core.Collection) (*Reports, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r := &Reports{Collection: c}

	var g errgroup.Group
	g.Go(func() error {
		start := time.Now()
		r.Stats = core.ComputeStats(c.Items)
		metrics.ObserveReport("stats", metrics.ResultSuccess, time.Since(start))
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		r.Depot = core.BuildDepot(c.Items)
		metrics.ObserveReport("depot", metrics.ResultSuccess, time.Since(start))
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	metrics.SetCollection(c.Len(), r.Stats.TotalValue.Amount.InexactFloat64())
	return r, nil
}
