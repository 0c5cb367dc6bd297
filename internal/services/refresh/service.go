// Package refresh decides which data sources have gone stale and sweeps
// them with bounded parallelism.
package refresh

import (
	"context"
	"sync/atomic"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
	"golang.org/x/sync/errgroup"
)

// DefaultCacheKey is the cache key used by background refreshes. Renders
// populate field-specific keys on demand; the sweep keeps a baseline value
// warm per source.
const DefaultCacheKey = "default"

// Service implements the RefreshService interface.
type Service struct {
	sources     interfaces.DataSourceStorage
	cache       interfaces.CacheService
	logger      arbor.ILogger
	concurrency int
}

// NewService creates a new refresh service.
func NewService(sources interfaces.DataSourceStorage, cache interfaces.CacheService, concurrency int, logger arbor.ILogger) *Service {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Service{
		sources:     sources,
		cache:       cache,
		concurrency: concurrency,
		logger:      logger,
	}
}

// SourcesNeedingRefresh returns the subset of the given sources whose cache
// is missing or expired. Pure decision logic, no fetches.
func (s *Service) SourcesNeedingRefresh(ctx context.Context, sources []*models.DataSource) ([]*models.DataSource, error) {
	var stale []*models.DataSource
	for _, source := range sources {
		needs, err := s.cache.NeedsRefresh(ctx, source)
		if err != nil {
			return nil, err
		}
		if needs {
			stale = append(stale, source)
		}
	}
	return stale, nil
}

// RefreshAll sweeps all active sources and refreshes the stale ones in
// parallel. A failing source is logged and skipped; the sweep continues.
// Returns the number of sources successfully refreshed.
func (s *Service) RefreshAll(ctx context.Context) (int, error) {
	active, err := s.sources.ListActiveSources(ctx)
	if err != nil {
		return 0, err
	}

	stale, err := s.SourcesNeedingRefresh(ctx, active)
	if err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		s.logger.Debug().Int("active", len(active)).Msg("No sources need refresh")
		return 0, nil
	}

	s.logger.Info().
		Int("active", len(active)).
		Int("stale", len(stale)).
		Msg("Refreshing stale data sources")

	var refreshed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, source := range stale {
		src := source
		g.Go(func() error {
			if _, err := s.cache.GetOrFetch(gctx, src, DefaultCacheKey, map[string]string{}); err != nil {
				s.logger.Warn().
					Str("source_id", src.ID).
					Str("name", src.Name).
					Err(err).
					Msg("Source refresh failed")
				return nil
			}
			refreshed.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return int(refreshed.Load()), err
	}

	return int(refreshed.Load()), nil
}

// Ensure Service implements RefreshService interface
var _ interfaces.RefreshService = (*Service)(nil)
