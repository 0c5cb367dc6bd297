// Package cache provides the time-bounded cache of fetched provider values
// and the fetch-or-serve algorithm over it.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/common"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
	"golang.org/x/sync/singleflight"
)

// Service implements the CacheService interface over datapoint storage and
// the provider fetch dispatcher.
type Service struct {
	datapoints interfaces.DataPointStorage
	dispatcher interfaces.FetchDispatcher
	logger     arbor.ILogger

	// Serializes concurrent fetches per (source, key)
	flight singleflight.Group

	// Revisions kept per (source, key) after each write
	keepRevisions int
}

// NewService creates a new cache service. keepRevisions bounds the stored
// history per (source, key); values <= 0 fall back to the default.
func NewService(datapoints interfaces.DataPointStorage, dispatcher interfaces.FetchDispatcher, keepRevisions int, logger arbor.ILogger) *Service {
	if keepRevisions <= 0 {
		keepRevisions = common.DefaultRetentionRevisions
	}
	return &Service{
		datapoints:    datapoints,
		dispatcher:    dispatcher,
		keepRevisions: keepRevisions,
		logger:        logger,
	}
}

// Get returns the most recent non-expired cached value for the key, or nil
// when none exists. Never triggers a fetch.
func (s *Service) Get(ctx context.Context, source *models.DataSource, key string) (*models.DataPoint, error) {
	return s.datapoints.LatestFresh(ctx, source.ID, key)
}

// GetOrFetch returns a fresh cached value for (source, key), fetching through
// the dispatcher on miss or expiry. Concurrent misses for the same pair share
// a single in-flight fetch. A failed fetch returns an error and leaves the
// cache untouched, so the next caller retries immediately.
func (s *Service) GetOrFetch(ctx context.Context, source *models.DataSource, key string, params map[string]string) (map[string]interface{}, error) {
	cached, err := s.datapoints.LatestFresh(ctx, source.ID, key)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return cached.Value, nil
	}

	flightKey := source.ID + "\x00" + key
	value, err, _ := s.flight.Do(flightKey, func() (interface{}, error) {
		// A concurrent caller may have populated the cache while this
		// call waited for the flight slot
		cached, err := s.datapoints.LatestFresh(ctx, source.ID, key)
		if err != nil {
			return nil, err
		}
		if cached != nil {
			return cached.Value, nil
		}

		return s.fetchAndStore(ctx, source, key, params)
	})
	if err != nil {
		return nil, err
	}

	return value.(map[string]interface{}), nil
}

// NeedsRefresh reports whether the source has no cached values at all, or its
// most recently fetched value has expired. Read-only.
func (s *Service) NeedsRefresh(ctx context.Context, source *models.DataSource) (bool, error) {
	latest, err := s.datapoints.Latest(ctx, source.ID)
	if err != nil {
		return false, err
	}
	if latest == nil {
		return true, nil
	}
	return latest.Expired(), nil
}

// fetchAndStore performs one dispatcher fetch and persists the result as a
// new datapoint revision. Failure results never reach the cache.
func (s *Service) fetchAndStore(ctx context.Context, source *models.DataSource, key string, params map[string]string) (map[string]interface{}, error) {
	result, err := s.dispatcher.Fetch(ctx, source, params)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		s.logger.Warn().
			Str("source_id", source.ID).
			Str("key", key).
			Str("error", result.Error).
			Msg("Provider fetch failed")
		return nil, fmt.Errorf("fetch failed for source %s: %s", source.Name, result.Error)
	}

	now := time.Now()
	expires := now.Add(source.CacheDuration())
	point := &models.DataPoint{
		ID:        common.NewDataPointID(),
		SourceID:  source.ID,
		Key:       key,
		Value:     result.Data,
		FetchedAt: now,
		ExpiresAt: &expires,
		Metadata:  result.Metadata,
	}

	if err := s.datapoints.SaveDataPoint(ctx, point); err != nil {
		return nil, fmt.Errorf("failed to cache fetched value: %w", err)
	}

	if _, err := s.datapoints.PruneRevisions(ctx, source.ID, key, s.keepRevisions); err != nil {
		// Pruning is housekeeping; the fetched value is already usable
		s.logger.Warn().Err(err).Str("source_id", source.ID).Msg("Failed to prune datapoint revisions")
	}

	s.logger.Debug().
		Str("source_id", source.ID).
		Str("key", key).
		Str("expires_at", expires.Format(time.RFC3339)).
		Msg("Cached fetched value")

	return result.Data, nil
}

// Ensure Service implements CacheService interface
var _ interfaces.CacheService = (*Service)(nil)
