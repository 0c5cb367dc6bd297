package badger

import (
	"context"
	"fmt"
	"sort"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// DataPointStorage implements the DataPointStorage interface for Badger.
// Writes are append-only; each refresh inserts a new revision and superseded
// revisions are removed by PruneRevisions.
type DataPointStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewDataPointStorage creates a new DataPointStorage instance
func NewDataPointStorage(db *BadgerDB, logger arbor.ILogger) interfaces.DataPointStorage {
	return &DataPointStorage{
		db:     db,
		logger: logger,
	}
}

// SaveDataPoint inserts a new datapoint revision. The record is validated
// before the write; an insert never overwrites an existing revision.
func (s *DataPointStorage) SaveDataPoint(ctx context.Context, point *models.DataPoint) error {
	if point.ID == "" {
		return fmt.Errorf("datapoint ID is required")
	}
	if err := point.Validate(); err != nil {
		return fmt.Errorf("invalid datapoint: %w", err)
	}

	if err := s.db.Store().Insert(point.ID, point); err != nil {
		return fmt.Errorf("failed to save datapoint: %w", err)
	}
	return nil
}

// LatestFresh returns the newest non-expired datapoint for (sourceID, key),
// or nil when the source has no usable cached value under that key.
func (s *DataPointStorage) LatestFresh(ctx context.Context, sourceID, key string) (*models.DataPoint, error) {
	points, err := s.findByKey(sourceID, key)
	if err != nil {
		return nil, err
	}

	var latest *models.DataPoint
	for i := range points {
		if points[i].Expired() {
			continue
		}
		if latest == nil || points[i].FetchedAt.After(latest.FetchedAt) {
			latest = &points[i]
		}
	}
	return latest, nil
}

// Latest returns the most recently fetched datapoint for the source across
// all keys, expired or not. Used by refresh staleness decisions.
func (s *DataPointStorage) Latest(ctx context.Context, sourceID string) (*models.DataPoint, error) {
	var points []models.DataPoint
	if err := s.db.Store().Find(&points, badgerhold.Where("SourceID").Eq(sourceID).Index("SourceID")); err != nil {
		return nil, fmt.Errorf("failed to find datapoints: %w", err)
	}

	var latest *models.DataPoint
	for i := range points {
		if latest == nil || points[i].FetchedAt.After(latest.FetchedAt) {
			latest = &points[i]
		}
	}
	return latest, nil
}

// ListBySource returns all datapoints for a source, newest first.
func (s *DataPointStorage) ListBySource(ctx context.Context, sourceID string) ([]*models.DataPoint, error) {
	var points []models.DataPoint
	if err := s.db.Store().Find(&points, badgerhold.Where("SourceID").Eq(sourceID).Index("SourceID")); err != nil {
		return nil, fmt.Errorf("failed to list datapoints: %w", err)
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].FetchedAt.After(points[j].FetchedAt)
	})

	result := make([]*models.DataPoint, len(points))
	for i := range points {
		result[i] = &points[i]
	}
	return result, nil
}

// CountBySource returns the number of stored datapoints for a source.
func (s *DataPointStorage) CountBySource(ctx context.Context, sourceID string) (int, error) {
	count, err := s.db.Store().Count(&models.DataPoint{}, badgerhold.Where("SourceID").Eq(sourceID).Index("SourceID"))
	if err != nil {
		return 0, fmt.Errorf("failed to count datapoints: %w", err)
	}
	return int(count), nil
}

// DeleteBySource removes every datapoint belonging to a source.
func (s *DataPointStorage) DeleteBySource(ctx context.Context, sourceID string) error {
	if err := s.db.Store().DeleteMatching(&models.DataPoint{}, badgerhold.Where("SourceID").Eq(sourceID).Index("SourceID")); err != nil {
		return fmt.Errorf("failed to delete datapoints: %w", err)
	}
	return nil
}

// PruneRevisions deletes all but the newest keep revisions for (sourceID,
// key). A non-positive keep is a no-op.
func (s *DataPointStorage) PruneRevisions(ctx context.Context, sourceID, key string, keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}

	points, err := s.findByKey(sourceID, key)
	if err != nil {
		return 0, err
	}
	if len(points) <= keep {
		return 0, nil
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].FetchedAt.After(points[j].FetchedAt)
	})

	deleted := 0
	for i := keep; i < len(points); i++ {
		if err := s.db.Store().Delete(points[i].ID, &models.DataPoint{}); err != nil {
			if err == badgerhold.ErrNotFound {
				continue
			}
			return deleted, fmt.Errorf("failed to prune datapoint %s: %w", points[i].ID, err)
		}
		deleted++
	}

	if deleted > 0 {
		s.logger.Debug().
			Str("source_id", sourceID).
			Str("key", key).
			Int("deleted", deleted).
			Msg("Pruned datapoint revisions")
	}
	return deleted, nil
}

func (s *DataPointStorage) findByKey(sourceID, key string) ([]models.DataPoint, error) {
	var points []models.DataPoint
	err := s.db.Store().Find(&points, badgerhold.Where("SourceID").Eq(sourceID).Index("SourceID").And("Key").Eq(key))
	if err != nil {
		return nil, fmt.Errorf("failed to find datapoints: %w", err)
	}
	return points, nil
}
