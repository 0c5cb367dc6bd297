package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/common"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// DataSourceStorage implements the DataSourceStorage interface for Badger.
// API keys are encrypted before hitting disk and decrypted on every read, so
// the rest of the system only ever sees plaintext credentials.
type DataSourceStorage struct {
	db         *BadgerDB
	datapoints interfaces.DataPointStorage
	secrets    *common.Secrets
	logger     arbor.ILogger
}

// NewDataSourceStorage creates a new DataSourceStorage instance
func NewDataSourceStorage(db *BadgerDB, datapoints interfaces.DataPointStorage, secrets *common.Secrets, logger arbor.ILogger) interfaces.DataSourceStorage {
	return &DataSourceStorage{
		db:         db,
		datapoints: datapoints,
		secrets:    secrets,
		logger:     logger,
	}
}

// SaveSource upserts a data source. Names are unique per owner; saving a
// source whose name belongs to a different source of the same user fails
// with ErrDuplicateName.
func (s *DataSourceStorage) SaveSource(ctx context.Context, source *models.DataSource) error {
	if source.ID == "" {
		return fmt.Errorf("source ID is required")
	}

	existing, err := s.GetSourceByName(ctx, source.UserID, source.Name)
	if err != nil && err != interfaces.ErrSourceNotFound {
		return err
	}
	if existing != nil && existing.ID != source.ID {
		return interfaces.ErrDuplicateName
	}

	now := time.Now()
	if source.CreatedAt.IsZero() {
		source.CreatedAt = now
	}
	source.UpdatedAt = now

	// Encrypt the credential in a copy so the caller keeps plaintext
	record := *source
	encrypted, err := s.secrets.Encrypt(source.APIKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt api key: %w", err)
	}
	record.APIKey = encrypted

	if err := s.db.Store().Upsert(record.ID, &record); err != nil {
		return fmt.Errorf("failed to save data source: %w", err)
	}

	s.logger.Debug().Str("source_id", source.ID).Str("type", source.Type).Msg("Data source saved")
	return nil
}

// GetSource returns a source by ID with its credential decrypted.
func (s *DataSourceStorage) GetSource(ctx context.Context, id string) (*models.DataSource, error) {
	var source models.DataSource
	if err := s.db.Store().Get(id, &source); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, interfaces.ErrSourceNotFound
		}
		return nil, fmt.Errorf("failed to get data source: %w", err)
	}

	if err := s.decrypt(&source); err != nil {
		return nil, err
	}
	return &source, nil
}

// GetSourceByName returns the user's source with the given name.
func (s *DataSourceStorage) GetSourceByName(ctx context.Context, userID, name string) (*models.DataSource, error) {
	var sources []models.DataSource
	err := s.db.Store().Find(&sources, badgerhold.Where("UserID").Eq(userID).And("Name").Eq(name))
	if err != nil {
		return nil, fmt.Errorf("failed to find data source: %w", err)
	}
	if len(sources) == 0 {
		return nil, interfaces.ErrSourceNotFound
	}

	source := sources[0]
	if err := s.decrypt(&source); err != nil {
		return nil, err
	}
	return &source, nil
}

// ListSources returns all sources owned by the user.
func (s *DataSourceStorage) ListSources(ctx context.Context, userID string) ([]*models.DataSource, error) {
	var sources []models.DataSource
	if err := s.db.Store().Find(&sources, badgerhold.Where("UserID").Eq(userID)); err != nil {
		return nil, fmt.Errorf("failed to list data sources: %w", err)
	}
	return s.decryptAll(sources)
}

// ListActiveSources returns every active source across all users. Used by
// the refresh sweep.
func (s *DataSourceStorage) ListActiveSources(ctx context.Context) ([]*models.DataSource, error) {
	var sources []models.DataSource
	if err := s.db.Store().Find(&sources, badgerhold.Where("Active").Eq(true)); err != nil {
		return nil, fmt.Errorf("failed to list active data sources: %w", err)
	}
	return s.decryptAll(sources)
}

// DeleteSource removes a source and all of its cached datapoints.
func (s *DataSourceStorage) DeleteSource(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.DataSource{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return interfaces.ErrSourceNotFound
		}
		return fmt.Errorf("failed to delete data source: %w", err)
	}

	if err := s.datapoints.DeleteBySource(ctx, id); err != nil {
		return fmt.Errorf("failed to delete datapoints for source %s: %w", id, err)
	}

	s.logger.Debug().Str("source_id", id).Msg("Data source deleted")
	return nil
}

func (s *DataSourceStorage) decrypt(source *models.DataSource) error {
	plaintext, err := s.secrets.Decrypt(source.APIKey)
	if err != nil {
		return fmt.Errorf("failed to decrypt api key for source %s: %w", source.ID, err)
	}
	source.APIKey = plaintext
	return nil
}

func (s *DataSourceStorage) decryptAll(sources []models.DataSource) ([]*models.DataSource, error) {
	result := make([]*models.DataSource, len(sources))
	for i := range sources {
		if err := s.decrypt(&sources[i]); err != nil {
			return nil, err
		}
		result[i] = &sources[i]
	}
	return result, nil
}
