// Package sources manages data source configurations.
package sources

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/common"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
)

// Service implements the SourceService interface.
type Service struct {
	storage interfaces.DataSourceStorage
	logger  arbor.ILogger
}

// NewService creates a new source service.
func NewService(storage interfaces.DataSourceStorage, logger arbor.ILogger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// CreateSource validates and persists a new data source. The ID is assigned
// here; a caller-provided ID is ignored.
func (s *Service) CreateSource(ctx context.Context, source *models.DataSource) error {
	source.ID = common.NewSourceID()

	if err := source.Validate(); err != nil {
		return err
	}

	if err := s.storage.SaveSource(ctx, source); err != nil {
		return err
	}

	s.logger.Info().
		Str("source_id", source.ID).
		Str("type", source.Type).
		Str("name", source.Name).
		Msg("Data source created")
	return nil
}

// UpdateSource validates and persists changes to an existing source. An
// empty incoming API key keeps the stored credential.
func (s *Service) UpdateSource(ctx context.Context, source *models.DataSource) error {
	existing, err := s.storage.GetSource(ctx, source.ID)
	if err != nil {
		return err
	}

	if source.APIKey == "" {
		source.APIKey = existing.APIKey
	}
	source.CreatedAt = existing.CreatedAt

	if err := source.Validate(); err != nil {
		return err
	}

	if err := s.storage.SaveSource(ctx, source); err != nil {
		return err
	}

	s.logger.Info().Str("source_id", source.ID).Msg("Data source updated")
	return nil
}

// GetSource returns a source by ID.
func (s *Service) GetSource(ctx context.Context, id string) (*models.DataSource, error) {
	if id == "" {
		return nil, fmt.Errorf("source ID is required")
	}
	return s.storage.GetSource(ctx, id)
}

// ListSources returns the user's sources.
func (s *Service) ListSources(ctx context.Context, userID string) ([]*models.DataSource, error) {
	return s.storage.ListSources(ctx, userID)
}

// DeleteSource removes a source and its cached datapoints.
func (s *Service) DeleteSource(ctx context.Context, id string) error {
	if err := s.storage.DeleteSource(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("source_id", id).Msg("Data source deleted")
	return nil
}

// Ensure Service implements SourceService interface
var _ interfaces.SourceService = (*Service)(nil)
