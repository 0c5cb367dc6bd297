package interfaces

import (
	"context"
	"errors"

	"github.com/ternarybob/folio/internal/models"
)

// Storage sentinel errors
var (
	ErrSourceNotFound   = errors.New("data source not found")
	ErrDuplicateName    = errors.New("name already in use")
	ErrTemplateNotFound = errors.New("template not found")
	ErrDocumentNotFound = errors.New("document not found")
)

// DataSourceStorage - interface for data source persistence.
// Names are unique per owner; deleting a source cascades to its datapoints.
type DataSourceStorage interface {
	SaveSource(ctx context.Context, source *models.DataSource) error
	GetSource(ctx context.Context, id string) (*models.DataSource, error)
	GetSourceByName(ctx context.Context, userID, name string) (*models.DataSource, error)
	ListSources(ctx context.Context, userID string) ([]*models.DataSource, error)
	ListActiveSources(ctx context.Context) ([]*models.DataSource, error)
	DeleteSource(ctx context.Context, id string) error
}

// DataPointStorage - interface for cached value persistence.
// Writes are append-only; retention is enforced via PruneRevisions.
type DataPointStorage interface {
	SaveDataPoint(ctx context.Context, point *models.DataPoint) error

	// LatestFresh returns the most recent non-expired datapoint for
	// (sourceID, key), or nil if none exists.
	LatestFresh(ctx context.Context, sourceID, key string) (*models.DataPoint, error)

	// Latest returns the most recently fetched datapoint for the source
	// across all keys, or nil if the source has none.
	Latest(ctx context.Context, sourceID string) (*models.DataPoint, error)

	ListBySource(ctx context.Context, sourceID string) ([]*models.DataPoint, error)
	CountBySource(ctx context.Context, sourceID string) (int, error)
	DeleteBySource(ctx context.Context, sourceID string) error

	// PruneRevisions deletes all but the newest keep datapoints for
	// (sourceID, key). Returns the number deleted.
	PruneRevisions(ctx context.Context, sourceID, key string, keep int) (int, error)
}

// TemplateStorage - interface for template persistence.
type TemplateStorage interface {
	SaveTemplate(ctx context.Context, template *models.Template) error
	GetTemplate(ctx context.Context, id string) (*models.Template, error)
	ListTemplates(ctx context.Context, userID string) ([]*models.Template, error)
	DeleteTemplate(ctx context.Context, id string) error
}

// DocumentStorage - interface for rendered document persistence.
type DocumentStorage interface {
	SaveDocument(ctx context.Context, doc *models.RenderedDocument) error
	GetDocument(ctx context.Context, id string) (*models.RenderedDocument, error)
	ListDocuments(ctx context.Context, templateID string, limit int) ([]*models.RenderedDocument, error)
	DeleteDocument(ctx context.Context, id string) error
	DeleteByTemplate(ctx context.Context, templateID string) error
}

// StorageManager - composite interface for all storage operations
type StorageManager interface {
	DataSourceStorage() DataSourceStorage
	DataPointStorage() DataPointStorage
	TemplateStorage() TemplateStorage
	DocumentStorage() DocumentStorage
	Close() error
}
