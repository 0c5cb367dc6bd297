package badger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// DocumentStorage implements the DocumentStorage interface for Badger
type DocumentStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewDocumentStorage creates a new DocumentStorage instance
func NewDocumentStorage(db *BadgerDB, logger arbor.ILogger) interfaces.DocumentStorage {
	return &DocumentStorage{
		db:     db,
		logger: logger,
	}
}

// SaveDocument inserts a rendered document snapshot.
func (s *DocumentStorage) SaveDocument(ctx context.Context, doc *models.RenderedDocument) error {
	if doc.ID == "" {
		return fmt.Errorf("document ID is required")
	}
	if doc.GeneratedAt.IsZero() {
		doc.GeneratedAt = time.Now()
	}

	if err := s.db.Store().Upsert(doc.ID, doc); err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}

	s.logger.Debug().Str("document_id", doc.ID).Str("template_id", doc.TemplateID).Msg("Document saved")
	return nil
}

// GetDocument returns a rendered document by ID.
func (s *DocumentStorage) GetDocument(ctx context.Context, id string) (*models.RenderedDocument, error) {
	var doc models.RenderedDocument
	if err := s.db.Store().Get(id, &doc); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, interfaces.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &doc, nil
}

// ListDocuments returns documents for a template, newest first. An empty
// templateID lists across all templates; limit <= 0 means no limit.
func (s *DocumentStorage) ListDocuments(ctx context.Context, templateID string, limit int) ([]*models.RenderedDocument, error) {
	query := badgerhold.Where("ID").Ne("")
	if templateID != "" {
		query = badgerhold.Where("TemplateID").Eq(templateID).Index("TemplateID")
	}

	var docs []models.RenderedDocument
	if err := s.db.Store().Find(&docs, query); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].GeneratedAt.After(docs[j].GeneratedAt)
	})

	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}

	result := make([]*models.RenderedDocument, len(docs))
	for i := range docs {
		result[i] = &docs[i]
	}
	return result, nil
}

// DeleteDocument removes a rendered document by ID.
func (s *DocumentStorage) DeleteDocument(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.RenderedDocument{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return interfaces.ErrDocumentNotFound
		}
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

// DeleteByTemplate removes every document generated from a template.
func (s *DocumentStorage) DeleteByTemplate(ctx context.Context, templateID string) error {
	if err := s.db.Store().DeleteMatching(&models.RenderedDocument{}, badgerhold.Where("TemplateID").Eq(templateID).Index("TemplateID")); err != nil {
		return fmt.Errorf("failed to delete documents for template: %w", err)
	}
	return nil
}
