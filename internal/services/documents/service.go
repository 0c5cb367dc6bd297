// Package documents manages templates and generates rendered documents
// from them.
package documents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/common"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
)

// documentShell wraps a rendered body that is not already a complete HTML
// document, so stored documents are always viewable standalone.
const documentShell = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 2rem auto; max-width: 48rem; line-height: 1.5; color: #1f2937; }
</style>
</head>
<body>
%s
</body>
</html>
`

// Service implements the DocumentService interface.
type Service struct {
	templates interfaces.TemplateStorage
	documents interfaces.DocumentStorage
	sources   interfaces.DataSourceStorage
	render    interfaces.RenderService
	logger    arbor.ILogger
}

// NewService creates a new document service.
func NewService(
	templates interfaces.TemplateStorage,
	documents interfaces.DocumentStorage,
	sources interfaces.DataSourceStorage,
	render interfaces.RenderService,
	logger arbor.ILogger,
) *Service {
	return &Service{
		templates: templates,
		documents: documents,
		sources:   sources,
		render:    render,
		logger:    logger,
	}
}

// SaveTemplate validates and persists a template. New templates get an ID
// assigned here.
func (s *Service) SaveTemplate(ctx context.Context, template *models.Template) error {
	if template.ID == "" {
		template.ID = common.NewTemplateID()
	}
	if err := template.Validate(); err != nil {
		return err
	}
	return s.templates.SaveTemplate(ctx, template)
}

// GetTemplate returns a template by ID.
func (s *Service) GetTemplate(ctx context.Context, id string) (*models.Template, error) {
	return s.templates.GetTemplate(ctx, id)
}

// ListTemplates returns the user's templates.
func (s *Service) ListTemplates(ctx context.Context, userID string) ([]*models.Template, error) {
	return s.templates.ListTemplates(ctx, userID)
}

// DeleteTemplate removes a template and the documents generated from it.
func (s *Service) DeleteTemplate(ctx context.Context, id string) error {
	if err := s.templates.DeleteTemplate(ctx, id); err != nil {
		return err
	}
	if err := s.documents.DeleteByTemplate(ctx, id); err != nil {
		return fmt.Errorf("failed to delete documents for template %s: %w", id, err)
	}
	s.logger.Info().Str("template_id", id).Msg("Template deleted")
	return nil
}

// Generate renders the template with the given caller variables, persists
// the result, and returns the stored document. A failing provider degrades
// its tokens; generation itself only fails on storage errors.
func (s *Service) Generate(ctx context.Context, templateID string, vars map[string]string) (*models.RenderedDocument, error) {
	template, err := s.templates.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}

	linked, err := s.linkedSources(ctx, template)
	if err != nil {
		return nil, err
	}

	html, err := s.render.Render(ctx, template.Body, vars, linked)
	if err != nil {
		return nil, fmt.Errorf("render failed: %w", err)
	}

	if !strings.Contains(strings.ToLower(html), "<html") {
		html = fmt.Sprintf(documentShell, template.Name, html)
	}

	doc := &models.RenderedDocument{
		ID:           common.NewDocumentID(),
		TemplateID:   template.ID,
		TemplateName: template.Name,
		HTML:         html,
		Variables:    vars,
		GeneratedAt:  time.Now(),
	}

	if err := s.documents.SaveDocument(ctx, doc); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("document_id", doc.ID).
		Str("template_id", template.ID).
		Msg("Document generated")

	return doc, nil
}

// GetDocument returns a rendered document by ID.
func (s *Service) GetDocument(ctx context.Context, id string) (*models.RenderedDocument, error) {
	return s.documents.GetDocument(ctx, id)
}

// ListDocuments returns documents for a template, newest first.
func (s *Service) ListDocuments(ctx context.Context, templateID string, limit int) ([]*models.RenderedDocument, error) {
	return s.documents.ListDocuments(ctx, templateID, limit)
}

// DeleteDocument removes a rendered document.
func (s *Service) DeleteDocument(ctx context.Context, id string) error {
	return s.documents.DeleteDocument(ctx, id)
}

// linkedSources loads the template's enabled source links. A link to a
// deleted source is skipped rather than failing generation.
func (s *Service) linkedSources(ctx context.Context, template *models.Template) ([]*models.DataSource, error) {
	var result []*models.DataSource
	for _, id := range template.EnabledSourceIDs() {
		source, err := s.sources.GetSource(ctx, id)
		if err != nil {
			if err == interfaces.ErrSourceNotFound {
				s.logger.Warn().
					Str("template_id", template.ID).
					Str("source_id", id).
					Msg("Template references missing data source")
				continue
			}
			return nil, err
		}
		result = append(result, source)
	}
	return result, nil
}

// Ensure Service implements DocumentService interface
var _ interfaces.DocumentService = (*Service)(nil)
