package documents

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
)

// memory-backed fakes for the storage interfaces the service touches.

type memTemplates struct {
	mu    sync.Mutex
	items map[string]*models.Template
}

func (m *memTemplates) SaveTemplate(ctx context.Context, t *models.Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[t.ID] = t
	return nil
}

func (m *memTemplates) GetTemplate(ctx context.Context, id string) (*models.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.items[id]
	if !ok {
		return nil, interfaces.ErrTemplateNotFound
	}
	return t, nil
}

func (m *memTemplates) ListTemplates(ctx context.Context, userID string) ([]*models.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Template
	for _, t := range m.items {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTemplates) DeleteTemplate(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return interfaces.ErrTemplateNotFound
	}
	delete(m.items, id)
	return nil
}

type memDocuments struct {
	mu    sync.Mutex
	items map[string]*models.RenderedDocument
}

func (m *memDocuments) SaveDocument(ctx context.Context, d *models.RenderedDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[d.ID] = d
	return nil
}

func (m *memDocuments) GetDocument(ctx context.Context, id string) (*models.RenderedDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.items[id]
	if !ok {
		return nil, interfaces.ErrDocumentNotFound
	}
	return d, nil
}

func (m *memDocuments) ListDocuments(ctx context.Context, templateID string, limit int) ([]*models.RenderedDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.RenderedDocument
	for _, d := range m.items {
		if templateID == "" || d.TemplateID == templateID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memDocuments) DeleteDocument(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return interfaces.ErrDocumentNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memDocuments) DeleteByTemplate(ctx context.Context, templateID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, d := range m.items {
		if d.TemplateID == templateID {
			delete(m.items, id)
		}
	}
	return nil
}

type memSources struct {
	items map[string]*models.DataSource
}

func (m *memSources) SaveSource(ctx context.Context, s *models.DataSource) error { return nil }
func (m *memSources) GetSource(ctx context.Context, id string) (*models.DataSource, error) {
	s, ok := m.items[id]
	if !ok {
		return nil, interfaces.ErrSourceNotFound
	}
	return s, nil
}
func (m *memSources) GetSourceByName(ctx context.Context, userID, name string) (*models.DataSource, error) {
	return nil, interfaces.ErrSourceNotFound
}
func (m *memSources) ListSources(ctx context.Context, userID string) ([]*models.DataSource, error) {
	return nil, nil
}
func (m *memSources) ListActiveSources(ctx context.Context) ([]*models.DataSource, error) {
	return nil, nil
}
func (m *memSources) DeleteSource(ctx context.Context, id string) error { return nil }

// staticRender records the sources it was given and substitutes nothing.
type staticRender struct {
	lastSources []*models.DataSource
	output      string
}

func (r *staticRender) Render(ctx context.Context, body string, vars map[string]string, sources []*models.DataSource) (string, error) {
	r.lastSources = sources
	if r.output != "" {
		return r.output, nil
	}
	return body, nil
}

var (
	_ interfaces.TemplateStorage   = (*memTemplates)(nil)
	_ interfaces.DocumentStorage   = (*memDocuments)(nil)
	_ interfaces.DataSourceStorage = (*memSources)(nil)
	_ interfaces.RenderService     = (*staticRender)(nil)
)

func newTestService(render interfaces.RenderService, sources map[string]*models.DataSource) (*Service, *memTemplates, *memDocuments) {
	templates := &memTemplates{items: map[string]*models.Template{}}
	docs := &memDocuments{items: map[string]*models.RenderedDocument{}}
	service := NewService(templates, docs, &memSources{items: sources}, render, arbor.NewLogger())
	return service, templates, docs
}

func TestSaveTemplate_AssignsID(t *testing.T) {
	service, _, _ := newTestService(&staticRender{}, nil)

	template := &models.Template{UserID: "user-1", Name: "Report", Body: "<p>x</p>"}
	require.NoError(t, service.SaveTemplate(context.Background(), template))
	assert.True(t, strings.HasPrefix(template.ID, "tpl_"))
}

func TestSaveTemplate_RejectsInvalid(t *testing.T) {
	service, _, _ := newTestService(&staticRender{}, nil)

	err := service.SaveTemplate(context.Background(), &models.Template{UserID: "user-1", Name: "No body"})
	require.Error(t, err)
}

func TestGenerate_PersistsDocument(t *testing.T) {
	source := &models.DataSource{ID: "src_1", Name: "weather", Active: true}
	render := &staticRender{output: "<p>rendered</p>"}
	service, templates, docs := newTestService(render, map[string]*models.DataSource{"src_1": source})
	ctx := context.Background()

	templates.SaveTemplate(ctx, &models.Template{
		ID:     "tpl_1",
		UserID: "user-1",
		Name:   "Report",
		Body:   "<p>{{weather.temp}}</p>",
		Sources: []models.TemplateSource{
			{SourceID: "src_1", Enabled: true},
			{SourceID: "src_disabled", Enabled: false},
		},
	})

	doc, err := service.Generate(ctx, "tpl_1", map[string]string{"name": "Ana"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(doc.ID, "doc_"))
	assert.Equal(t, "tpl_1", doc.TemplateID)
	assert.Equal(t, "Report", doc.TemplateName)
	assert.Equal(t, map[string]string{"name": "Ana"}, doc.Variables)
	// A partial body is wrapped into a complete document
	assert.Contains(t, doc.HTML, "<!DOCTYPE html>")
	assert.Contains(t, doc.HTML, "<p>rendered</p>")

	// Only the enabled link reached the renderer
	require.Len(t, render.lastSources, 1)
	assert.Equal(t, "src_1", render.lastSources[0].ID)

	stored, err := docs.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.HTML, stored.HTML)
}

func TestGenerate_MissingSourceLinkSkipped(t *testing.T) {
	render := &staticRender{}
	service, templates, _ := newTestService(render, nil)
	ctx := context.Background()

	templates.SaveTemplate(ctx, &models.Template{
		ID: "tpl_1", UserID: "user-1", Name: "Report", Body: "x",
		Sources: []models.TemplateSource{{SourceID: "src_gone", Enabled: true}},
	})

	_, err := service.Generate(ctx, "tpl_1", nil)
	require.NoError(t, err)
	assert.Empty(t, render.lastSources)
}

func TestGenerate_CompleteHTMLNotWrapped(t *testing.T) {
	render := &staticRender{output: "<html><body>done</body></html>"}
	service, templates, _ := newTestService(render, nil)
	ctx := context.Background()

	templates.SaveTemplate(ctx, &models.Template{ID: "tpl_1", UserID: "user-1", Name: "Full", Body: "x"})

	doc, err := service.Generate(ctx, "tpl_1", nil)
	require.NoError(t, err)
	assert.Equal(t, "<html><body>done</body></html>", doc.HTML)
}

func TestGenerate_UnknownTemplate(t *testing.T) {
	service, _, _ := newTestService(&staticRender{}, nil)

	_, err := service.Generate(context.Background(), "tpl_missing", nil)
	assert.ErrorIs(t, err, interfaces.ErrTemplateNotFound)
}

func TestDeleteTemplate_CascadesDocuments(t *testing.T) {
	service, templates, docs := newTestService(&staticRender{}, nil)
	ctx := context.Background()

	templates.SaveTemplate(ctx, &models.Template{ID: "tpl_1", UserID: "user-1", Name: "Report", Body: "x"})
	docs.SaveDocument(ctx, &models.RenderedDocument{ID: "doc_1", TemplateID: "tpl_1", HTML: "x"})
	docs.SaveDocument(ctx, &models.RenderedDocument{ID: "doc_2", TemplateID: "tpl_other", HTML: "y"})

	require.NoError(t, service.DeleteTemplate(ctx, "tpl_1"))

	_, err := docs.GetDocument(ctx, "doc_1")
	assert.ErrorIs(t, err, interfaces.ErrDocumentNotFound)
	_, err = docs.GetDocument(ctx, "doc_2")
	require.NoError(t, err)
}
