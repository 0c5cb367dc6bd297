// Package interfaces provides service interfaces for dependency injection.
package interfaces

import (
	"context"

	"github.com/ternarybob/folio/internal/models"
)

// CacheService provides the time-bounded cache of fetched values and the
// fetch-or-serve algorithm over it.
type CacheService interface {
	// Get returns the most recent non-expired cached value for the key,
	// or nil if none exists. Never triggers a fetch.
	Get(ctx context.Context, source *models.DataSource, key string) (*models.DataPoint, error)

	// GetOrFetch returns a fresh cached value, fetching through the
	// dispatcher on miss or expiry. Concurrent misses for the same
	// (source, key) are serialized: only one fetch is in flight at a time
	// and all waiters receive its result. A failed fetch returns an error
	// and writes nothing to the cache.
	GetOrFetch(ctx context.Context, source *models.DataSource, key string, params map[string]string) (map[string]interface{}, error)

	// NeedsRefresh reports whether the source has no cached values, or its
	// most recently fetched value has expired. Read-only, no side effects.
	NeedsRefresh(ctx context.Context, source *models.DataSource) (bool, error)
}

// RenderService resolves template tokens from caller variables and cached
// provider data.
type RenderService interface {
	// Render substitutes every resolvable {{token}} in the body. Caller
	// variables take precedence over dynamically resolved values; tokens
	// matched by neither remain verbatim in the output. A render always
	// completes - a failing provider degrades its tokens to a visible
	// marker rather than aborting.
	Render(ctx context.Context, body string, vars map[string]string, sources []*models.DataSource) (string, error)
}

// RefreshService decides which sources need a fetch and sweeps them.
type RefreshService interface {
	// SourcesNeedingRefresh partitions the given sources, returning the
	// subset whose cache is missing or expired. Pure decision logic.
	SourcesNeedingRefresh(ctx context.Context, sources []*models.DataSource) ([]*models.DataSource, error)

	// RefreshAll sweeps all active sources and refreshes the stale ones
	// with bounded parallelism. Returns the number refreshed.
	RefreshAll(ctx context.Context) (int, error)
}

// DocumentService manages templates and generates rendered documents.
type DocumentService interface {
	SaveTemplate(ctx context.Context, template *models.Template) error
	GetTemplate(ctx context.Context, id string) (*models.Template, error)
	ListTemplates(ctx context.Context, userID string) ([]*models.Template, error)
	DeleteTemplate(ctx context.Context, id string) error

	// Generate renders the template with the given caller variables,
	// persists the result, and returns the stored document.
	Generate(ctx context.Context, templateID string, vars map[string]string) (*models.RenderedDocument, error)

	GetDocument(ctx context.Context, id string) (*models.RenderedDocument, error)
	ListDocuments(ctx context.Context, templateID string, limit int) ([]*models.RenderedDocument, error)
	DeleteDocument(ctx context.Context, id string) error
}

// SourceService manages data source configurations.
type SourceService interface {
	CreateSource(ctx context.Context, source *models.DataSource) error
	UpdateSource(ctx context.Context, source *models.DataSource) error
	GetSource(ctx context.Context, id string) (*models.DataSource, error)
	ListSources(ctx context.Context, userID string) ([]*models.DataSource, error)
	DeleteSource(ctx context.Context, id string) error
}

// SchedulerService manages cron-based refresh scheduling.
type SchedulerService interface {
	Start() error
	Stop() error
	IsRunning() bool

	// TriggerRefreshNow runs the refresh sweep immediately.
	TriggerRefreshNow() error
}
