// Package app wires configuration, storage, services, and handlers into a
// runnable application.
package app

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/common"
	"github.com/ternarybob/folio/internal/handlers"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/providers"
	"github.com/ternarybob/folio/internal/services/cache"
	"github.com/ternarybob/folio/internal/services/documents"
	"github.com/ternarybob/folio/internal/services/refresh"
	"github.com/ternarybob/folio/internal/services/render"
	"github.com/ternarybob/folio/internal/services/scheduler"
	"github.com/ternarybob/folio/internal/services/sources"
	storagebadger "github.com/ternarybob/folio/internal/storage/badger"
)

// App holds all application dependencies
type App struct {
	Config  *common.Config
	Logger  arbor.ILogger
	Storage interfaces.StorageManager

	// Services
	CacheService     interfaces.CacheService
	RenderService    interfaces.RenderService
	RefreshService   interfaces.RefreshService
	DocumentService  interfaces.DocumentService
	SourceService    interfaces.SourceService
	SchedulerService interfaces.SchedulerService

	// Handlers
	APIHandler       *handlers.APIHandler
	SourceHandler    *handlers.SourceHandler
	TemplateHandler  *handlers.TemplateHandler
	DocumentHandler  *handlers.DocumentHandler
	SchedulerHandler *handlers.SchedulerHandler
}

// New creates a fully wired application from configuration.
func New(config *common.Config) (*App, error) {
	logger := common.GetLogger()

	secrets, err := common.NewSecrets(config.Secrets.Key)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secrets cipher: %w", err)
	}

	storage, err := storagebadger.NewManager(logger, &config.Storage.Badger, secrets, config.BadgerGCInterval())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	timeout, err := config.ProviderTimeout()
	if err != nil {
		return nil, err
	}

	dispatcher := providers.NewDispatcher(providers.Options{
		Timeout:   timeout,
		RateLimit: config.Providers.RateLimit,
		Logger:    logger,
	})

	cacheService := cache.NewService(storage.DataPointStorage(), dispatcher, config.Retention.Revisions, logger)
	renderService := render.NewService(cacheService, config.Refresh.Concurrency, logger)
	refreshService := refresh.NewService(storage.DataSourceStorage(), cacheService, config.Refresh.Concurrency, logger)
	schedulerService := scheduler.NewService(refreshService, config.Refresh, logger)
	sourceService := sources.NewService(storage.DataSourceStorage(), logger)
	documentService := documents.NewService(
		storage.TemplateStorage(),
		storage.DocumentStorage(),
		storage.DataSourceStorage(),
		renderService,
		logger,
	)

	app := &App{
		Config:  config,
		Logger:  logger,
		Storage: storage,

		CacheService:     cacheService,
		RenderService:    renderService,
		RefreshService:   refreshService,
		DocumentService:  documentService,
		SourceService:    sourceService,
		SchedulerService: schedulerService,

		APIHandler:       handlers.NewAPIHandler(),
		SourceHandler:    handlers.NewSourceHandler(sourceService, storage.DataPointStorage(), cacheService, logger),
		TemplateHandler:  handlers.NewTemplateHandler(documentService, logger),
		DocumentHandler:  handlers.NewDocumentHandler(documentService, logger),
		SchedulerHandler: handlers.NewSchedulerHandler(schedulerService, logger),
	}

	return app, nil
}

// Start launches background work: the refresh scheduler.
func (a *App) Start() error {
	return a.SchedulerService.Start()
}

// Close stops background work and releases storage.
func (a *App) Close() error {
	if err := a.SchedulerService.Stop(); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to stop scheduler")
	}
	return a.Storage.Close()
}
