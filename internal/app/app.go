package app

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scaena/internal/common"
	"github.com/ternarybob/scaena/internal/handlers"
	"github.com/ternarybob/scaena/internal/interfaces"
	"github.com/ternarybob/scaena/internal/models"
	"github.com/ternarybob/scaena/internal/services/events"
	"github.com/ternarybob/scaena/internal/services/pipeline"
	"github.com/ternarybob/scaena/internal/services/scheduler"
	"github.com/ternarybob/scaena/internal/services/sections"
	"github.com/ternarybob/scaena/internal/storage"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Event-driven services
	EventService interfaces.EventService

	// Pipeline
	Taxonomy        []models.TaxonomyEntry
	PipelineService interfaces.PipelineService

	// Run retention (cron-based purge of stored runs)
	RetentionService *scheduler.RetentionService

	// HTTP handlers
	APIHandler      *handlers.APIHandler
	TimelineHandler *handlers.TimelineHandler
	RunHandler      *handlers.RunHandler
	WSHandler       *handlers.WebSocketHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Event service must exist before the WebSocket handler and pipeline
	// so both can publish/subscribe to run lifecycle events
	app.EventService = events.NewService(app.Logger)
	app.WSHandler = handlers.NewWebSocketHandler(app.EventService, app.Logger, &app.Config.WebSocket)

	if err := app.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := app.initHandlers(); err != nil {
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	logger.Info().
		Str("taxonomy_sections", fmt.Sprintf("%d", len(app.Taxonomy))).
		Bool("retention_enabled", cfg.Retention.Enabled).
		Msg("Application initialization complete")

	return app, nil
}

// initDatabase initializes the storage layer (Badger)
func (a *App) initDatabase() error {
	storageManager, err := storage.NewStorageManager(a.Logger, a.Config)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}

	a.StorageManager = storageManager
	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Storage.Badger.Path).
		Msg("Storage layer initialized")

	return nil
}

// initServices initializes business services in dependency order
func (a *App) initServices() error {
	// Taxonomy definitions drive section grouping; missing/empty dir
	// falls back to the built-in defaults
	taxonomy, err := sections.LoadTaxonomyFromDir(a.Config.Taxonomy.Dir, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to load taxonomy: %w", err)
	}
	a.Taxonomy = taxonomy

	a.PipelineService = pipeline.NewService(
		a.Config,
		a.Taxonomy,
		a.EventService,
		a.StorageManager.RunStorage(),
		a.Logger,
	)
	a.Logger.Debug().Msg("Pipeline service initialized")

	a.RetentionService = scheduler.NewRetentionService(
		&a.Config.Retention,
		a.StorageManager.RunStorage(),
		a.StorageManager.KeyValueStorage(),
		a.Logger,
	)
	if err := a.RetentionService.Start(); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to start retention service")
	}

	return nil
}

// initHandlers initializes all HTTP handlers
func (a *App) initHandlers() error {
	a.APIHandler = handlers.NewAPIHandler()
	// WSHandler already initialized in New() before the pipeline service

	a.TimelineHandler = handlers.NewTimelineHandler(a.PipelineService, a.Logger)
	a.RunHandler = handlers.NewRunHandler(a.StorageManager.RunStorage(), a.Logger)

	return nil
}

// Close closes all application resources
func (a *App) Close() error {
	if a.RetentionService != nil {
		a.RetentionService.Stop()
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}
