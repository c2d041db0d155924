package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readlater/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(auth.SecurityHeadersMiddleware())

	// Sessions must be loaded before anything queues a message.
	if cfg.Sessions != nil {
		router.Use(cfg.Sessions.LoadAndSave())
	}

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	} else {
		router.Use(func(c *gin.Context) {
			c.Set(auth.ContextKeyUserID, auth.DefaultUserID)
			c.Next()
		})
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	if cfg.MediaDir != "" {
		router.Static("/media", cfg.MediaDir)
	}

	api := router.Group("/api")

	entries := NewEntriesController(cfg.Dispatcher, cfg.Entries)
	api.POST("/entries", entries.Add)
	api.GET("/entries", entries.List)
	api.POST("/entries/archive-all", entries.ArchiveAll)
	api.GET("/entries/:id", entries.Get)
	api.DELETE("/entries/:id", entries.Delete)
	api.GET("/entries/:id/markdown", entries.Markdown)
	api.POST("/entries/:id/favorite", entries.ToggleFavorite)
	api.POST("/entries/:id/archive", entries.ToggleArchive)
	api.POST("/entries/:id/tags", entries.AddTags)
	api.DELETE("/entries/:id/tags/:tagId", entries.RemoveTag)

	if cfg.Tags != nil {
		tags := NewTagsController(cfg.Tags)
		api.GET("/tags", tags.GetAllTags)
	}

	if cfg.Stats != nil {
		stats := NewStatsController(cfg.Stats)
		api.GET("/stats", stats.GetStats)
	}

	if cfg.Importer != nil {
		importer := NewImportController(cfg.Importer, cfg.ImportArchive, cfg.ImportSessions, cfg.MaxImportSize)
		api.GET("/import/providers", importer.Providers)
		api.GET("/import/sessions", importer.Sessions)
		api.POST("/import/:provider", importer.Import)
	}

	if cfg.Exporter != nil {
		exporter := NewExportController(cfg.Exporter, cfg.ExportAuditor)
		api.GET("/export", exporter.Export)
	}

	if cfg.Messages != nil {
		msgs := NewMessagesController(cfg.Messages)
		api.GET("/messages", msgs.Drain)
	}

	if cfg.Versions != nil {
		versions := NewVersionController(cfg.Versions)
		api.GET("/version/:which", versions.Latest)
		api.POST("/cache/empty", versions.EmptyCache)
	}

	if cfg.AuditEvents != nil {
		auditController := NewAuditController(cfg.AuditEvents)
		api.GET("/audit", auditController.GetAuditEvents)
	}

	if cfg.TaskStatus != nil && cfg.Maintenance != nil {
		tasksController := NewTasksController(cfg.TaskStatus, cfg.Maintenance)
		api.GET("/tasks/:id", tasksController.GetTaskStatus)
		api.GET("/maintenance", tasksController.MaintenanceStatus)
		api.POST("/maintenance/run", tasksController.RunMaintenance)
	}

	return router
}
