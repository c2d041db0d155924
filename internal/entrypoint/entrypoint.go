package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/readlater/internal/auth"
	"github.com/mrlokans/readlater/internal/config"
	"github.com/mrlokans/readlater/internal/exporters"
	http_controllers "github.com/mrlokans/readlater/internal/http"
	"github.com/mrlokans/readlater/internal/messages"
	"github.com/mrlokans/readlater/internal/scheduler"
	"github.com/mrlokans/readlater/internal/tasks"
)

// versionChannels are refreshed by the maintenance run.
var versionChannels = []string{"prod", "dev"}

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// SIGKILL cannot be caught, so only SIGINT and SIGTERM are handled.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work before the server stops accepting requests.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting readlater v%s", version)

	app, err := Open(cfg, false)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	sqlDB, err := app.DB.DB.DB()
	if err != nil {
		log.Fatalf("Failed to get SQL DB for sessions: %v", err)
	}
	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}
	queue := messages.NewSessionQueue(sessionManager.SessionManager)

	dispatcher := app.Dispatcher(queue)
	importer := app.Importer(dispatcher, queue)

	if cfg.Auth.Mode == config.AuthModeToken {
		log.Printf("Authentication mode: token")
	} else {
		log.Printf("Authentication mode: none (every request acts as user %d)", auth.DefaultUserID)
	}

	routerCfg := http_controllers.RouterConfig{
		Dispatcher:     dispatcher,
		Entries:        app.Entries,
		Tags:           app.Tags,
		Database:       app.DB,
		Stats:          app.DB,
		Importer:       importer,
		ImportArchive:  app.Archive,
		ImportSessions: app.DB,
		MaxImportSize:  cfg.Import.MaxFileSize,
		Exporter:       exporters.NewJSONExporter(app.Entries),
		ExportAuditor:  app.Audit,
		Sessions:       sessionManager,
		AuthMiddleware: auth.NewMiddleware(app.Users, cfg.Auth),
		Messages:       queue,
		Versions:       app.Versions,
		AuditEvents:    app.Audit,
		Version:        version,
	}
	if app.Pictures != nil {
		routerCfg.MediaDir = app.Pictures.MediaDir()
	}

	var (
		taskClient    *tasks.Client
		taskCtxCancel context.CancelFunc
		maintenance   *scheduler.MaintenanceScheduler
	)
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, cfg.Tasks)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewCleanupOrphanTagsQueue(app.Tags, app.Audit),
			tasks.NewCleanupAuditEventsQueue(app.Audit, app.Audit),
			tasks.NewRefreshVersionQueue(app.Versions, app.Audit),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		taskClient.Start(taskCtx)

		maintenance = scheduler.NewMaintenanceScheduler(taskClient, cfg.Maintenance.Schedule, func() []backlite.Task {
			return MaintenanceJobs(cfg)
		})
		if cfg.Maintenance.Enabled {
			if err := maintenance.Start(taskCtx); err != nil {
				log.Printf("WARNING: maintenance scheduler not started: %v", err)
			}
		}

		routerCfg.TaskStatus = taskClient
		routerCfg.Maintenance = maintenance
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if maintenance != nil {
			maintenance.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}

// MaintenanceJobs is the batch enqueued by each maintenance run.
func MaintenanceJobs(cfg *config.Config) []backlite.Task {
	jobs := []backlite.Task{
		tasks.CleanupOrphanTagsTask{},
		tasks.CleanupAuditEventsTask{RetentionDays: cfg.Audit.RetentionDays},
	}
	for _, name := range versionChannels {
		jobs = append(jobs, tasks.RefreshVersionTask{Name: name})
	}
	return jobs
}
