package entrypoint

import (
	"fmt"
	"log"

	"github.com/mrlokans/readlater/internal/actions"
	"github.com/mrlokans/readlater/internal/audit"
	"github.com/mrlokans/readlater/internal/config"
	"github.com/mrlokans/readlater/internal/database"
	auditrepo "github.com/mrlokans/readlater/internal/database/audit"
	"github.com/mrlokans/readlater/internal/database/entries"
	"github.com/mrlokans/readlater/internal/database/tags"
	"github.com/mrlokans/readlater/internal/database/users"
	"github.com/mrlokans/readlater/internal/fetcher"
	"github.com/mrlokans/readlater/internal/importers"
	"github.com/mrlokans/readlater/internal/messages"
	"github.com/mrlokans/readlater/internal/pictures"
	"github.com/mrlokans/readlater/internal/version"
)

// App holds the storage and services shared by the server and the CLI.
type App struct {
	Config *config.Config

	DB      *database.Database
	Entries *entries.Repository
	Tags    *tags.Repository
	Users   *users.Repository

	Audit    *audit.Service
	Archive  *audit.Archive
	Fetcher  *fetcher.Client
	Pictures *pictures.Store // nil unless DOWNLOAD_PICTURES is set
	Versions *version.Cache
}

// Open connects to the database and builds every stateless service.
// quiet turns off SQL statement logging.
func Open(cfg *config.Config, quiet bool) (*App, error) {
	open := database.NewDatabase
	if quiet {
		open = database.NewQuietDatabase
	}
	db, err := open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:   cfg,
		DB:       db,
		Entries:  entries.NewRepository(db.DB),
		Tags:     tags.NewRepository(db.DB),
		Users:    users.NewRepository(db.DB),
		Audit:    audit.NewService(auditrepo.NewRepository(db.DB)),
		Archive:  audit.NewArchive(cfg.Audit.Dir),
		Fetcher:  fetcher.NewClient(cfg.Fetcher.Endpoint, cfg.Fetcher.Timeout, cfg.Fetcher.RatePerSecond, cfg.Fetcher.Burst),
		Versions: version.NewCache(cfg.Cache.Dir, cfg.Cache.VersionURL, cfg.Cache.MaxAge),
	}

	if cfg.Pictures.Download {
		store, err := pictures.NewStore(cfg.Pictures.MediaDir, "/media")
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize picture store: %w", err)
		}
		app.Pictures = store
		log.Printf("Pictures are downloaded to %s", cfg.Pictures.MediaDir)
	}

	return app, nil
}

// Dispatcher builds the action dispatcher reporting to queue.
func (a *App) Dispatcher(queue messages.Queue) *actions.Dispatcher {
	opts := actions.Options{
		Messages:               queue,
		Audit:                  a.Audit,
		DetectImportDuplicates: a.Config.Import.DetectDuplicates,
		SerializeDedupe:        a.Config.Dedupe.Serialize,
	}
	if a.Pictures != nil {
		opts.Pictures = a.Pictures
	}
	return actions.NewDispatcher(a.Entries, a.Tags, a.Fetcher, opts)
}

// Importer builds an importer on top of dispatcher.
func (a *App) Importer(dispatcher importers.Dispatcher, queue messages.Queue) *importers.Importer {
	return importers.NewImporter(dispatcher, a.DB, a.Audit, queue)
}

func (a *App) Close() error {
	return a.DB.Close()
}
