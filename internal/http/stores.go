package http

import (
	"context"
	"io"
	"time"

	"github.com/mrlokans/readlater/internal/actions"
	"github.com/mrlokans/readlater/internal/database/entries"
	"github.com/mrlokans/readlater/internal/entities"
	"github.com/mrlokans/readlater/internal/exporters"
	"github.com/mrlokans/readlater/internal/fetcher"
	"github.com/mrlokans/readlater/internal/importers"
	"github.com/mrlokans/readlater/internal/messages"
)

// Each controller depends on the narrow interface below that it needs.
// The concrete types live in internal/actions, internal/database and friends.

// Dispatcher runs one entry verb. Satisfied by *actions.Dispatcher.
type Dispatcher interface {
	Dispatch(ctx context.Context, req actions.Request) (actions.Outcome, error)
}

// EntryReader serves the read side of the entry listings.
type EntryReader interface {
	RetrieveOneByID(ctx context.Context, id, ownerID uint) (*entities.Entry, error)
	ListByView(ctx context.Context, ownerID uint, view entries.View) ([]entities.Entry, error)
	ListByTag(ctx context.Context, ownerID, tagID uint) ([]entities.Entry, error)
}

type TagLister interface {
	ListTagsForUser(ctx context.Context, ownerID uint) ([]entities.Tag, error)
}

type Importer interface {
	Import(ctx context.Context, provider importers.Provider, r io.Reader, ownerID uint, creds *fetcher.Credentials) (importers.Result, error)
}

// ImportArchive keeps a copy of each uploaded file.
type ImportArchive interface {
	SaveImport(provider, originalName string, data []byte) (string, error)
}

type Exporter interface {
	Export(ctx context.Context, w io.Writer, ownerID uint) (exporters.ExportResult, error)
}

type ExportAuditor interface {
	LogExport(userID uint, format, description string, err error)
}

type MessageDrainer interface {
	Drain(ctx context.Context) []messages.Message
}

type VersionCache interface {
	Get(ctx context.Context, name string) (string, error)
	Clear() (int, error)
}

type AuditReader interface {
	GetEvents(userID uint, limit, offset int) ([]entities.AuditEvent, int64, error)
	GetEventsByType(eventType entities.AuditEventType, userID uint, limit, offset int) ([]entities.AuditEvent, int64, error)
}

type ImportSessionLister interface {
	GetImportSessionsForUser(userID uint) ([]entities.ImportSession, error)
}

// Pinger reports database health.
type Pinger interface {
	Ping() error
}

type StatsReader interface {
	GetStatsForUser(userID uint) (total int64, unread int64, err error)
}

// MaintenanceRunner enqueues the maintenance batch on demand.
type MaintenanceRunner interface {
	RunNow(ctx context.Context) ([]string, error)
	NextRun() *time.Time
	IsRunning() bool
}
