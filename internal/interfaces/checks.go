package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/readlater/internal/actions"
	"github.com/mrlokans/readlater/internal/audit"
	"github.com/mrlokans/readlater/internal/auth"
	"github.com/mrlokans/readlater/internal/database"
	"github.com/mrlokans/readlater/internal/database/entries"
	"github.com/mrlokans/readlater/internal/database/tags"
	"github.com/mrlokans/readlater/internal/database/users"
	"github.com/mrlokans/readlater/internal/exporters"
	"github.com/mrlokans/readlater/internal/fetcher"
	"github.com/mrlokans/readlater/internal/http"
	"github.com/mrlokans/readlater/internal/importers"
	"github.com/mrlokans/readlater/internal/messages"
	"github.com/mrlokans/readlater/internal/pictures"
	"github.com/mrlokans/readlater/internal/scheduler"
	"github.com/mrlokans/readlater/internal/tasks"
	"github.com/mrlokans/readlater/internal/version"
)

// =============================================================================
// Entry Engine
// =============================================================================

var _ actions.EntryStore = (*entries.Repository)(nil)
var _ actions.TagStore = (*tags.Repository)(nil)
var _ actions.ContentFetcher = (*fetcher.Client)(nil)
var _ actions.PictureStore = (*pictures.Store)(nil)
var _ actions.Auditor = (*audit.Service)(nil)

// Queue implementations
var _ messages.Queue = (*messages.SessionQueue)(nil)
var _ messages.Queue = messages.LogQueue{}
var _ messages.Queue = (*messages.Recorder)(nil)

// =============================================================================
// Import and Export
// =============================================================================

var _ importers.Dispatcher = (*actions.Dispatcher)(nil)
var _ importers.SessionStore = (*database.Database)(nil)
var _ importers.Auditor = (*audit.Service)(nil)
var _ exporters.EntryLister = (*entries.Repository)(nil)

// =============================================================================
// HTTP
// =============================================================================

var _ http.Dispatcher = (*actions.Dispatcher)(nil)
var _ http.EntryReader = (*entries.Repository)(nil)
var _ http.TagLister = (*tags.Repository)(nil)
var _ http.Importer = (*importers.Importer)(nil)
var _ http.ImportArchive = (*audit.Archive)(nil)
var _ http.Exporter = (*exporters.JSONExporter)(nil)
var _ http.ExportAuditor = (*audit.Service)(nil)
var _ http.MessageDrainer = (*messages.SessionQueue)(nil)
var _ http.VersionCache = (*version.Cache)(nil)
var _ http.AuditReader = (*audit.Service)(nil)
var _ http.ImportSessionLister = (*database.Database)(nil)
var _ http.Pinger = (*database.Database)(nil)
var _ http.StatsReader = (*database.Database)(nil)
var _ http.MaintenanceRunner = (*scheduler.MaintenanceScheduler)(nil)
var _ http.TaskStatusReader = (*tasks.Client)(nil)
var _ auth.UserLookup = (*users.Repository)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ tasks.OrphanTagsCleaner = (*tags.Repository)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)
var _ tasks.MaintenanceReporter = (*audit.Service)(nil)
var _ tasks.VersionRefresher = (*version.Cache)(nil)
var _ scheduler.Enqueuer = (*tasks.Client)(nil)
