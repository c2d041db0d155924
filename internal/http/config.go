package http

import "github.com/mrlokans/readlater/internal/auth"

// RouterConfig carries every dependency of the HTTP router. Optional
// components are left nil and their routes are not registered.
type RouterConfig struct {
	// Core
	Dispatcher Dispatcher
	Entries    EntryReader
	Tags       TagLister
	Database   Pinger
	Stats      StatsReader

	// Import / export
	Importer       Importer
	ImportArchive  ImportArchive
	ImportSessions ImportSessionLister
	MaxImportSize  int64
	Exporter       Exporter
	ExportAuditor  ExportAuditor

	// Sessions and owner resolution
	Sessions       *auth.SessionManager
	AuthMiddleware *auth.Middleware
	Messages       MessageDrainer

	// Optional
	Versions    VersionCache
	AuditEvents AuditReader
	TaskStatus  TaskStatusReader
	Maintenance MaintenanceRunner

	// Downloaded pictures are served from here under /media
	MediaDir string

	// Application info
	Version string
}
