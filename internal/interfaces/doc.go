// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Entry Engine
//
//   - EntryStore, TagStore: storage the dispatcher mutates (internal/actions/dispatcher.go)
//   - ContentFetcher: readable content of a page (internal/actions/dispatcher.go)
//   - PictureStore: local copies of entry images (internal/actions/dispatcher.go)
//   - messages.Queue: interactive feedback for the caller (internal/messages)
//
// ## Import and Export
//
//   - importers.Dispatcher, importers.SessionStore: import runs (internal/importers/importer.go)
//   - exporters.EntryLister: entries to export (internal/exporters/exporter.go)
//
// ## HTTP Controllers
//
// Every controller takes the narrow interface it needs (internal/http/stores.go).
//
// ## Background Work
//
//   - tasks.OrphanTagsCleaner, tasks.AuditEventCleaner, tasks.VersionRefresher
//   - scheduler.Enqueuer: the task queue seen by the cron scheduler
//
// # Adding a New Import Provider
//
//  1. Write a Normalizer in internal/importers/
//
//     func NormalizeDelicious(r io.Reader) (iter.Seq[Item], error)
//
//  2. Add a Provider constant and map it in Provider.Normalizer
//
// The HTTP route and the import command pick the provider up from
// importers.Providers.
//
// # Adding a New Entry Verb
//
//  1. Add a Verb constant in internal/actions/request.go
//  2. Handle it in Dispatcher.Dispatch
//  3. Route it in internal/http/router.go
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go.
package interfaces
