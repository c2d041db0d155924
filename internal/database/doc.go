// Package database provides the data access layer for the application.
//
// # Architecture
//
//	database/
//	├── database.go      # Connection setup, migrations, import sessions
//	├── entries/         # Entry storage: add, lookups, toggles, deletes
//	├── tags/            # Tag values and entry associations
//	├── audit/           # Audit event log
//	└── users/           # API users and tokens
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase("./readlater.db")
//
//	entriesRepo := entries.NewRepository(db.DB)
//	tagsRepo := tags.NewRepository(db.DB)
//
//	id, err := entriesRepo.Add(ctx, url, title, body, ownerID)
//
// Every entry operation takes the owner id explicitly; ownership is enforced
// in the WHERE clause, so touching someone else's entry affects zero rows.
package database
