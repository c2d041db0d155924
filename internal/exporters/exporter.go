// Package exporters writes a user's saved entries out of the database:
// as a poche JSON file that the poche importer reads back, or as one
// markdown note per entry.
package exporters

import (
	"context"

	"github.com/mrlokans/readlater/internal/entities"
)

// EntryLister provides every entry of an owner in insertion order.
type EntryLister interface {
	RetrieveAll(ctx context.Context, ownerID uint) ([]entities.Entry, error)
}

type ExportResult struct {
	EntriesProcessed int `json:"entries_processed"`
	EntriesFailed    int `json:"entries_failed"`
}
