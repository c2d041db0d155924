package exporters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mrlokans/readlater/internal/entities"
)

// pocheFlag values: -1 for a set flag, 0 otherwise.
const (
	pocheTrue  = -1
	pocheFalse = 0
)

// PocheRecord is one entry in the poche export format.
type PocheRecord struct {
	ID      uint   `json:"id"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	IsRead  int    `json:"is_read"`
	IsFav   int    `json:"is_fav"`
	Content string `json:"content"`
	UserID  uint   `json:"user_id"`
}

func pocheFlag(set bool) int {
	if set {
		return pocheTrue
	}
	return pocheFalse
}

// ToPocheRecords converts entries to the export representation.
func ToPocheRecords(entries []entities.Entry) []PocheRecord {
	records := make([]PocheRecord, 0, len(entries))
	for _, entry := range entries {
		records = append(records, PocheRecord{
			ID:      entry.ID,
			Title:   entry.Title,
			URL:     entry.URL,
			IsRead:  pocheFlag(entry.IsRead),
			IsFav:   pocheFlag(entry.IsFavorite),
			Content: entry.Content,
			UserID:  entry.UserID,
		})
	}
	return records
}

type JSONExporter struct {
	store EntryLister
}

func NewJSONExporter(store EntryLister) *JSONExporter {
	return &JSONExporter{store: store}
}

// Export writes every entry of ownerID to w as a JSON list.
func (e *JSONExporter) Export(ctx context.Context, w io.Writer, ownerID uint) (ExportResult, error) {
	entries, err := e.store.RetrieveAll(ctx, ownerID)
	if err != nil {
		return ExportResult{}, fmt.Errorf("failed to load entries: %w", err)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(ToPocheRecords(entries)); err != nil {
		return ExportResult{}, fmt.Errorf("failed to write export: %w", err)
	}

	return ExportResult{EntriesProcessed: len(entries)}, nil
}
