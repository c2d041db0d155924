package exporters

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/mrlokans/readlater/internal/entities"
	"github.com/mrlokans/readlater/internal/utils"
)

// GenerateMarkdown renders an entry as a markdown note with frontmatter.
func GenerateMarkdown(entry *entities.Entry) (string, error) {
	body, err := htmltomarkdown.ConvertString(entry.Content)
	if err != nil {
		return "", fmt.Errorf("failed to convert entry %d to markdown: %w", entry.ID, err)
	}

	var builder strings.Builder

	fmt.Fprintf(&builder, "---\n")
	fmt.Fprintf(&builder, "content_type: article\n")
	fmt.Fprintf(&builder, "saved_at: %s\n", entry.CreatedAt.Format("2006-01-02"))
	fmt.Fprintf(&builder, "title: \"%s\"\n", escapeQuotes(entry.Title))
	fmt.Fprintf(&builder, "url: \"%s\"\n", escapeQuotes(entry.URL))
	fmt.Fprintf(&builder, "read: %t\n", entry.IsRead)
	fmt.Fprintf(&builder, "favorite: %t\n", entry.IsFavorite)
	fmt.Fprintf(&builder, "tags: [%s]\n", strings.Join(quotedTags(entry.Tags), ", "))
	fmt.Fprintf(&builder, "---\n\n")
	fmt.Fprintf(&builder, "# %s\n\n", entry.Title)
	if body = strings.TrimSpace(body); body != "" {
		fmt.Fprintf(&builder, "%s\n", body)
	}

	return builder.String(), nil
}

func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, "\"", "\\\"")
}

func quotedTags(tags []entities.Tag) []string {
	quoted := make([]string, 0, len(tags))
	for _, tag := range tags {
		quoted = append(quoted, "\""+escapeQuotes(tag.Value)+"\"")
	}
	return quoted
}

// MarkdownExporter writes one note per entry into a directory.
type MarkdownExporter struct {
	store     EntryLister
	outputDir string
}

func NewMarkdownExporter(store EntryLister, outputDir string) *MarkdownExporter {
	return &MarkdownExporter{store: store, outputDir: outputDir}
}

// Export writes every entry of ownerID. An entry that fails is logged and
// counted; the rest are still written.
func (e *MarkdownExporter) Export(ctx context.Context, ownerID uint) (ExportResult, error) {
	if err := os.MkdirAll(e.outputDir, 0755); err != nil {
		return ExportResult{}, fmt.Errorf("failed to create export directory: %w", err)
	}

	entries, err := e.store.RetrieveAll(ctx, ownerID)
	if err != nil {
		return ExportResult{}, fmt.Errorf("failed to load entries: %w", err)
	}

	result := ExportResult{}
	for i := range entries {
		entry := &entries[i]
		if err := e.exportEntry(entry); err != nil {
			log.Printf("Failed to export entry %d: %v", entry.ID, err)
			result.EntriesFailed++
			continue
		}
		result.EntriesProcessed++
	}

	log.Printf("Markdown export completed: %d entries written, %d failed", result.EntriesProcessed, result.EntriesFailed)
	return result, nil
}

func (e *MarkdownExporter) exportEntry(entry *entities.Entry) error {
	content, err := GenerateMarkdown(entry)
	if err != nil {
		return err
	}
	// The id prefix keeps entries with equal titles apart.
	name := fmt.Sprintf("%d - %s.md", entry.ID, utils.SanitizeFilename(entry.Title))
	return os.WriteFile(filepath.Join(e.outputDir, name), []byte(content), 0644)
}
