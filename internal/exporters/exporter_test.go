package exporters

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/readlater/internal/entities"
	"github.com/mrlokans/readlater/internal/importers"
)

type staticLister struct {
	entries []entities.Entry
	err     error
}

func (s staticLister) RetrieveAll(context.Context, uint) ([]entities.Entry, error) {
	return s.entries, s.err
}

func sampleEntries() []entities.Entry {
	return []entities.Entry{
		{ID: 1, UserID: 3, URL: "http://example.com/a", Title: "A", Content: "<p>a</p>", IsFavorite: true},
		{ID: 2, UserID: 3, URL: "http://example.com/b", Title: "B", Content: "<p>b</p>", IsRead: true},
	}
}

func TestJSONExporter_Export(t *testing.T) {
	var buf bytes.Buffer

	result, err := NewJSONExporter(staticLister{entries: sampleEntries()}).Export(context.Background(), &buf, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, result.EntriesProcessed)

	var records []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &records))
	require.Len(t, records, 2)
	assert.Equal(t, float64(-1), records[0]["is_fav"])
	assert.Equal(t, float64(0), records[0]["is_read"])
	assert.Equal(t, float64(-1), records[1]["is_read"])
	assert.Equal(t, "http://example.com/b", records[1]["url"])
}

func TestJSONExporter_ReadableByPocheImporter(t *testing.T) {
	var buf bytes.Buffer
	_, err := NewJSONExporter(staticLister{entries: sampleEntries()}).Export(context.Background(), &buf, 3)
	require.NoError(t, err)

	seq, err := importers.NormalizePoche(&buf)
	require.NoError(t, err)

	var items []importers.Item
	for item := range seq {
		items = append(items, item)
	}
	assert.Equal(t, []importers.Item{
		{URL: "http://example.com/a", Favorite: true},
		{URL: "http://example.com/b", Archived: true},
	}, items)
}

func TestJSONExporter_StoreError(t *testing.T) {
	var buf bytes.Buffer

	_, err := NewJSONExporter(staticLister{err: errors.New("locked")}).Export(context.Background(), &buf, 3)

	assert.Error(t, err)
	assert.Zero(t, buf.Len())
}

func TestGenerateMarkdown(t *testing.T) {
	entry := &entities.Entry{
		ID:         9,
		URL:        "http://example.com/post",
		Title:      `Say "hi"`,
		Content:    "<h2>Intro</h2><p>Some <strong>bold</strong> text.</p>",
		IsFavorite: true,
		Tags:       []entities.Tag{{Value: "go"}, {Value: "news"}},
		CreatedAt:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	markdown, err := GenerateMarkdown(entry)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(markdown, "---\n"))
	assert.Contains(t, markdown, `title: "Say \"hi\""`)
	assert.Contains(t, markdown, `url: "http://example.com/post"`)
	assert.Contains(t, markdown, "saved_at: 2024-03-01")
	assert.Contains(t, markdown, "favorite: true")
	assert.Contains(t, markdown, `tags: ["go", "news"]`)
	assert.Contains(t, markdown, "## Intro")
	assert.Contains(t, markdown, "**bold**")
}

func TestGenerateMarkdown_EmptyBody(t *testing.T) {
	markdown, err := GenerateMarkdown(&entities.Entry{Title: entities.UntitledPlaceholder})
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(markdown, "# Untitled\n\n"))
	assert.Contains(t, markdown, "tags: []")
}

func TestMarkdownExporter_Export(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "notes")

	result, err := NewMarkdownExporter(staticLister{entries: sampleEntries()}, dir).Export(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 2, result.EntriesProcessed)

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "1 - A.md", files[0].Name())
}
