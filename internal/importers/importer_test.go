package importers

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/readlater/internal/actions"
	"github.com/mrlokans/readlater/internal/database"
	"github.com/mrlokans/readlater/internal/database/entries"
	"github.com/mrlokans/readlater/internal/database/tags"
	"github.com/mrlokans/readlater/internal/entities"
	"github.com/mrlokans/readlater/internal/fetcher"
	"github.com/mrlokans/readlater/internal/messages"
)

type stubFetcher struct {
	failFor map[string]bool
}

func (s stubFetcher) Fetch(_ context.Context, pageURL string, _ *fetcher.Credentials) (fetcher.Content, error) {
	if s.failFor[pageURL] {
		return fetcher.Content{}, fetcher.ErrFetchFailed
	}
	return fetcher.Content{Title: "t " + pageURL, Body: "<p>b</p>"}, nil
}

type recordingAuditor struct {
	imported, skipped int
	calls             int
}

func (r *recordingAuditor) LogImport(_ uint, _, _ string, imported, skipped int, _ error) {
	r.calls++
	r.imported = imported
	r.skipped = skipped
}

type importEnv struct {
	db         *database.Database
	dispatcher *actions.Dispatcher
	entries  *entries.Repository
	recorder *messages.Recorder
	auditor  *recordingAuditor
	importer *Importer
}

func setupImportEnv(t *testing.T) *importEnv {
	t.Helper()
	return setupImportEnvWith(t, actions.Options{})
}

func setupImportEnvWith(t *testing.T, opts actions.Options) *importEnv {
	t.Helper()

	db, err := database.NewQuietDatabase(filepath.Join(t.TempDir(), "import.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	entryRepo := entries.NewRepository(db.DB)
	dispatcher := actions.NewDispatcher(entryRepo, tags.NewRepository(db.DB), stubFetcher{}, opts)

	env := &importEnv{
		db:         db,
		dispatcher: dispatcher,
		entries:  entryRepo,
		recorder: &messages.Recorder{},
		auditor:  &recordingAuditor{},
	}
	env.importer = NewImporter(dispatcher, db, env.auditor, env.recorder)
	return env
}

func pocketFile(unread, archived int) string {
	var b strings.Builder
	b.WriteString("<html><body><ul>")
	for i := 0; i < unread; i++ {
		fmt.Fprintf(&b, `<li><a href="http://example.com/unread/%d">u%d</a></li>`, i, i)
	}
	b.WriteString("</ul><ul>")
	for i := 0; i < archived; i++ {
		fmt.Fprintf(&b, `<li><a href="http://example.com/read/%d">r%d</a></li>`, i, i)
	}
	b.WriteString("</ul></body></html>")
	return b.String()
}

func TestImporter_RoundTripPositionalLists(t *testing.T) {
	env := setupImportEnv(t)
	const unread, archived = 3, 2

	result, err := env.importer.Import(context.Background(), ProviderPocket, strings.NewReader(pocketFile(unread, archived)), 1, nil)
	require.NoError(t, err)

	assert.Equal(t, unread+archived, result.Imported)
	assert.Zero(t, result.Skipped)

	all, err := env.entries.RetrieveAll(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, all, unread+archived)

	for i, entry := range all {
		if i < unread {
			assert.Equal(t, fmt.Sprintf("http://example.com/unread/%d", i), entry.URL)
			assert.False(t, entry.IsRead, entry.URL)
		} else {
			assert.Equal(t, fmt.Sprintf("http://example.com/read/%d", i-unread), entry.URL)
			assert.True(t, entry.IsRead, entry.URL)
		}
		assert.False(t, entry.IsFavorite)
	}
}

func TestImporter_SummaryMessageAndSession(t *testing.T) {
	env := setupImportEnv(t)
	export := `[
		{"url":"http://example.com/a","is_fav":-1,"is_read":-1},
		{"url":"not a url"},
		{"url":"http://example.com/b","is_fav":0,"is_read":0}
	]`

	result, err := env.importer.Import(context.Background(), ProviderPoche, strings.NewReader(export), 7, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Seen)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, messages.Success("import from poche completed. 2 new links."), result.Message)
	assert.Equal(t, []messages.Message{result.Message}, env.recorder.Messages)

	assert.Equal(t, 1, env.auditor.calls)
	assert.Equal(t, 2, env.auditor.imported)

	sessions, err := env.db.GetImportSessionsForUser(7)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, entities.ImportStatusCompleted, sessions[0].Status)
	assert.Equal(t, 2, sessions[0].Imported)
	assert.NotNil(t, sessions[0].CompletedAt)

	a, err := env.entries.RetrieveOneByURL(context.Background(), "http://example.com/a", 7)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.True(t, a.IsFavorite)
	assert.True(t, a.IsRead)
}

func TestImporter_FetchFailureStillImports(t *testing.T) {
	db, err := database.NewQuietDatabase(filepath.Join(t.TempDir(), "import.db"))
	require.NoError(t, err)
	defer db.Close()

	repo := entries.NewRepository(db.DB)
	dispatcher := actions.NewDispatcher(repo, tags.NewRepository(db.DB),
		stubFetcher{failFor: map[string]bool{"http://example.com/a": true}}, actions.Options{})
	importer := NewImporter(dispatcher, nil, nil, nil)

	result, err := importer.Import(context.Background(), ProviderReadability,
		strings.NewReader(`{"bookmarks":[{"article__url":"http://example.com/a"}]}`), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)

	entry, err := repo.RetrieveOneByURL(context.Background(), "http://example.com/a", 1)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, entities.UntitledPlaceholder, entry.Title)
}

func TestImporter_UnknownProvider(t *testing.T) {
	env := setupImportEnv(t)

	_, err := env.importer.Import(context.Background(), Provider("delicious"), strings.NewReader(""), 1, nil)

	assert.ErrorIs(t, err, ErrUnknownProvider)
	require.Len(t, env.recorder.Messages, 1)
	assert.Equal(t, "Unknown import provider.", env.recorder.Messages[0].Text)
}

func TestImporter_UnreadableFile(t *testing.T) {
	env := setupImportEnv(t)

	_, err := env.importer.Import(context.Background(), ProviderPoche, strings.NewReader("garbage"), 1, nil)

	assert.ErrorIs(t, err, ErrMalformedFile)
	assert.Equal(t, messages.ClassError, env.recorder.Messages[0].Class)
}

func TestImporter_CancelledContext(t *testing.T) {
	env := setupImportEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := env.importer.Import(ctx, ProviderPocket, strings.NewReader(pocketFile(2, 0)), 1, nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, result.Imported)
	assert.Equal(t, messages.ClassWarning, result.Message.Class)

	sessions, err := env.db.GetImportSessionsForUser(1)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, entities.ImportStatusFailed, sessions[0].Status)
}

func TestImporter_ImportDoesNotDedupeByDefault(t *testing.T) {
	env := setupImportEnv(t)
	export := `<ul><li><a href="http://example.com/same">1</a></li><li><a href="http://example.com/same">2</a></li></ul>`

	result, err := env.importer.Import(context.Background(), ProviderPocket, strings.NewReader(export), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)

	var count int64
	require.NoError(t, env.db.DB.Model(&entities.Entry{}).
		Where("user_id = ? AND url = ?", 1, "http://example.com/same").
		Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestImporter_DuplicateDetectionKeepsFavorite(t *testing.T) {
	env := setupImportEnvWith(t, actions.Options{DetectImportDuplicates: true})
	ctx := context.Background()

	for _, export := range []string{
		`[{"url":"http://example.com/fav","is_fav":-1,"is_read":0}]`,
		`[{"url":"http://example.com/fav","is_fav":0,"is_read":-1}]`,
	} {
		added, err := env.dispatcher.Dispatch(ctx, actions.Request{Verb: actions.VerbAdd, URL: "http://example.com/fav", OwnerID: 1})
		require.NoError(t, err)
		_, err = env.dispatcher.Dispatch(ctx, actions.Request{Verb: actions.VerbToggleFavorite, EntryID: added.EntryID, OwnerID: 1})
		require.NoError(t, err)

		result, err := env.importer.Import(ctx, ProviderPoche, strings.NewReader(export), 1, nil)
		require.NoError(t, err)
		require.Equal(t, 1, result.Imported)

		all, err := env.entries.RetrieveAll(ctx, 1)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.True(t, all[0].IsFavorite)
		assert.NotEqual(t, added.EntryID, all[0].ID)

		_, err = env.dispatcher.Dispatch(ctx, actions.Request{Verb: actions.VerbDelete, EntryID: all[0].ID, OwnerID: 1})
		require.NoError(t, err)
	}
}
