package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/readlater/internal/config"
	"github.com/mrlokans/readlater/internal/database/entries"
	"github.com/mrlokans/readlater/internal/entrypoint"
	"github.com/mrlokans/readlater/internal/exporters"
)

const pocheExport = `[
	{"id":1,"url":"http://example.com/a","is_fav":-1,"is_read":0},
	{"id":2,"url":"http://example.com/b","is_fav":0,"is_read":-1},
	{"id":3,"url":"not a url"}
]`

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	cfg := config.NewConfig()
	cfg.Database.Path = filepath.Join(dir, "readlater.db")
	cfg.Audit.Dir = filepath.Join(dir, "audit")
	cfg.Cache.Dir = filepath.Join(dir, "cache")
	cfg.Pictures.MediaDir = filepath.Join(dir, "media")
	cfg.Fetcher.Endpoint = "http://127.0.0.1:1/extract"
	cfg.Fetcher.RatePerSecond = 0
	return cfg
}

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestImportCommand_ParseFlags(t *testing.T) {
	cmd := NewImportCommand()
	err := cmd.ParseFlags([]string{"-provider", "pocket", "-file", "export.html", "-user", "3", "-dry-run"})
	require.NoError(t, err)

	assert.Equal(t, "pocket", cmd.Provider)
	assert.Equal(t, "export.html", cmd.FilePath)
	assert.Equal(t, uint(3), cmd.UserID)
	assert.True(t, cmd.DryRun)
	assert.Equal(t, config.DefaultDatabasePath, cmd.DatabasePath)
}

func TestImportCommand_ParseFlagsRequired(t *testing.T) {
	err := NewImportCommand().ParseFlags([]string{"-file", "export.html"})
	assert.ErrorContains(t, err, "-provider")

	err = NewImportCommand().ParseFlags([]string{"-provider", "poche"})
	assert.ErrorContains(t, err, "-file")
}

func TestImportCommand_UnknownProvider(t *testing.T) {
	cmd := &ImportCommand{Provider: "delicious", FilePath: writeFile(t, "x.html", "")}
	assert.Error(t, cmd.Run())
}

func TestImportCommand_DryRunLeavesDatabaseAlone(t *testing.T) {
	cfg := testConfig(t)
	cmd := &ImportCommand{
		Provider:     "poche",
		FilePath:     writeFile(t, "poche.json", pocheExport),
		DatabasePath: cfg.Database.Path,
		DryRun:       true,
		Config:       cfg,
	}

	require.NoError(t, cmd.Run())
	_, err := os.Stat(cfg.Database.Path)
	assert.True(t, os.IsNotExist(err))
}

func TestImportCommand_Run(t *testing.T) {
	cfg := testConfig(t)
	cmd := &ImportCommand{
		Provider:     "poche",
		FilePath:     writeFile(t, "poche.json", pocheExport),
		DatabasePath: cfg.Database.Path,
		UserID:       5,
		Config:       cfg,
	}
	require.NoError(t, cmd.Run())

	app, err := entrypoint.Open(cfg, true)
	require.NoError(t, err)
	defer app.Close()

	ctx := context.Background()
	all, err := app.Entries.RetrieveAll(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	fav, err := app.Entries.ListByView(ctx, 5, entries.ViewFavs)
	require.NoError(t, err)
	require.Len(t, fav, 1)
	assert.Equal(t, "http://example.com/a", fav[0].URL)

	archived, err := os.ReadDir(cfg.Audit.Dir)
	require.NoError(t, err)
	assert.Len(t, archived, 1)
}

func TestExportCommand_ParseFlags(t *testing.T) {
	cmd := NewExportCommand()
	require.NoError(t, cmd.ParseFlags([]string{"-out", "x.json"}))
	assert.Equal(t, formatJSON, cmd.Format)

	assert.Error(t, NewExportCommand().ParseFlags([]string{"-format", "markdown"}))
	assert.Error(t, NewExportCommand().ParseFlags([]string{"-format", "csv", "-out", "x"}))
}

func TestExportCommand_JSONRoundTrip(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, (&ImportCommand{
		Provider:     "poche",
		FilePath:     writeFile(t, "poche.json", pocheExport),
		DatabasePath: cfg.Database.Path,
		Config:       cfg,
	}).Run())

	out := filepath.Join(t.TempDir(), "export.json")
	cmd := &ExportCommand{DatabasePath: cfg.Database.Path, Format: formatJSON, Output: out, Config: cfg}
	require.NoError(t, cmd.Run())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var records []exporters.PocheRecord
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 2)

	byURL := map[string]exporters.PocheRecord{}
	for _, r := range records {
		byURL[r.URL] = r
	}
	assert.Equal(t, -1, byURL["http://example.com/a"].IsFav)
	assert.Equal(t, -1, byURL["http://example.com/b"].IsRead)
}

func TestExportCommand_Markdown(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, (&ImportCommand{
		Provider:     "poche",
		FilePath:     writeFile(t, "poche.json", pocheExport),
		DatabasePath: cfg.Database.Path,
		Config:       cfg,
	}).Run())

	out := filepath.Join(t.TempDir(), "notes")
	cmd := &ExportCommand{DatabasePath: cfg.Database.Path, Format: formatMarkdown, Output: out, Config: cfg}
	require.NoError(t, cmd.Run())

	files, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestCreateUserCommand(t *testing.T) {
	cfg := testConfig(t)

	assert.Error(t, NewCreateUserCommand().ParseFlags(nil))

	cmd := &CreateUserCommand{DatabasePath: cfg.Database.Path, Username: "reader", Config: cfg}
	require.NoError(t, cmd.Run())

	app, err := entrypoint.Open(cfg, true)
	require.NoError(t, err)
	user, err := app.Users.GetUserByUsername("reader")
	require.NoError(t, err)
	first := user.Token
	require.NoError(t, app.Close())

	cmd.Regenerate = true
	require.NoError(t, cmd.Run())

	app, err = entrypoint.Open(cfg, true)
	require.NoError(t, err)
	defer app.Close()
	user, err = app.Users.GetUserByUsername("reader")
	require.NoError(t, err)
	assert.NotEqual(t, first, user.Token)
	assert.Len(t, user.Token, 64)
}

func TestCreateUserCommand_RegenerateUnknown(t *testing.T) {
	cfg := testConfig(t)
	cmd := &CreateUserCommand{DatabasePath: cfg.Database.Path, Username: "ghost", Regenerate: true, Config: cfg}
	assert.Error(t, cmd.Run())
}
