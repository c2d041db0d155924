package cli

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/mrlokans/readlater/internal/config"
	"github.com/mrlokans/readlater/internal/entrypoint"
	"github.com/mrlokans/readlater/internal/importers"
	"github.com/mrlokans/readlater/internal/messages"
)

// ImportCommand loads an export file from another read-later service.
type ImportCommand struct {
	Provider     string
	FilePath     string
	DatabasePath string
	UserID       uint
	Verbose      bool
	DryRun       bool

	// Config is read from the environment when nil.
	Config *config.Config
}

func NewImportCommand() *ImportCommand {
	return &ImportCommand{}
}

func (cmd *ImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)

	providers := make([]string, 0, len(importers.Providers()))
	for _, p := range importers.Providers() {
		providers = append(providers, string(p))
	}

	var userID uint64
	fs.StringVar(&cmd.Provider, "provider", "", "Export format: "+strings.Join(providers, ", ")+" (required)")
	fs.StringVar(&cmd.FilePath, "file", "", "Path to the export file (required)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the local database file")
	fs.Uint64Var(&userID, "user", 0, "Owner of the imported entries")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "List every link found in the file")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Parse the file and report what would be imported")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import -provider <name> -file <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Save every link of an export file. Each link is fetched through the\n")
		fmt.Fprintf(os.Stderr, "configured extraction endpoint (FETCHER_ENDPOINT).\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s import -provider pocket -file ril_export.html\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s import -provider poche -file poche-export.json -user 2 -dry-run -verbose\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.Provider == "" {
		return fmt.Errorf("required flag -provider not provided")
	}
	if cmd.FilePath == "" {
		return fmt.Errorf("required flag -file not provided")
	}
	cmd.UserID = uint(userID)
	return nil
}

func (cmd *ImportCommand) Run() error {
	provider, err := importers.ParseProvider(cmd.Provider)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(cmd.FilePath)
	if err != nil {
		return fmt.Errorf("failed to read export file: %w", err)
	}

	fmt.Printf("Import from %s\n", provider)
	fmt.Printf("File: %s\n", cmd.FilePath)

	if cmd.DryRun {
		return cmd.preview(provider, bytes.NewReader(data))
	}

	cfg, err := cmd.config()
	if err != nil {
		return err
	}
	app, err := entrypoint.Open(cfg, !cmd.Verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer app.Close()

	fmt.Printf("Saving to database: %s\n\n", cfg.Database.Path)

	if path, err := app.Archive.SaveImport(string(provider), filepath.Base(cmd.FilePath), data); err != nil {
		log.Printf("Failed to archive import file: %v", err)
	} else if cmd.Verbose {
		fmt.Printf("Archived copy: %s\n", path)
	}

	// Ctrl-C stops after the current link; what was saved stays saved.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	queue := messages.LogQueue{}
	importer := app.Importer(app.Dispatcher(queue), queue)
	result, err := importer.Import(ctx, provider, bytes.NewReader(data), cmd.UserID, nil)

	fmt.Println("\n=== Import Summary ===")
	fmt.Printf("Links found: %d\n", result.Seen)
	fmt.Printf("Imported: %d\n", result.Imported)
	fmt.Printf("Skipped: %d\n", result.Skipped)
	return err
}

func (cmd *ImportCommand) preview(provider importers.Provider, r io.Reader) error {
	normalize, err := provider.Normalizer()
	if err != nil {
		return err
	}
	items, err := normalize(r)
	if err != nil {
		return err
	}

	var total, favorites, archived int
	for item := range items {
		total++
		if item.Favorite {
			favorites++
		}
		if item.Archived {
			archived++
		}
		if cmd.Verbose {
			fmt.Printf("  %s%s\n", item.URL, flags(item))
		}
	}

	fmt.Printf("\nFound %d links (%d favorites, %d archived)\n", total, favorites, archived)
	fmt.Println("Dry run complete. Use without -dry-run to import.")
	return nil
}

func flags(item importers.Item) string {
	var parts []string
	if item.Favorite {
		parts = append(parts, "fav")
	}
	if item.Archived {
		parts = append(parts, "archived")
	}
	if len(parts) == 0 {
		return ""
	}
	return " [" + strings.Join(parts, ", ") + "]"
}

func (cmd *ImportCommand) config() (*config.Config, error) {
	return resolveConfig(cmd.Config, cmd.DatabasePath)
}

// resolveConfig reads the environment unless cfg is given and points it at
// the absolute dbPath.
func resolveConfig(cfg *config.Config, dbPath string) (*config.Config, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	absDBPath, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for database: %w", err)
	}
	cfg.Database.Path = absDBPath
	return cfg, nil
}
