package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mrlokans/readlater/internal/config"
	"github.com/mrlokans/readlater/internal/entrypoint"
	"github.com/mrlokans/readlater/internal/exporters"
)

const (
	formatJSON     = "json"
	formatMarkdown = "markdown"
)

// ExportCommand writes every entry of a user as poche JSON or markdown notes.
type ExportCommand struct {
	DatabasePath string
	UserID       uint
	Format       string
	Output       string

	Config *config.Config
}

func NewExportCommand() *ExportCommand {
	return &ExportCommand{}
}

func (cmd *ExportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)

	var userID uint64
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the local database file")
	fs.Uint64Var(&userID, "user", 0, "Owner of the exported entries")
	fs.StringVar(&cmd.Format, "format", formatJSON, "Output format: json or markdown")
	fs.StringVar(&cmd.Output, "out", "", "Output file (json) or directory (markdown) (required)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s export -out <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "The json format can be imported again with -provider poche.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s export -out export.json\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s export -format markdown -out ~/Obsidian/ReadLater\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.Output == "" {
		return fmt.Errorf("required flag -out not provided")
	}
	if cmd.Format != formatJSON && cmd.Format != formatMarkdown {
		return fmt.Errorf("unknown format %q", cmd.Format)
	}
	cmd.UserID = uint(userID)
	return nil
}

func (cmd *ExportCommand) Run() error {
	cfg, err := resolveConfig(cmd.Config, cmd.DatabasePath)
	if err != nil {
		return err
	}
	app, err := entrypoint.Open(cfg, true)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer app.Close()

	output, err := filepath.Abs(cmd.Output)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for output: %w", err)
	}

	ctx := context.Background()
	var result exporters.ExportResult
	switch cmd.Format {
	case formatMarkdown:
		result, err = exporters.NewMarkdownExporter(app.Entries, output).Export(ctx, cmd.UserID)
	default:
		result, err = cmd.exportJSON(ctx, app, output)
	}
	app.Audit.LogExport(cmd.UserID, cmd.Format, fmt.Sprintf("Exported %d entries to %s", result.EntriesProcessed, output), err)
	if err != nil {
		return err
	}

	fmt.Printf("Exported %d entries to %s\n", result.EntriesProcessed, output)
	if result.EntriesFailed > 0 {
		fmt.Printf("%d entries could not be written\n", result.EntriesFailed)
	}
	return nil
}

func (cmd *ExportCommand) exportJSON(ctx context.Context, app *entrypoint.App, output string) (exporters.ExportResult, error) {
	file, err := os.Create(output)
	if err != nil {
		return exporters.ExportResult{}, fmt.Errorf("failed to create output file: %w", err)
	}

	result, err := exporters.NewJSONExporter(app.Entries).Export(ctx, file, cmd.UserID)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	return result, err
}
