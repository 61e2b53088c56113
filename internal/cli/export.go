package cli

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mrlokans/cardbox/internal/config"
	"github.com/mrlokans/cardbox/internal/entrypoint"
	"github.com/mrlokans/cardbox/internal/excel"
)

// ExportCommand writes the card document to an xlsx workbook on disk.
type ExportCommand struct {
	DataFile  string
	OutputDir string
	Output    string
	Verbose   bool
}

// NewExportCommand creates a new ExportCommand
func NewExportCommand() *ExportCommand {
	return &ExportCommand{}
}

// ParseFlags parses command line flags
func (cmd *ExportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)

	fs.StringVar(&cmd.DataFile, "data", config.DefaultDataFilePath, "Path to the card document")
	fs.StringVar(&cmd.OutputDir, "output-dir", ".", "Directory for the generated workbook")
	fs.StringVar(&cmd.Output, "output", "", "Exact output path (overrides -output-dir)")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s export [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Export the card document as a formatted Excel workbook.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s export\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s export -data=./cards_data.json -output=./cards.xlsx\n", os.Args[0])
	}

	return fs.Parse(args)
}

// Run executes the export
func (cmd *ExportCommand) Run() error {
	cfg := config.NewConfig()
	cfg.Storage.DataFile = cmd.DataFile

	store := entrypoint.NewHybridStore(cfg)
	doc := store.Load()

	exporter := excel.NewExporter()
	buf, fileName, err := exporter.Export(doc)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	outPath := cmd.Output
	if outPath == "" {
		outPath = filepath.Join(cmd.OutputDir, fileName)
	}

	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}

	fmt.Printf("Exported %d cards to %s\n", len(doc.Cards), outPath)
	return nil
}
