package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/cardbox/internal/config"
	"github.com/mrlokans/cardbox/internal/entrypoint"
	"github.com/mrlokans/cardbox/internal/services"
)

// ImportCommand imports cards from an xlsx workbook into the document.
type ImportCommand struct {
	DataFile string
	File     string
	Mode     string
	Verbose  bool
}

// NewImportCommand creates a new ImportCommand
func NewImportCommand() *ImportCommand {
	return &ImportCommand{}
}

// ParseFlags parses command line flags
func (cmd *ImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)

	fs.StringVar(&cmd.DataFile, "data", config.DefaultDataFilePath, "Path to the card document")
	fs.StringVar(&cmd.File, "file", "", "Path to the Excel workbook to import (required)")
	fs.StringVar(&cmd.Mode, "mode", "append", "Import mode: append (skip duplicates) or replace (rebuild document)")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import cards from an Excel workbook.\n\n")
		fmt.Fprintf(os.Stderr, "In append mode cards whose question already exists are skipped.\n")
		fmt.Fprintf(os.Stderr, "In replace mode the imported cards become the whole document.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s import -file=./cards.xlsx\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s import -file=./cards.xlsx -mode=replace\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.File == "" {
		return fmt.Errorf("-file is required")
	}
	return nil
}

// Run executes the import
func (cmd *ImportCommand) Run() error {
	cfg := config.NewConfig()
	cfg.Storage.DataFile = cmd.DataFile

	store := entrypoint.NewHybridStore(cfg)
	importService := services.NewImportService(store)

	ok, stats := importService.ImportFile(cmd.File, services.ParseImportMode(cmd.Mode))
	if !ok {
		return fmt.Errorf("import failed: %s", stats.Error)
	}

	fmt.Printf("Imported %d cards (%d duplicates skipped), document now holds %d cards across %d themes\n",
		stats.Imported, stats.Skipped, stats.Total, stats.Themes)
	return nil
}
