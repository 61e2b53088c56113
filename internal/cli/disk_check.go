package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/cardbox/internal/config"
	"github.com/mrlokans/cardbox/internal/storage/providers/yandexdisk"
)

// DiskCheckCommand verifies Yandex Disk connectivity and token validity.
type DiskCheckCommand struct {
	Token      string
	RemotePath string
}

// NewDiskCheckCommand creates a new DiskCheckCommand
func NewDiskCheckCommand() *DiskCheckCommand {
	return &DiskCheckCommand{}
}

// ParseFlags parses command line flags
func (cmd *DiskCheckCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("disk-check", flag.ExitOnError)

	// Token can come from env or flag
	envToken := os.Getenv("YANDEX_DISK_TOKEN")

	fs.StringVar(&cmd.Token, "token", envToken, "Yandex Disk OAuth token (or set YANDEX_DISK_TOKEN env variable)")
	fs.StringVar(&cmd.RemotePath, "path", config.DefaultRemotePath, "Card file path on the disk")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s disk-check [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Check Yandex Disk connectivity and whether the card file exists.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  export YANDEX_DISK_TOKEN=your_token\n")
		fmt.Fprintf(os.Stderr, "  %s disk-check\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Token == "" {
		return fmt.Errorf("-token is required (or set YANDEX_DISK_TOKEN)")
	}
	return nil
}

// Run executes the connectivity check
func (cmd *DiskCheckCommand) Run() error {
	client := yandexdisk.NewClient(cmd.Token, cmd.RemotePath)

	if !client.TestConnection() {
		return fmt.Errorf("could not connect to Yandex Disk, check the token")
	}
	fmt.Println("Connection to Yandex Disk: OK")

	if client.FileExists() {
		doc, err := client.Load()
		if err != nil {
			return fmt.Errorf("card file exists but could not be read: %w", err)
		}
		fmt.Printf("Card file %q found: %d cards, %d themes\n", cmd.RemotePath, len(doc.Cards), len(doc.Themes))
	} else {
		fmt.Printf("Card file %q not found on the disk (it will be created on first sync)\n", cmd.RemotePath)
	}

	return nil
}
