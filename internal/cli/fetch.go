package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mrlokans/mpdirectory/internal/config"
)

// FetchCommand walks every API page and dumps the raw records as JSON.
// Nothing is written to the MP table.
type FetchCommand struct {
	DatabasePath string
	Limit        int
	OutputPath   string
}

func NewFetchCommand() *FetchCommand {
	return &FetchCommand{}
}

func (cmd *FetchCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the local database file holding the import settings")
	fs.IntVar(&cmd.Limit, "limit", 0, "Stop after this many records (0 fetches everything)")
	fs.StringVar(&cmd.OutputPath, "output", "", "Write records to this file instead of stdout")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s fetch [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Fetch raw MP records from every API page without importing them.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s fetch -limit 20\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s fetch -output mps.json\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Limit < 0 {
		return fmt.Errorf("-limit must not be negative")
	}

	return nil
}

func (cmd *FetchCommand) Run() error {
	pipeline, closeFn, err := openPipeline(cmd.DatabasePath, false)
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, cancel := signalContext()
	defer cancel()

	records, err := pipeline.Client.FetchAll(ctx, cmd.Limit)
	if err != nil {
		return fmt.Errorf("failed to fetch records: %w", err)
	}

	var out io.Writer = os.Stdout
	if cmd.OutputPath != "" {
		absOutput, err := filepath.Abs(cmd.OutputPath)
		if err != nil {
			return fmt.Errorf("failed to get absolute path for output: %w", err)
		}
		file, err := os.Create(absOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer file.Close()
		out = file
		fmt.Fprintf(os.Stderr, "Writing %d records to %s\n", len(records), absOutput)
	}

	return writeJSON(out, records)
}

// writeJSON encodes v with two-space indentation.
func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
