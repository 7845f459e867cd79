package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/mpdirectory/internal/config"
	"github.com/mrlokans/mpdirectory/internal/importer"
	"github.com/mrlokans/mpdirectory/internal/scheduler"
)

// ErrStalled is returned when a batch reports more work but the offset did
// not move.
var ErrStalled = errors.New("import stalled: offset did not advance")

type batchRunner interface {
	RunImport(ctx context.Context, offset int) (*importer.Result, error)
}

// ImportCommand runs the MP import from the command line, batch by batch.
type ImportCommand struct {
	DatabasePath string
	Offset       int
	Once         bool
	Verbose      bool
}

func NewImportCommand() *ImportCommand {
	return &ImportCommand{}
}

func (cmd *ImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the local database file")
	fs.IntVar(&cmd.Offset, "offset", 0, "Record offset to start from")
	fs.BoolVar(&cmd.Once, "once", false, "Import a single batch and stop")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import MPs from the configured API into the local database.\n\n")
		fmt.Fprintf(os.Stderr, "The API URL, key and batch size come from the saved import settings,\n")
		fmt.Fprintf(os.Stderr, "falling back to MP_API_BASE_URL, MP_API_KEY and IMPORT_BATCH_SIZE.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Import everything:\n")
		fmt.Fprintf(os.Stderr, "  %s import\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Resume an interrupted import with one batch:\n")
		fmt.Fprintf(os.Stderr, "  %s import -offset 200 -once\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Offset < 0 {
		return fmt.Errorf("-offset must not be negative")
	}

	return nil
}

func (cmd *ImportCommand) Run() error {
	printTitle("MP Import")

	pipeline, closeFn, err := openPipeline(cmd.DatabasePath, cmd.Verbose)
	if err != nil {
		return err
	}
	defer closeFn()

	settings := pipeline.Settings.GetImportSettings()
	fmt.Printf("API: %s\n", settings.APIBaseURL)
	fmt.Printf("Batch size: %d\n\n", settings.ImportBatchSize)

	ctx, cancel := signalContext()
	defer cancel()

	total, err := runBatches(ctx, pipeline.Orchestrator, cmd.Offset, cmd.Once, os.Stdout)

	fmt.Println("\n=== Import Summary ===")
	fmt.Printf("Batches: %d\n", total.Batches)
	fmt.Printf("Imported: %d\n", total.Imported)
	fmt.Printf("Updated: %d\n", total.Updated)
	fmt.Printf("Failed: %d\n", total.Failed)
	fmt.Printf("Next offset: %d\n", total.Offset)
	if total.Complete {
		fmt.Println("Import complete.")
	} else if err == nil {
		fmt.Printf("More records remain. Continue with -offset %d\n", total.Offset)
	}

	return err
}

// runBatches drives runner from offset until the import completes, once is
// set, or the context is cancelled.
func runBatches(ctx context.Context, runner batchRunner, offset int, once bool, out io.Writer) (scheduler.Summary, error) {
	total := scheduler.Summary{Offset: offset}

	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		result, err := runner.RunImport(ctx, offset)
		if err != nil {
			return total, err
		}

		total.Batches++
		total.Imported += result.Imported
		total.Updated += result.Updated
		total.Failed += len(result.Failed)
		total.Offset = result.Offset
		total.Complete = result.Complete

		fmt.Fprintf(out, "[%d] %s\n", total.Batches, result.Message)
		for _, failed := range result.Failed {
			fmt.Fprintf(out, "    [ERROR] %s: %s\n", failed.ID, failed.Reason)
		}

		if result.Complete || once {
			return total, nil
		}
		if result.Offset <= offset {
			return total, ErrStalled
		}
		if result.Offset > scheduler.SafetyOffsetLimit {
			return total, fmt.Errorf("import stopped at offset %d: safety limit reached", result.Offset)
		}
		offset = result.Offset
	}
}
