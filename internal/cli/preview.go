package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/mpdirectory/internal/config"
	"github.com/mrlokans/mpdirectory/internal/importer"
)

// PreviewCommand prints the cached sample of upstream records.
type PreviewCommand struct {
	DatabasePath string
	Force        bool
	Raw          bool
}

func NewPreviewCommand() *PreviewCommand {
	return &PreviewCommand{}
}

func (cmd *PreviewCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("preview", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the local database file")
	fs.BoolVar(&cmd.Force, "force", false, "Ignore the cached preview and fetch again")
	fs.BoolVar(&cmd.Raw, "json", false, "Print the records as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s preview [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Show the first records returned by the MP API.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *PreviewCommand) Run() error {
	printTitle("MP API Preview")

	pipeline, closeFn, err := openPipeline(cmd.DatabasePath, false)
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, cancel := signalContext()
	defer cancel()

	preview, err := pipeline.Preview.GetPreview(ctx, cmd.Force)
	if err != nil {
		return fmt.Errorf("failed to load preview: %w", err)
	}

	return printPreview(os.Stdout, preview, cmd.Raw)
}

func printPreview(out io.Writer, preview *importer.Preview, raw bool) error {
	fmt.Fprintf(out, "Fetched at: %s\n", preview.FetchedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Records: %d\n\n", preview.Total)

	if raw {
		return writeJSON(out, preview.Items)
	}

	for i, item := range preview.Items {
		fmt.Fprintf(out, "%d. %v (id: %v)\n", i+1, describe(item), item["id"])
	}
	return nil
}

// describe picks a human label for a raw record.
func describe(record map[string]any) string {
	for _, key := range []string{"title", "name", "firstLastName", "lastFirstName"} {
		if v, ok := record[key].(string); ok && v != "" {
			return v
		}
	}
	first, _ := record["first_name"].(string)
	last, _ := record["last_name"].(string)
	if first != "" || last != "" {
		return fmt.Sprintf("%s %s", first, last)
	}
	return "(untitled)"
}
