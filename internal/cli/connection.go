package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/mpdirectory/internal/config"
	"github.com/mrlokans/mpdirectory/internal/mpapi"
)

// TestConnectionCommand checks that the configured API answers with MP data.
type TestConnectionCommand struct {
	DatabasePath string
}

func NewTestConnectionCommand() *TestConnectionCommand {
	return &TestConnectionCommand{}
}

func (cmd *TestConnectionCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("test-connection", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the local database file holding the import settings")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s test-connection [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Request one record from the MP API and report the result.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *TestConnectionCommand) Run() error {
	printTitle("MP API Connection Test")

	pipeline, closeFn, err := openPipeline(cmd.DatabasePath, false)
	if err != nil {
		return err
	}
	defer closeFn()

	fmt.Printf("API: %s\n\n", pipeline.Settings.GetImportSettings().APIBaseURL)

	ctx, cancel := signalContext()
	defer cancel()

	return reportConnection(os.Stdout, pipeline.Client.TestConnection(ctx))
}

func reportConnection(out io.Writer, result mpapi.ConnectionResult) error {
	if !result.Success {
		return errors.New(result.Message)
	}
	fmt.Fprintf(out, "[OK] %s\n", result.Message)
	return nil
}
