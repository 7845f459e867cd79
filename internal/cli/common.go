package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/mrlokans/mpdirectory/internal/config"
	"github.com/mrlokans/mpdirectory/internal/database"
	"github.com/mrlokans/mpdirectory/internal/entrypoint"
)

// openPipeline loads the environment configuration, opens the database at
// dbPath and wires the import pipeline on top of it. The returned func closes
// the database.
func openPipeline(dbPath string, verbose bool) (*entrypoint.Pipeline, func(), error) {
	cfg := config.NewConfig()

	if dbPath != "" {
		absDBPath, err := filepath.Abs(dbPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get absolute path for database: %w", err)
		}
		cfg.Database.Path = absDBPath
	}

	var db *database.Database
	var err error
	if verbose {
		db, err = database.NewDatabase(cfg.Database.Path)
	} else {
		db, err = database.NewQuietDatabase(cfg.Database.Path)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	closeFn := func() {
		if err := db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing database: %v\n", err)
		}
	}

	return entrypoint.NewPipeline(cfg, db), closeFn, nil
}

// signalContext is cancelled on Ctrl-C so long imports stop between batches.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func printTitle(title string) {
	fmt.Println(title)
	fmt.Println(strings.Repeat("=", len(title)))
}
