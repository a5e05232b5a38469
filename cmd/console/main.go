package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/camden-git/photocatalog/config"
	"github.com/camden-git/photocatalog/console"
	"github.com/camden-git/photocatalog/database"
	"github.com/camden-git/photocatalog/repository"
	"github.com/camden-git/photocatalog/services"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var backend string
	var dataDir string
	var verbose bool

	flagSet := pflag.NewFlagSet("photocatalog-console", pflag.ContinueOnError)
	flagSet.StringVar(&backend, "backend", "", "storage backend: json, mongo or sqlite (overrides STORAGE_BACKEND)")
	flagSet.StringVar(&dataDir, "data-dir", "", "directory holding the JSON collections (overrides DATA_DIRECTORY)")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "print log output")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	// the menu owns the terminal; logs only get in the way unless asked for
	if !verbose {
		log.SetOutput(io.Discard)
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	if backend != "" {
		os.Setenv("STORAGE_BACKEND", backend)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if dataDir != "" {
		if cfg.DataDirectory, err = filepath.Abs(dataDir); err != nil {
			return fmt.Errorf("invalid data directory '%s': %w", dataDir, err)
		}
	}

	ctx := context.Background()
	store, err := repository.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.StorageBackend, err)
	}
	defer store.Close()

	var changes services.ChangeRecorder
	changeLog, err := database.OpenChangeLog(cfg.ChangelogDatabasePath)
	if err != nil {
		log.Printf("Warning: change log unavailable, edits will not be recorded: %v", err)
	} else {
		defer changeLog.Close()
		changes = changeLog
	}

	menu := console.NewMenu(
		services.NewAccessService(store, cfg.StoreTimeout),
		services.NewCatalogService(store, changes, cfg.StoreTimeout),
		os.Stdin,
		os.Stdout,
	)

	// term.ReadPassword reads the descriptor directly, not the menu's buffered reader;
	// the menu falls back to a plain line whenever input was typed ahead.
	stdinFileDescriptor := int(os.Stdin.Fd())
	if term.IsTerminal(stdinFileDescriptor) {
		menu.ReadPassword = func() (string, error) {
			passwordBytes, err := term.ReadPassword(stdinFileDescriptor)
			if err != nil {
				return "", fmt.Errorf("reading password: %w", err)
			}
			return string(passwordBytes), nil
		}
	}

	return menu.Run(ctx)
}
