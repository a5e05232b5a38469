package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/camden-git/photocatalog/config"
	"github.com/camden-git/photocatalog/media"
	"github.com/camden-git/photocatalog/models"
	"github.com/camden-git/photocatalog/repository"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}

func run() error {
	var fromDir string
	var backend string
	var fillMetadata bool

	flagSet := pflag.NewFlagSet("photocatalog-seed", pflag.ContinueOnError)
	flagSet.StringVar(&fromDir, "from", "", "directory holding photos.json, albums.json and users.json (default DATA_DIRECTORY)")
	flagSet.StringVar(&backend, "backend", "", "target storage backend: json, mongo or sqlite (overrides STORAGE_BACKEND)")
	flagSet.BoolVar(&fillMetadata, "fill-metadata", false, "fill empty date and resolution fields from the image files in PHOTOS_DIRECTORY")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	if backend != "" {
		os.Setenv("STORAGE_BACKEND", backend)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if fromDir == "" {
		fromDir = cfg.DataDirectory
	}
	if fromDir, err = filepath.Abs(fromDir); err != nil {
		return fmt.Errorf("invalid source directory: %w", err)
	}

	src, err := repository.NewJSONStore(fromDir, cfg.PhotosFile, cfg.AlbumsFile, cfg.UsersFile)
	if err != nil {
		return err
	}

	var fill metadataFiller
	if fillMetadata {
		if cfg.PhotosDirectory == "" {
			return fmt.Errorf("--fill-metadata needs PHOTOS_DIRECTORY to be set")
		}
		// metadata reading never writes to the store, so the processor gets no media storage
		processor, err := media.NewProcessor(nil, cfg.PhotosDirectory, cfg.ThumbnailMaxSize)
		if err != nil {
			return err
		}
		fill = processor.FillMetadata
	}

	ctx := context.Background()
	dst, err := repository.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.StorageBackend, err)
	}
	defer dst.Close()

	result, err := seed(ctx, src, dst, fill)
	if err != nil {
		return err
	}

	log.Printf("Seeded %s store from %s: %d photo(s), %d album(s), %d user(s), %d password(s) hashed, %d photo(s) given file metadata",
		cfg.StorageBackend, fromDir, result.Photos, result.Albums, result.Users, result.HashedPasswords, result.FilledMetadata)
	return nil
}

type seedResult struct {
	Photos          int
	Albums          int
	Users           int
	HashedPasswords int
	FilledMetadata  int
}

// metadataFiller completes a photo record from its image file and reports whether it changed
type metadataFiller func(photo *models.Photo) (bool, error)

// seed copies every collection from src into dst, replacing plaintext passwords with bcrypt hashes.
// When fill is set, photos missing a date or resolution are completed from their files first.
func seed(ctx context.Context, src repository.Store, dst repository.SeedableStore, fill metadataFiller) (seedResult, error) {
	var result seedResult

	albums, err := src.LoadAlbums(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to read albums: %w", err)
	}
	users, err := src.LoadUsers(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to read users: %w", err)
	}
	photos, err := src.LoadPhotos(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to read photos: %w", err)
	}

	for i := range users {
		if !users[i].HasLegacyPassword() {
			continue
		}
		if err := users[i].SetPassword(users[i].Password); err != nil {
			return result, fmt.Errorf("failed to hash password for user %d: %w", users[i].ID, err)
		}
		result.HashedPasswords++
	}

	if fill != nil {
		for i := range photos {
			changed, err := fill(&photos[i])
			if err != nil {
				log.Printf("Warning: could not read metadata for photo %d (%s): %v", photos[i].ID, photos[i].Filename, err)
				continue
			}
			if changed {
				result.FilledMetadata++
			}
		}
	}

	if err := dst.SaveAlbums(ctx, albums); err != nil {
		return result, fmt.Errorf("failed to save albums: %w", err)
	}
	if err := dst.SaveUsers(ctx, users); err != nil {
		return result, fmt.Errorf("failed to save users: %w", err)
	}
	if err := dst.SavePhotos(ctx, photos); err != nil {
		return result, fmt.Errorf("failed to save photos: %w", err)
	}

	result.Photos = len(photos)
	result.Albums = len(albums)
	result.Users = len(users)
	return result, nil
}
