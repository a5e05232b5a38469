package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/camden-git/photocatalog/config"
	"github.com/camden-git/photocatalog/database"
	"github.com/camden-git/photocatalog/handlers"
	"github.com/camden-git/photocatalog/media"
	"github.com/camden-git/photocatalog/repository"
	"github.com/camden-git/photocatalog/services"
	"github.com/camden-git/photocatalog/workers"
	"github.com/joho/godotenv"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.ChangelogDatabasePath), 0755); err != nil {
		log.Fatalf("FATAL: Failed to create directory for %s: %v", cfg.ChangelogDatabasePath, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := repository.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to open %s store: %v", cfg.StorageBackend, err)
	}
	defer store.Close()

	changeLog, err := database.OpenChangeLog(cfg.ChangelogDatabasePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize change log: %v", err)
	}
	defer changeLog.Close()

	accessService := services.NewAccessService(store, cfg.StoreTimeout)
	catalogService := services.NewCatalogService(store, changeLog, cfg.StoreTimeout)

	log.Printf("Using %s storage backend", cfg.StorageBackend)
	log.Printf("Using change log: %s", cfg.ChangelogDatabasePath)

	photoHandler := &handlers.PhotoHandler{Catalog: catalogService}

	if cfg.PhotosDirectory != "" {
		log.Printf("Serving thumbnails for photos in: %s", cfg.PhotosDirectory)
		log.Printf("Storing thumbnails in: %s", cfg.ThumbnailsPath)
		log.Printf("Thumbnail max size (longest side): %dpx", cfg.ThumbnailMaxSize)

		mediaStore, err := media.NewLocalStorage(cfg.MediaStoragePath, map[media.AssetType]string{
			media.AssetTypeThumbnail: cfg.ThumbnailsSubDir,
		})
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize media store: %v", err)
		}
		mediaProcessor, err := media.NewProcessor(mediaStore, cfg.PhotosDirectory, cfg.ThumbnailMaxSize)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize media processor: %v", err)
		}
		photoHandler.Thumbs = mediaProcessor

		thumbGen := workers.NewThumbnailGenerator(mediaProcessor, cfg.ThumbnailQueueSize, cfg.NumThumbnailWorkers)
		defer thumbGen.Stop()

		loadCtx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
		photos, err := store.LoadPhotos(loadCtx)
		cancel()
		if err != nil {
			log.Printf("Warning: could not load photos to warm thumbnails: %v", err)
		} else {
			thumbGen.QueuePhotos(photos)
		}
	} else {
		log.Printf("Warning: PHOTOS_DIRECTORY is not set, thumbnails are disabled")
	}

	router := handlers.NewRouter(handlers.RouterConfig{
		Auth:               handlers.NewAuthHandler(accessService, []byte(cfg.JWTSecret), cfg.JWTExpiration),
		Albums:             &handlers.AlbumHandler{Catalog: catalogService},
		Photos:             photoHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	serverAddr := ":" + cfg.Port
	fmt.Printf("Server starting on http://localhost:%s\n", cfg.Port)
	log.Printf("Server listening on %s", serverAddr)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Warning: server shutdown: %v", err)
	}
	log.Println("Server stopped")
}
