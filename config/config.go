package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	BackendJSON   = "json"
	BackendMongo  = "mongo"
	BackendSQLite = "sqlite"
)

const (
	DefaultPhotosFile = "photos.json"
	DefaultAlbumsFile = "albums.json"
	DefaultUsersFile  = "users.json"

	DefaultThumbnailsSubDir = "thumbnails"
)

const (
	defaultThumbnailMaxSize    = 300
	defaultThumbnailQueueSize  = 100
	defaultNumThumbnailWorkers = 2
	defaultStoreTimeoutSeconds = 10
	defaultJWTExpirationHours  = 24
)

type Config struct {
	// storage backend: json, mongo or sqlite
	StorageBackend string

	// flat-file backend
	DataDirectory string // holds photos.json, albums.json, users.json
	PhotosFile    string
	AlbumsFile    string
	UsersFile     string

	// sqlite backend
	DatabasePath string

	// document database backend
	MongoURI      string
	MongoDatabase string

	// mutation history
	ChangelogDatabasePath string

	// image files and generated assets
	PhotosDirectory  string // where photo filenames resolve; empty disables thumbnails
	MediaStoragePath string
	ThumbnailsSubDir string
	ThumbnailsPath   string
	ThumbnailMaxSize int

	// worker settings
	ThumbnailQueueSize  int
	NumThumbnailWorkers int

	// bound on every store call
	StoreTimeout time.Duration

	// http
	Port               string
	JWTSecret          string
	JWTExpiration      time.Duration
	CORSAllowedOrigins []string
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func LoadConfig() (Config, error) {
	backend := strings.ToLower(getEnvOrDefault("STORAGE_BACKEND", BackendJSON))
	switch backend {
	case BackendJSON, BackendMongo, BackendSQLite:
	default:
		return Config{}, fmt.Errorf("unsupported STORAGE_BACKEND '%s' (want json, mongo or sqlite)", backend)
	}

	dataDir := getEnvOrDefault("DATA_DIRECTORY", ".")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for data directory '%s': %w", dataDir, err)
	}

	mediaStorage := getEnvOrDefault("MEDIA_STORAGE_PATH", filepath.Join(".", "media_storage"))
	absMediaStorage, err := filepath.Abs(mediaStorage)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for media storage '%s': %w", mediaStorage, err)
	}

	photosDir := getEnvOrDefault("PHOTOS_DIRECTORY", "")
	if photosDir != "" {
		if photosDir, err = filepath.Abs(photosDir); err != nil {
			return Config{}, fmt.Errorf("failed to get absolute path for photos directory: %w", err)
		}
	}

	thumbSubDir := getEnvOrDefault("THUMBNAILS_SUBDIR", DefaultThumbnailsSubDir)

	jwtSecret := getEnvOrDefault("JWT_SECRET", "")
	if jwtSecret == "" {
		log.Printf("Warning: JWT_SECRET is not set, using an insecure development secret")
		jwtSecret = "development-secret-change-me"
	}

	origins := strings.Split(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	cfg := Config{
		StorageBackend:        backend,
		DataDirectory:         absDataDir,
		PhotosFile:            getEnvOrDefault("PHOTOS_FILE", DefaultPhotosFile),
		AlbumsFile:            getEnvOrDefault("ALBUMS_FILE", DefaultAlbumsFile),
		UsersFile:             getEnvOrDefault("USERS_FILE", DefaultUsersFile),
		DatabasePath:          getEnvOrDefault("DATABASE_PATH", "photos.db"),
		MongoURI:              getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:         getEnvOrDefault("MONGO_DATABASE", "photocatalog"),
		ChangelogDatabasePath: getEnvOrDefault("CHANGELOG_DATABASE_PATH", "changelog.db"),
		PhotosDirectory:       photosDir,
		MediaStoragePath:      absMediaStorage,
		ThumbnailsSubDir:      thumbSubDir,
		ThumbnailsPath:        filepath.Join(absMediaStorage, thumbSubDir),
		ThumbnailMaxSize:      getEnvIntOrDefault("THUMBNAIL_MAX_SIZE", defaultThumbnailMaxSize),
		ThumbnailQueueSize:    getEnvIntOrDefault("THUMBNAIL_QUEUE_SIZE", defaultThumbnailQueueSize),
		NumThumbnailWorkers:   getEnvIntOrDefault("NUM_THUMBNAIL_WORKERS", defaultNumThumbnailWorkers),
		StoreTimeout:          time.Duration(getEnvIntOrDefault("STORE_TIMEOUT_SECONDS", defaultStoreTimeoutSeconds)) * time.Second,
		Port:                  getEnvOrDefault("PORT", "8080"),
		JWTSecret:             jwtSecret,
		JWTExpiration:         time.Duration(getEnvIntOrDefault("JWT_EXPIRATION_HOURS", defaultJWTExpirationHours)) * time.Hour,
		CORSAllowedOrigins:    origins,
	}

	return cfg, nil
}
