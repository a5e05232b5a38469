package repository

import (
	"context"
	"fmt"

	"github.com/camden-git/photocatalog/config"
)

// Open builds the store selected by cfg.StorageBackend.
func Open(ctx context.Context, cfg config.Config) (SeedableStore, error) {
	switch cfg.StorageBackend {
	case config.BackendJSON:
		return NewJSONStore(cfg.DataDirectory, cfg.PhotosFile, cfg.AlbumsFile, cfg.UsersFile)
	case config.BackendSQLite:
		return OpenGormStore(cfg.DatabasePath)
	case config.BackendMongo:
		ctx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
		defer cancel()
		return NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
	default:
		return nil, fmt.Errorf("unsupported storage backend '%s'", cfg.StorageBackend)
	}
}
