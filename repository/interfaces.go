package repository

import (
	"context"

	"github.com/camden-git/photocatalog/models"
)

// Store defines the methods the catalogue needs from a storage backend.
// Loads and SavePhoto behave identically on every backend; SavePhotos differs as noted.
type Store interface {
	LoadPhotos(ctx context.Context) ([]models.Photo, error)
	LoadAlbums(ctx context.Context) ([]models.Album, error)
	LoadUsers(ctx context.Context) ([]models.User, error)

	// SavePhotos persists every given photo. Re-saving the same sequence leaves
	// the stored state unchanged. The JSON store rewrites its file, so photos
	// missing from the input are dropped; the SQL and Mongo stores upsert by id
	// and keep them. Callers that need a removal must not rely on either.
	SavePhotos(ctx context.Context, photos []models.Photo) error

	// SavePhoto inserts or replaces the single photo with photo.ID.
	SavePhoto(ctx context.Context, photo models.Photo) error

	Close() error
}

// Seeder is implemented by stores that can be loaded with albums and users.
// It is used by the seed command only; the catalogue never writes these collections.
type Seeder interface {
	SaveAlbums(ctx context.Context, albums []models.Album) error
	SaveUsers(ctx context.Context, users []models.User) error
}

// SeedableStore is a Store that can also be seeded.
type SeedableStore interface {
	Store
	Seeder
}
