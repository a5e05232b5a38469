package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/camden-git/photocatalog/models"
	"github.com/google/uuid"
)

// JSONStore keeps each collection in its own JSON file inside a data directory.
type JSONStore struct {
	photosPath string
	albumsPath string
	usersPath  string

	// serialises writers inside this process; files are replaced atomically so readers don't lock
	mu sync.Mutex
}

// NewJSONStore creates a store over dataDir. Missing files are treated as empty collections.
func NewJSONStore(dataDir, photosFile, albumsFile, usersFile string) (*JSONStore, error) {
	absDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("invalid data directory '%s': %w", dataDir, err)
	}
	if err := os.MkdirAll(absDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory '%s': %w", absDir, err)
	}

	log.Printf("repository.json: using data directory %s", absDir)
	return &JSONStore{
		photosPath: filepath.Join(absDir, photosFile),
		albumsPath: filepath.Join(absDir, albumsFile),
		usersPath:  filepath.Join(absDir, usersFile),
	}, nil
}

func readCollection[T any](ctx context.Context, path string) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// writeCollection writes to a temp file in the same directory and renames it over path.
func writeCollection[T any](ctx context.Context, path string, items []T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if items == nil {
		items = []T{}
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}

	tmpPath := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

func (s *JSONStore) LoadPhotos(ctx context.Context) ([]models.Photo, error) {
	return readCollection[models.Photo](ctx, s.photosPath)
}

func (s *JSONStore) LoadAlbums(ctx context.Context) ([]models.Album, error) {
	return readCollection[models.Album](ctx, s.albumsPath)
}

func (s *JSONStore) LoadUsers(ctx context.Context) ([]models.User, error) {
	return readCollection[models.User](ctx, s.usersPath)
}

// SavePhotos rewrites photos.json with exactly the given sequence.
func (s *JSONStore) SavePhotos(ctx context.Context, photos []models.Photo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeCollection(ctx, s.photosPath, photos)
}

// SavePhoto replaces the entry with photo.ID, appending when none exists.
func (s *JSONStore) SavePhoto(ctx context.Context, photo models.Photo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	photos, err := readCollection[models.Photo](ctx, s.photosPath)
	if err != nil {
		return err
	}

	replaced := false
	for i := range photos {
		if photos[i].ID == photo.ID {
			photos[i] = photo
			replaced = true
			break
		}
	}
	if !replaced {
		photos = append(photos, photo)
	}

	return writeCollection(ctx, s.photosPath, photos)
}

func (s *JSONStore) SaveAlbums(ctx context.Context, albums []models.Album) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeCollection(ctx, s.albumsPath, albums)
}

func (s *JSONStore) SaveUsers(ctx context.Context, users []models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeCollection(ctx, s.usersPath, users)
}

func (s *JSONStore) Close() error {
	return nil
}
