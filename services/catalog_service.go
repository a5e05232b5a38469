package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/camden-git/photocatalog/database"
	"github.com/camden-git/photocatalog/models"
	"github.com/camden-git/photocatalog/repository"
	"github.com/facette/natsort"
)

// ChangeRecorder keeps the history of catalogue mutations.
type ChangeRecorder interface {
	Record(ctx context.Context, change database.Change) error
	ListForPhoto(ctx context.Context, photoID int) ([]database.Change, error)
}

// CatalogService provides the ownership-checked photo and album operations.
// The caller's identity is passed to every call; the service holds no session state.
type CatalogService struct {
	store   repository.Store
	changes ChangeRecorder // optional
	timeout time.Duration

	// serialises read-check-write cycles so concurrent tag adds cannot both succeed
	mu sync.Mutex
}

// NewCatalogService creates a new catalogue service. changes may be nil.
func NewCatalogService(store repository.Store, changes ChangeRecorder, timeout time.Duration) *CatalogService {
	return &CatalogService{
		store:   store,
		changes: changes,
		timeout: timeout,
	}
}

// PhotoDetails is a photo together with the names of the albums it belongs to.
type PhotoDetails struct {
	Photo      models.Photo `json:"photo"`
	AlbumNames []string     `json:"album_names"`
}

// gatePhoto picks photoID out of photos and checks that userID owns it
func gatePhoto(photos []models.Photo, userID, photoID int) (*models.Photo, error) {
	for i := range photos {
		if photos[i].ID != photoID {
			continue
		}
		if photos[i].Owner != userID {
			return nil, ErrAccessDenied
		}
		p := photos[i].Clone()
		return &p, nil
	}
	return nil, ErrNotFound
}

// FindPhoto returns the photo with photoID if userID owns it.
// It returns ErrNotFound when no such photo exists and ErrAccessDenied when another user owns it.
func (s *CatalogService) FindPhoto(ctx context.Context, userID, photoID int) (*models.Photo, error) {
	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	photos, err := s.store.LoadPhotos(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load photos: %w", err)
	}
	return gatePhoto(photos, userID, photoID)
}

// ResolveAlbumNames maps album ids to names in album-collection order. Unknown ids are skipped.
func (s *CatalogService) ResolveAlbumNames(ctx context.Context, albumIDs []int) ([]string, error) {
	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	albums, err := s.store.LoadAlbums(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load albums: %w", err)
	}

	wanted := make(map[int]struct{}, len(albumIDs))
	for _, id := range albumIDs {
		wanted[id] = struct{}{}
	}

	names := []string{}
	for _, a := range albums {
		if _, ok := wanted[a.ID]; ok {
			names = append(names, a.Name)
		}
	}
	return names, nil
}

// PhotoDetails returns the photo and its album names, subject to the same checks as FindPhoto.
func (s *CatalogService) PhotoDetails(ctx context.Context, userID, photoID int) (*PhotoDetails, error) {
	photo, err := s.FindPhoto(ctx, userID, photoID)
	if err != nil {
		return nil, err
	}

	names, err := s.ResolveAlbumNames(ctx, photo.Albums)
	if err != nil {
		return nil, err
	}
	return &PhotoDetails{Photo: *photo, AlbumNames: names}, nil
}

// FindAlbumPhotos returns the photos userID owns in the album named albumName (case-insensitive).
// Photos owned by other users are left out, so the result can be empty.
// ErrAlbumNotFound is returned only when no album has that name.
func (s *CatalogService) FindAlbumPhotos(ctx context.Context, userID int, albumName string) ([]models.Photo, error) {
	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	albums, err := s.store.LoadAlbums(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load albums: %w", err)
	}

	var album *models.Album
	for i := range albums {
		if albums[i].MatchesName(albumName) {
			album = &albums[i]
			break
		}
	}
	if album == nil {
		return nil, ErrAlbumNotFound
	}

	photos, err := s.store.LoadPhotos(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load photos: %w", err)
	}

	result := []models.Photo{}
	for _, p := range photos {
		if p.Owner == userID && p.InAlbum(album.ID) {
			result = append(result, p)
		}
	}
	return result, nil
}

// ListAlbums returns every album in natural name order.
func (s *CatalogService) ListAlbums(ctx context.Context) ([]models.Album, error) {
	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	albums, err := s.store.LoadAlbums(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load albums: %w", err)
	}

	sort.SliceStable(albums, func(i, j int) bool {
		return natsort.Compare(strings.ToLower(albums[i].Name), strings.ToLower(albums[j].Name))
	})
	return albums, nil
}

// UpdatePhoto sets the title and description of a photo userID owns.
// An empty value leaves that field unchanged; the other fields are never touched.
func (s *CatalogService) UpdatePhoto(ctx context.Context, userID, photoID int, newTitle, newDescription string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	photo, err := s.FindPhoto(ctx, userID, photoID)
	if err != nil {
		return err
	}

	var changes []database.Change
	if newTitle != "" && newTitle != photo.Title {
		changes = append(changes, database.Change{Field: database.FieldTitle, OldValue: photo.Title, NewValue: newTitle})
		photo.Title = newTitle
	}
	if newDescription != "" && newDescription != photo.Description {
		changes = append(changes, database.Change{Field: database.FieldDescription, OldValue: photo.Description, NewValue: newDescription})
		photo.Description = newDescription
	}
	if len(changes) == 0 {
		return nil
	}

	if err := s.save(ctx, *photo); err != nil {
		return err
	}
	s.record(ctx, userID, photoID, changes)
	return nil
}

// AddTag attaches newTag to a photo userID owns.
// It returns ErrAlreadyExists, without writing, when the tag is already present.
func (s *CatalogService) AddTag(ctx context.Context, userID, photoID int, newTag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	photo, err := s.FindPhoto(ctx, userID, photoID)
	if err != nil {
		return err
	}
	if photo.HasTag(newTag) {
		return ErrAlreadyExists
	}

	old := strings.Join(photo.Tags, ",")
	photo.Tags = append(photo.Tags, newTag)

	if err := s.save(ctx, *photo); err != nil {
		return err
	}
	s.record(ctx, userID, photoID, []database.Change{{Field: database.FieldTags, OldValue: old, NewValue: strings.Join(photo.Tags, ",")}})
	return nil
}

// PhotoHistory returns the recorded changes of a photo userID owns, newest first.
func (s *CatalogService) PhotoHistory(ctx context.Context, userID, photoID int) ([]database.Change, error) {
	if _, err := s.FindPhoto(ctx, userID, photoID); err != nil {
		return nil, err
	}
	if s.changes == nil {
		return []database.Change{}, nil
	}

	changes, err := s.changes.ListForPhoto(ctx, photoID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history for photo %d: %w", photoID, err)
	}
	return changes, nil
}

func (s *CatalogService) save(ctx context.Context, photo models.Photo) error {
	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.store.SavePhoto(ctx, photo); err != nil {
		return fmt.Errorf("failed to save photo %d: %w", photo.ID, err)
	}
	return nil
}

// record writes to the change log. The photo is already saved, so failures are only logged.
func (s *CatalogService) record(ctx context.Context, userID, photoID int, changes []database.Change) {
	if s.changes == nil {
		return
	}
	for _, c := range changes {
		c.PhotoID = photoID
		c.UserID = userID
		if err := s.changes.Record(ctx, c); err != nil {
			log.Printf("Warning: failed to record %s change for photo %d: %v", c.Field, photoID, err)
		}
	}
}
