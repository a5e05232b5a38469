package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/camden-git/photocatalog/database"
	"github.com/camden-git/photocatalog/media"
	"github.com/camden-git/photocatalog/models"
	"github.com/camden-git/photocatalog/repository"
	"github.com/camden-git/photocatalog/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

type stubThumbs struct {
	path string
	err  error
}

func (s stubThumbs) ThumbnailFor(photo models.Photo) (string, error) {
	return s.path, s.err
}

type testServer struct {
	handler http.Handler
	auth    *AuthHandler
	photos  *PhotoHandler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	store, err := repository.NewJSONStore(t.TempDir(), "photos.json", "albums.json", "users.json")
	require.NoError(t, err)

	require.NoError(t, store.SaveAlbums(ctx, []models.Album{{ID: 1, Name: "Vacation"}, {ID: 2, Name: "album 10"}, {ID: 3, Name: "album 9"}}))
	hashed := models.User{ID: 2, Username: "omar"}
	require.NoError(t, hashed.SetPassword("omar-pw"))
	require.NoError(t, store.SaveUsers(ctx, []models.User{{ID: 1, Username: "sara", Password: "sara-pw"}, hashed}))
	require.NoError(t, store.SavePhotos(ctx, []models.Photo{
		{ID: 10, Owner: 1, Filename: "beach.jpg", Title: "Beach", Tags: []string{"sea"}, Albums: []int{1}},
		{ID: 11, Owner: 2, Filename: "hike.jpg", Title: "Hike", Tags: []string{}, Albums: []int{1}},
	}))

	changes, err := database.OpenChangeLog(filepath.Join(t.TempDir(), "changelog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { changes.Close() })

	ts := &testServer{
		auth:   NewAuthHandler(services.NewAccessService(store, time.Second), testSecret, time.Hour),
		photos: &PhotoHandler{Catalog: services.NewCatalogService(store, changes, time.Second)},
	}
	ts.handler = NewRouter(RouterConfig{
		Auth:               ts.auth,
		Albums:             &AlbumHandler{Catalog: ts.photos.Catalog},
		Photos:             ts.photos,
		CORSAllowedOrigins: []string{"http://localhost:5173"},
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/login", LoginPayload{Username: username, Password: password}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp LoginResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp APIErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Errors, 1)
	return resp.Errors[0].Code
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/login", LoginPayload{Username: "omar", Password: "omar-pw"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp LoginResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 2, resp.UserID)
	assert.True(t, resp.ExpiresAt.After(time.Now()))

	rec = ts.do(t, http.MethodPost, "/api/login", LoginPayload{Username: "omar", Password: "sara-pw"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_credentials", errorCode(t, rec))

	req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewBufferString("{"))
	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/photos/10", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/photos/10", nil, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_token", errorCode(t, rec))

	other := &AuthHandler{JWTSecret: []byte("other-secret"), Expiration: time.Hour}
	forged, _, err := other.issueToken(1)
	require.NoError(t, err)
	rec = ts.do(t, http.MethodGet, "/api/photos/10", nil, forged)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	expired := &AuthHandler{JWTSecret: testSecret, Expiration: -time.Minute}
	stale, _, err := expired.issueToken(1)
	require.NoError(t, err)
	rec = ts.do(t, http.MethodGet, "/api/photos/10", nil, stale)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetPhoto(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "sara", "sara-pw")

	rec := ts.do(t, http.MethodGet, "/api/photos/10", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var details services.PhotoDetails
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&details))
	assert.Equal(t, "Beach", details.Photo.Title)
	assert.Equal(t, []string{"Vacation"}, details.AlbumNames)

	rec = ts.do(t, http.MethodGet, "/api/photos/11", nil, token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "access_denied", errorCode(t, rec))

	rec = ts.do(t, http.MethodGet, "/api/photos/999", nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", errorCode(t, rec))

	rec = ts.do(t, http.MethodGet, "/api/photos/abc", nil, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdatePhotoAndHistory(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "sara", "sara-pw")

	rec := ts.do(t, http.MethodPut, "/api/photos/10", UpdatePhotoPayload{Description: "Low tide"}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var details services.PhotoDetails
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&details))
	assert.Equal(t, "Beach", details.Photo.Title)
	assert.Equal(t, "Low tide", details.Photo.Description)

	rec = ts.do(t, http.MethodGet, "/api/photos/10/history", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var changes []database.Change
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&changes))
	require.Len(t, changes, 1)
	assert.Equal(t, database.FieldDescription, changes[0].Field)
	assert.Equal(t, 1, changes[0].UserID)

	rec = ts.do(t, http.MethodPut, "/api/photos/11", UpdatePhotoPayload{Title: "Mine now"}, token)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/photos/11/history", nil, token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAddTag(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "sara", "sara-pw")

	rec := ts.do(t, http.MethodPost, "/api/photos/10/tags", AddTagPayload{Tag: "sunset"}, token)
	require.Equal(t, http.StatusCreated, rec.Code)
	var photo models.Photo
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&photo))
	assert.Equal(t, []string{"sea", "sunset"}, photo.Tags)

	rec = ts.do(t, http.MethodPost, "/api/photos/10/tags", AddTagPayload{Tag: "sunset"}, token)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "tag_exists", errorCode(t, rec))
}

func TestAlbums(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "sara", "sara-pw")

	rec := ts.do(t, http.MethodGet, "/api/albums", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var albums []models.Album
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&albums))
	require.Len(t, albums, 3)
	assert.Equal(t, []string{"album 9", "album 10", "Vacation"}, []string{albums[0].Name, albums[1].Name, albums[2].Name})

	rec = ts.do(t, http.MethodGet, "/api/albums/vacation/photos", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp AlbumPhotosResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 1, resp.PhotoCount)
	require.Len(t, resp.Photos, 1)
	assert.Equal(t, 10, resp.Photos[0].ID)

	rec = ts.do(t, http.MethodGet, "/api/albums/album%209/photos", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = AlbumPhotosResponse{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 0, resp.PhotoCount)
	assert.NotNil(t, resp.Photos)

	rec = ts.do(t, http.MethodGet, "/api/albums/Nowhere/photos", nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "album_not_found", errorCode(t, rec))
}

func TestThumbnail(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "sara", "sara-pw")

	thumbPath := filepath.Join(t.TempDir(), "thumb.jpg")
	require.NoError(t, os.WriteFile(thumbPath, []byte("jpeg-bytes"), 0644))

	ts.photos.Thumbs = stubThumbs{path: thumbPath}
	rec := ts.do(t, http.MethodGet, "/api/photos/10/thumbnail", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jpeg-bytes", rec.Body.String())
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Cache-Control"), "private")

	rec = ts.do(t, http.MethodGet, "/api/photos/11/thumbnail", nil, token)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	ts.photos.Thumbs = stubThumbs{err: media.ErrSourceNotFound}
	rec = ts.do(t, http.MethodGet, "/api/photos/10/thumbnail", nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "image_not_found", errorCode(t, rec))

	ts.photos.Thumbs = stubThumbs{err: media.ErrUnsupportedImage}
	rec = ts.do(t, http.MethodGet, "/api/photos/10/thumbnail", nil, token)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestAlbumPhotosSortOrder(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "sara", "sara-pw")

	rec := ts.do(t, http.MethodGet, "/api/albums/Vacation/photos?sort=date_desc", nil, token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/albums/Vacation/photos?sort=size", nil, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_sort", errorCode(t, rec))
}

func TestWriteServiceErrorHidesStorageFaults(t *testing.T) {
	rec := httptest.NewRecorder()
	writeServiceError(rec, errors.New("disk on fire"), "load photo")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	var resp APIErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, CodeInternal, resp.Errors[0].Code)
	assert.Equal(t, "500", resp.Errors[0].Status)
	assert.NotContains(t, resp.Errors[0].Detail, "disk on fire")

	rec = httptest.NewRecorder()
	writeServiceError(rec, fmt.Errorf("wrapped: %w", services.ErrAlreadyExists), "tag photo")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, CodeTagExists, errorCode(t, rec))
}
