package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/camden-git/photocatalog/models"
	"github.com/camden-git/photocatalog/services"
	"github.com/go-chi/chi/v5"
)

// writeJSON is a helper to write JSON responses
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("Error encoding JSON response: %v", err)
		}
	}
}

type AlbumHandler struct {
	Catalog *services.CatalogService
}

type AlbumPhotosResponse struct {
	Album      string         `json:"album"`
	Photos     []models.Photo `json:"photos"`
	PhotoCount int            `json:"photo_count"`
}

// ListAlbums handles GET /api/albums
func (h *AlbumHandler) ListAlbums(w http.ResponseWriter, r *http.Request) {
	albums, err := h.Catalog.ListAlbums(r.Context())
	if err != nil {
		writeServiceError(w, err, "list albums")
		return
	}
	writeJSON(w, http.StatusOK, albums)
}

// ListAlbumPhotos handles GET /api/albums/{name}/photos?sort=
func (h *AlbumHandler) ListAlbumPhotos(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, CodeUnauthorized, "Not authenticated")
		return
	}
	albumName := chi.URLParam(r, "name")

	sortOrder := r.URL.Query().Get("sort")
	if sortOrder != "" && !services.IsValidSortOrder(sortOrder) {
		WriteAPIError(w, http.StatusBadRequest, CodeInvalidSort, "Unknown sort order: "+sortOrder)
		return
	}

	photos, err := h.Catalog.FindAlbumPhotos(r.Context(), userID, albumName)
	if err != nil {
		writeServiceError(w, err, "list album photos")
		return
	}
	services.SortPhotos(photos, sortOrder)

	writeJSON(w, http.StatusOK, AlbumPhotosResponse{
		Album:      albumName,
		Photos:     photos,
		PhotoCount: len(photos),
	})
}
