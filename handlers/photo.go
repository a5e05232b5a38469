package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/camden-git/photocatalog/media"
	"github.com/camden-git/photocatalog/models"
	"github.com/camden-git/photocatalog/services"
	"github.com/go-chi/chi/v5"
)

// ThumbnailSource renders or looks up the cached thumbnail of a photo
type ThumbnailSource interface {
	ThumbnailFor(photo models.Photo) (string, error)
}

type PhotoHandler struct {
	Catalog *services.CatalogService
	Thumbs  ThumbnailSource
}

type UpdatePhotoPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type AddTagPayload struct {
	Tag string `json:"tag"`
}

// photoRequest pulls the caller and photo id out of the request, writing the error response itself on failure
func photoRequest(w http.ResponseWriter, r *http.Request) (userID, photoID int, ok bool) {
	userID, ok = UserIDFromContext(r.Context())
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, CodeUnauthorized, "Not authenticated")
		return 0, 0, false
	}

	photoID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, CodeInvalidID, "Photo ID must be a number")
		return 0, 0, false
	}
	return userID, photoID, true
}

// GetPhoto handles GET /api/photos/{id}
func (h *PhotoHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	userID, photoID, ok := photoRequest(w, r)
	if !ok {
		return
	}

	details, err := h.Catalog.PhotoDetails(r.Context(), userID, photoID)
	if err != nil {
		writeServiceError(w, err, "get photo")
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// UpdatePhoto handles PUT /api/photos/{id}. Empty fields are left unchanged.
func (h *PhotoHandler) UpdatePhoto(w http.ResponseWriter, r *http.Request) {
	userID, photoID, ok := photoRequest(w, r)
	if !ok {
		return
	}

	var payload UpdatePhotoPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, CodeInvalidPayload, "Invalid request payload")
		return
	}

	if err := h.Catalog.UpdatePhoto(r.Context(), userID, photoID, payload.Title, payload.Description); err != nil {
		writeServiceError(w, err, "update photo")
		return
	}

	details, err := h.Catalog.PhotoDetails(r.Context(), userID, photoID)
	if err != nil {
		writeServiceError(w, err, "get photo")
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// AddTag handles POST /api/photos/{id}/tags
func (h *PhotoHandler) AddTag(w http.ResponseWriter, r *http.Request) {
	userID, photoID, ok := photoRequest(w, r)
	if !ok {
		return
	}

	var payload AddTagPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, CodeInvalidPayload, "Invalid request payload")
		return
	}

	if err := h.Catalog.AddTag(r.Context(), userID, photoID, payload.Tag); err != nil {
		writeServiceError(w, err, "tag photo")
		return
	}

	photo, err := h.Catalog.FindPhoto(r.Context(), userID, photoID)
	if err != nil {
		writeServiceError(w, err, "get photo")
		return
	}
	writeJSON(w, http.StatusCreated, photo)
}

// History handles GET /api/photos/{id}/history
func (h *PhotoHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, photoID, ok := photoRequest(w, r)
	if !ok {
		return
	}

	changes, err := h.Catalog.PhotoHistory(r.Context(), userID, photoID)
	if err != nil {
		writeServiceError(w, err, "load photo history")
		return
	}
	writeJSON(w, http.StatusOK, changes)
}

// Thumbnail handles GET /api/photos/{id}/thumbnail
func (h *PhotoHandler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	userID, photoID, ok := photoRequest(w, r)
	if !ok {
		return
	}

	photo, err := h.Catalog.FindPhoto(r.Context(), userID, photoID)
	if err != nil {
		writeServiceError(w, err, "get photo")
		return
	}

	if h.Thumbs == nil {
		WriteAPIError(w, http.StatusNotFound, CodeThumbnailUnavailable, "Thumbnails are not configured")
		return
	}

	thumbPath, err := h.Thumbs.ThumbnailFor(*photo)
	if err != nil {
		switch {
		case errors.Is(err, media.ErrSourceNotFound):
			WriteAPIError(w, http.StatusNotFound, CodeImageNotFound, "The image file for this photo is missing")
		case errors.Is(err, media.ErrUnsupportedImage):
			WriteAPIError(w, http.StatusUnsupportedMediaType, CodeUnsupportedImage, "Thumbnails are not available for this file type")
		default:
			log.Printf("Error generating thumbnail for photo %d: %v", photoID, err)
			WriteAPIError(w, http.StatusInternalServerError, CodeInternal, "Failed to generate thumbnail")
		}
		return
	}

	// owner-gated, so only the browser may cache it
	cacheDuration := 24 * time.Hour
	w.Header().Set("Cache-Control", "private, max-age="+strconv.Itoa(int(cacheDuration.Seconds())))
	w.Header().Set("Content-Type", "image/jpeg")
	http.ServeFile(w, r, thumbPath)
}
