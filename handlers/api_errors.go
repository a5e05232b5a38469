package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/camden-git/photocatalog/services"
)

// error codes clients can branch on
const (
	CodeInvalidPayload       = "invalid_payload"
	CodeInvalidID            = "invalid_id"
	CodeInvalidSort          = "invalid_sort"
	CodeUnauthorized         = "unauthorized"
	CodeInvalidToken         = "invalid_token"
	CodeInvalidCredentials   = "invalid_credentials"
	CodeNotFound             = "not_found"
	CodeAccessDenied         = "access_denied"
	CodeAlbumNotFound        = "album_not_found"
	CodeTagExists            = "tag_exists"
	CodeImageNotFound        = "image_not_found"
	CodeUnsupportedImage     = "unsupported_image"
	CodeThumbnailUnavailable = "thumbnail_unavailable"
	CodeInternal             = "internal_error"
)

// APIErrorDetail represents a single error in the standardized error response.
type APIErrorDetail struct {
	Code   string `json:"code"`
	Status string `json:"status"`
	Detail string `json:"detail"`
}

// APIErrorResponse represents the standardized error response body.
type APIErrorResponse struct {
	Errors []APIErrorDetail `json:"errors"`
}

// WriteAPIError writes a standardized error response with the given HTTP status, code, and detail.
// Error bodies depend on the caller's identity, so they are never cached.
func WriteAPIError(w http.ResponseWriter, httpStatus int, code string, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(httpStatus)

	resp := APIErrorResponse{
		Errors: []APIErrorDetail{{
			Code:   code,
			Status: strconv.Itoa(httpStatus),
			Detail: detail,
		}},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("Error encoding API error response (%s): %v", code, err)
	}
}

// writeServiceError maps a catalogue outcome to its API error. Anything that is
// not one of the service sentinels is a storage fault and is logged with action.
func writeServiceError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		WriteAPIError(w, http.StatusNotFound, CodeNotFound, "Photo not found")
	case errors.Is(err, services.ErrAccessDenied):
		WriteAPIError(w, http.StatusForbidden, CodeAccessDenied, "You do not have access to this photo")
	case errors.Is(err, services.ErrAlbumNotFound):
		WriteAPIError(w, http.StatusNotFound, CodeAlbumNotFound, "There is no album with that name")
	case errors.Is(err, services.ErrAlreadyExists):
		WriteAPIError(w, http.StatusConflict, CodeTagExists, "Photo already has that tag")
	default:
		log.Printf("Error trying to %s: %v", action, err)
		WriteAPIError(w, http.StatusInternalServerError, CodeInternal, "Failed to "+action)
	}
}
