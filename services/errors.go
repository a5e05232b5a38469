package services

import "errors"

// Outcomes callers are expected to branch on with errors.Is.
// Storage faults are never reported with these values.
var (
	ErrNotFound      = errors.New("photo not found")
	ErrAccessDenied  = errors.New("access denied")
	ErrAlreadyExists = errors.New("tag already exists")
	ErrAlbumNotFound = errors.New("album not found")
	ErrDenied        = errors.New("invalid username or password")
)
