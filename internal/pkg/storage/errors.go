package storage

import (
	"errors"
	"net/http"
)

var (
	ErrObjectNotFound     = errors.New("file key does not exist in storage")
	ErrMissingCredentials = errors.New("storage credentials not available")
	ErrInvalidParams      = errors.New("invalid storage parameters")
)

// StatusCode maps a storage error onto the HTTP class callers should report.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrObjectNotFound), errors.Is(err, ErrInvalidParams):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
