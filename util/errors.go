package util

import (
	"errors"
	"net/http"
)

// Error taxonomy shared by handlers. Handlers wrap these with fmt.Errorf("...: %w")
// and MapErrorToStatus picks the response code.
var (
	ErrValidation       = errors.New("validation failed")
	ErrNoFieldsProvided = errors.New("at least one field must be provided for update")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrReferenced       = errors.New("entity is still referenced")
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")
	ErrRateLimited      = errors.New("rate limit exceeded")
)

// MapErrorToStatus maps the error taxonomy to HTTP status codes. Unknown errors are 500.
func MapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrNoFieldsProvided),
		errors.Is(err, ErrInvalidOperation),
		errors.Is(err, ErrReferenced):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
