package services

import (
	"errors"
	"net/http"

	pollstream_errors "pollstream/pkg/errors"
)

// HTTPStatus maps a service error to its HTTP status code.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, pollstream_errors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, pollstream_errors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, pollstream_errors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, pollstream_errors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, pollstream_errors.ErrVersionConflict):
		return http.StatusConflict
	case errors.Is(err, pollstream_errors.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, pollstream_errors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, pollstream_errors.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// ErrorCode maps a service error to its machine-readable response code.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, pollstream_errors.ErrInvalidInput):
		return "INVALID_REQUEST"
	case errors.Is(err, pollstream_errors.ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(err, pollstream_errors.ErrForbidden):
		return "FORBIDDEN"
	case errors.Is(err, pollstream_errors.ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, pollstream_errors.ErrVersionConflict):
		return "VERSION_CONFLICT"
	case errors.Is(err, pollstream_errors.ErrAlreadyExists),
		errors.Is(err, pollstream_errors.ErrConflict):
		return "CONFLICT"
	case errors.Is(err, pollstream_errors.ErrRateLimited):
		return "RATE_LIMITED"
	default:
		return "INTERNAL_ERROR"
	}
}
