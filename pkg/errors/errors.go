package pollstream_errors

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInvalidInput    = errors.New("invalid input")
	ErrAlreadyExists   = errors.New("already exists")
	ErrVersionConflict = errors.New("version conflict")
	ErrRateLimited     = errors.New("rate limited")
)

// VersionConflictError reports a stale optimistic-concurrency version
// presented for a poll or one of its options. Unwraps to ErrVersionConflict
// so callers can match with errors.Is while still reading the offending UUID.
type VersionConflictError struct {
	Entity    string
	UUID      uuid.UUID
	Presented int
	Current   int
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("version conflict on %s %s: presented %d, current %d",
		e.Entity, e.UUID, e.Presented, e.Current)
}

func (e *VersionConflictError) Unwrap() error {
	return ErrVersionConflict
}

func NewVersionConflict(entity string, id uuid.UUID, presented, current int) error {
	return &VersionConflictError{Entity: entity, UUID: id, Presented: presented, Current: current}
}
