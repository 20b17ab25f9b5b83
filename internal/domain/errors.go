package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned when a record or request fails validation before any network call
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized is returned when no valid session is available
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound is returned when the remote store has no such document or file
	ErrNotFound = errors.New("not found")

	// ErrRemote is returned when a remote store request fails
	ErrRemote = errors.New("remote store request failed")

	// ErrExecutorClosed is returned for work submitted to, or still queued on, a stopped executor
	ErrExecutorClosed = errors.New("background executor closed")
)

// RemoteError carries the details of a failed remote store request.
// It matches ErrRemote, and additionally ErrUnauthorized or ErrNotFound
// for 401 and 404 responses.
type RemoteError struct {
	Status  int
	Type    string
	Message string
}

func (e *RemoteError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("%s: %s (status %d, %s)", ErrRemote, e.Message, e.Status, e.Type)
	}
	return fmt.Sprintf("%s: %s (status %d)", ErrRemote, e.Message, e.Status)
}

// Is reports whether target is one of the sentinels this error stands for.
func (e *RemoteError) Is(target error) bool {
	switch target {
	case ErrRemote:
		return true
	case ErrUnauthorized:
		return e.Status == 401
	case ErrNotFound:
		return e.Status == 404
	}
	return false
}

// Validationf wraps a formatted message with ErrValidation.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
