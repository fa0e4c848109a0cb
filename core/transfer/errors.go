package transfer

import (
	"errors"
	"fmt"
)

// ErrUnsafeName is returned for mod names that would resolve outside the mods folder.
var ErrUnsafeName = errors.New("mod name is not a plain file name")

// ErrHashMismatch is wrapped by HashMismatchError so callers can classify with errors.Is.
var ErrHashMismatch = errors.New("hash verification failed")

// HashMismatchError is returned when downloaded bytes do not match the
// content identity declared by the manifest.
type HashMismatchError struct {
	Name     string
	Expected string
	Got      string
}

func (e *HashMismatchError) Error() string {
	return fmt.Sprintf("hash verification failed for %s: expected %s, got %s", e.Name, e.Expected, e.Got)
}

func (e *HashMismatchError) Unwrap() error {
	return ErrHashMismatch
}

// StatusError is returned by HTTPSource when the server answers with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %s", e.URL, e.Status)
}

// AttemptsExhaustedError is returned when every attempt failed. Err is the last failure.
type AttemptsExhaustedError struct {
	Attempts int
	Err      error
}

func (e *AttemptsExhaustedError) Error() string {
	return fmt.Sprintf("download failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *AttemptsExhaustedError) Unwrap() error {
	return e.Err
}
