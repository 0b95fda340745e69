package api

import (
	"errors"
	"fmt"
)

// Fatal call errors, mapped from server responses. These are never
// retried by the coordinator.
var (
	// ErrUnauthenticated indicates there is no valid principal
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrAccessDenied indicates the principal does not own the document
	ErrAccessDenied = errors.New("access denied")

	// ErrNotFound indicates the document does not exist remotely
	ErrNotFound = errors.New("not found")

	// ErrMergeFailed indicates the server could not merge the change blob
	ErrMergeFailed = errors.New("remote merge failed")
)

// TransientError wraps failures worth retrying with backoff: network
// errors, timeouts and server-side 5xx responses.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient network failure: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err should be retried with backoff.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
