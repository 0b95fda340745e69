package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that user with this username already exists
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrDocumentNotFound indicates that document was not found
	ErrDocumentNotFound = errors.New("document not found")

	// ErrDocumentDeleted indicates the document was tombstoned; stale
	// change replays must not re-create it
	ErrDocumentDeleted = errors.New("document deleted")

	// ErrProjectionNotFound indicates that no projection row exists for a document
	ErrProjectionNotFound = errors.New("projection not found")
)
