package storage

import "errors"

// Common client storage errors
var (
	// ErrDocumentNotFound indicates the document is not in the local mirror
	ErrDocumentNotFound = errors.New("document not found")

	// ErrEntryNotFound indicates the queue entry does not exist
	ErrEntryNotFound = errors.New("queue entry not found")

	// ErrSessionNotFound indicates no authenticated session is stored
	ErrSessionNotFound = errors.New("session not found")

	// ErrStorageClosed indicates the storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
