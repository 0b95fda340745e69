package storage

import (
	"context"

	"github.com/driftlabs/driftsync/internal/models"
)

//go:generate moq -out documents_mock.go . DocumentStorage

// DocumentStorage is the local mirror of the document store. Local
// mutations are applied here optimistically before they are confirmed by
// the server; the coordinator overwrites entries with the merged
// authoritative document after each successful sync.
type DocumentStorage interface {
	// SaveDocument stores or replaces a document
	SaveDocument(ctx context.Context, doc *models.Document) error

	// GetDocument retrieves a document by id
	// Returns ErrDocumentNotFound if it doesn't exist
	GetDocument(ctx context.Context, id string) (*models.Document, error)

	// ListDocuments returns all documents, optionally filtered by type,
	// ordered by LastSync (descending for display, ascending for
	// catch-up walks)
	ListDocuments(ctx context.Context, docType models.DocumentType, ascending bool) ([]*models.Document, error)

	// DeleteDocument removes a document from the local mirror
	// Returns ErrDocumentNotFound if it doesn't exist
	DeleteDocument(ctx context.Context, id string) error
}
