package storage

import (
	"context"

	"github.com/driftlabs/driftsync/internal/models"
)

// DocumentStorage defines the interface for authoritative document
// persistence on the server.
type DocumentStorage interface {
	// SaveDocument creates or replaces a document. The state blob is the
	// already-merged CRDT state; callers perform the merge before saving.
	SaveDocument(ctx context.Context, doc *models.Document) error

	// GetDocument retrieves a single document by ID.
	// Returns ErrDocumentNotFound if it doesn't exist and
	// ErrDocumentDeleted if it was tombstoned.
	GetDocument(ctx context.Context, id string) (*models.Document, error)

	// ListDocuments retrieves all live documents owned by a user, ordered
	// by last sync (descending for display, ascending for catch-up).
	// docType filters by type when non-empty. Tombstoned documents are
	// excluded. Returns empty slice if no documents found.
	ListDocuments(ctx context.Context, ownerID, docType string, ascending bool) ([]*models.Document, error)

	// DeleteDocument tombstones a document so stale change replays
	// cannot re-create it. Returns ErrDocumentNotFound if it never
	// existed; tombstoning twice is a no-op.
	DeleteDocument(ctx context.Context, id string) error
}
