package storage

import (
	"context"

	"github.com/driftlabs/driftsync/internal/models"
)

// ProjectionStorage maintains the legacy lookup table. Documents map to
// legacy records through an explicit link table keyed by document ID, so
// metadata edits never orphan a record.
type ProjectionStorage interface {
	// UpsertProjection writes the legacy record for a document, creating
	// the document-to-record link on first write and reusing it after.
	// Idempotent: repeating the same projection changes nothing.
	UpsertProjection(ctx context.Context, p *models.Projection) error

	// GetProjection retrieves the legacy record linked to a document.
	// Returns ErrProjectionNotFound if no link exists.
	GetProjection(ctx context.Context, documentID string) (*models.Projection, error)

	// DeleteProjection removes the legacy record and its link. Deleting a
	// missing projection is a no-op.
	DeleteProjection(ctx context.Context, documentID string) error
}
