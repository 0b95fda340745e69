package storage

import (
	"context"

	"github.com/driftlabs/driftsync/internal/models"
)

//go:generate moq -out status_mock.go . StatusStorage

// StatusStorage persists the per-principal sync status singleton.
type StatusStorage interface {
	// SaveStatus stores the sync status
	SaveStatus(ctx context.Context, status *models.SyncStatus) error

	// GetStatus retrieves the sync status. Returns a zero-value status in
	// the offline state if none has been stored yet.
	GetStatus(ctx context.Context) (*models.SyncStatus, error)
}
