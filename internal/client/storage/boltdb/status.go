package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/driftlabs/driftsync/internal/client/storage"
	"github.com/driftlabs/driftsync/internal/models"
)

var statusKey = []byte("current")

// SaveStatus stores the sync status singleton.
func (s *Storage) SaveStatus(ctx context.Context, status *models.SyncStatus) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal sync status: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketStatus).Put(statusKey, data)
	})
	if err != nil {
		return fmt.Errorf("failed to save sync status: %w", err)
	}
	return nil
}

// GetStatus retrieves the sync status. Before the first mutation there is
// nothing stored; callers get a fresh offline status.
func (s *Storage) GetStatus(ctx context.Context) (*models.SyncStatus, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	status := &models.SyncStatus{ConnectionState: models.StateOffline}
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketStatus).Get(statusKey)
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, status)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get sync status: %w", err)
	}
	return status, nil
}
