package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"go.etcd.io/bbolt"

	"github.com/driftlabs/driftsync/internal/client/storage"
	"github.com/driftlabs/driftsync/internal/models"
)

// SaveDocument stores or replaces a document in the local mirror.
func (s *Storage) SaveDocument(ctx context.Context, doc *models.Document) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketDocuments).Put([]byte(doc.ID), data)
	})
	if err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by id.
func (s *Storage) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var doc *models.Document
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketDocuments).Get([]byte(id))
		if data == nil {
			return storage.ErrDocumentNotFound
		}
		doc = &models.Document{}
		if err := json.Unmarshal(data, doc); err != nil {
			return fmt.Errorf("failed to unmarshal document: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ListDocuments returns all documents, optionally filtered by type,
// ordered by LastSync.
func (s *Storage) ListDocuments(ctx context.Context, docType models.DocumentType, ascending bool) ([]*models.Document, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var docs []*models.Document
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketDocuments).ForEach(func(k, v []byte) error {
			var doc models.Document
			if err := json.Unmarshal(v, &doc); err != nil {
				return fmt.Errorf("failed to unmarshal document: %w", err)
			}
			if docType != "" && doc.Type != docType {
				return nil
			}
			docs = append(docs, &doc)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	sort.Slice(docs, func(i, j int) bool {
		if ascending {
			return docs[i].LastSync.Before(docs[j].LastSync)
		}
		return docs[i].LastSync.After(docs[j].LastSync)
	})
	return docs, nil
}

// DeleteDocument removes a document from the local mirror.
func (s *Storage) DeleteDocument(ctx context.Context, id string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketDocuments)
		if bucket.Get([]byte(id)) == nil {
			return storage.ErrDocumentNotFound
		}
		return bucket.Delete([]byte(id))
	})
	if err != nil {
		return err
	}
	return nil
}
