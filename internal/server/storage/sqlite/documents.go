package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/driftlabs/driftsync/internal/models"
	"github.com/driftlabs/driftsync/internal/server/storage"
)

// SaveDocument creates or replaces a document. The state blob is the
// already-merged CRDT state; the handler performs the merge first.
func (s *Storage) SaveDocument(ctx context.Context, doc *models.Document) error {
	heads, err := json.Marshal(doc.Heads)
	if err != nil {
		return fmt.Errorf("failed to marshal heads: %w", err)
	}

	query := `
		INSERT INTO documents (id, owner_id, doc_type, state, heads, last_sync)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			state = excluded.state,
			heads = excluded.heads,
			last_sync = excluded.last_sync
	`

	_, err = s.db.ExecContext(ctx, query,
		doc.ID,
		doc.OwnerID,
		string(doc.Type),
		doc.State,
		string(heads),
		doc.LastSync,
	)
	if err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}

	return nil
}

// GetDocument retrieves a single document by ID.
// Returns ErrDocumentNotFound if the document doesn't exist and
// ErrDocumentDeleted if it was tombstoned.
func (s *Storage) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	query := `
		SELECT id, owner_id, doc_type, state, heads, last_sync, deleted_at
		FROM documents
		WHERE id = ?
	`

	doc := &models.Document{}
	var docType, heads string
	var deletedAt sql.NullTime

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&doc.ID,
		&doc.OwnerID,
		&docType,
		&doc.State,
		&heads,
		&doc.LastSync,
		&deletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	if deletedAt.Valid {
		return nil, storage.ErrDocumentDeleted
	}

	doc.Type = models.DocumentType(docType)
	if err := json.Unmarshal([]byte(heads), &doc.Heads); err != nil {
		return nil, fmt.Errorf("failed to unmarshal heads: %w", err)
	}

	return doc, nil
}

// ListDocuments retrieves all live documents owned by a user, ordered by
// last sync. Descending suits status display; ascending suits catch-up
// pulls. Tombstoned documents are never listed.
func (s *Storage) ListDocuments(ctx context.Context, ownerID, docType string, ascending bool) ([]*models.Document, error) {
	query := `
		SELECT id, owner_id, doc_type, state, heads, last_sync
		FROM documents
		WHERE owner_id = ? AND deleted_at IS NULL
	`
	args := []any{ownerID}
	if docType != "" {
		query += " AND doc_type = ?"
		args = append(args, docType)
	}
	if ascending {
		query += " ORDER BY last_sync ASC"
	} else {
		query += " ORDER BY last_sync DESC"
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	docs := make([]*models.Document, 0)
	for rows.Next() {
		doc := &models.Document{}
		var dType, heads string
		if err := rows.Scan(&doc.ID, &doc.OwnerID, &dType, &doc.State, &heads, &doc.LastSync); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		doc.Type = models.DocumentType(dType)
		if err := json.Unmarshal([]byte(heads), &doc.Heads); err != nil {
			return nil, fmt.Errorf("failed to unmarshal heads: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}

	return docs, nil
}

// DeleteDocument tombstones a document: the row stays so stale change
// replays cannot re-create it, but state and heads are dropped and the
// linked legacy record goes away with it.
// Returns ErrDocumentNotFound if the document never existed; deleting an
// already-tombstoned document is a no-op.
func (s *Storage) DeleteDocument(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	result, err := tx.ExecContext(ctx, `
		UPDATE documents
		SET deleted_at = ?, state = X'', heads = '[]'
		WHERE id = ? AND deleted_at IS NULL`,
		time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM documents WHERE id = ?`, id).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrDocumentNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to check document: %w", err)
		}
	}

	var recordID string
	err = tx.QueryRowContext(ctx,
		`SELECT record_id FROM projection_links WHERE document_id = ?`, id,
	).Scan(&recordID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("failed to look up projection link: %w", err)
	default:
		if _, err := tx.ExecContext(ctx, `DELETE FROM projection_links WHERE document_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete projection link: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, recordID); err != nil {
			return fmt.Errorf("failed to delete record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit document delete: %w", err)
	}

	return nil
}
