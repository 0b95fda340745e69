package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/driftlabs/driftsync/internal/models"
	"github.com/driftlabs/driftsync/internal/server/storage"
)

// UpsertProjection writes the legacy record for a document. The first
// write creates a record and links it by document ID; every later write
// reuses the link, so metadata edits update the same record in place.
func (s *Storage) UpsertProjection(ctx context.Context, p *models.Projection) error {
	tags, err := json.Marshal(p.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var recordID string
	err = tx.QueryRowContext(ctx,
		`SELECT record_id FROM projection_links WHERE document_id = ?`, p.DocumentID,
	).Scan(&recordID)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		recordID = uuid.New().String()
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO records (id, owner_id, record_type, title, status, tags, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			recordID, p.OwnerID, p.DocumentType, p.Title, p.Status, string(tags), p.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert record: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO projection_links (document_id, record_id) VALUES (?, ?)`,
			p.DocumentID, recordID,
		); err != nil {
			return fmt.Errorf("failed to insert projection link: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to look up projection link: %w", err)
	default:
		if _, err := tx.ExecContext(ctx, `
			UPDATE records
			SET title = ?, status = ?, tags = ?, record_type = ?, updated_at = ?
			WHERE id = ?`,
			p.Title, p.Status, string(tags), p.DocumentType, p.UpdatedAt, recordID,
		); err != nil {
			return fmt.Errorf("failed to update record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit projection: %w", err)
	}

	return nil
}

// GetProjection retrieves the legacy record linked to a document
// Returns ErrProjectionNotFound if no link exists
func (s *Storage) GetProjection(ctx context.Context, documentID string) (*models.Projection, error) {
	query := `
		SELECT l.document_id, r.id, r.owner_id, r.record_type, r.title, r.status, r.tags, r.updated_at
		FROM projection_links l
		JOIN records r ON r.id = l.record_id
		WHERE l.document_id = ?
	`

	p := &models.Projection{}
	var tags string

	err := s.db.QueryRowContext(ctx, query, documentID).Scan(
		&p.DocumentID,
		&p.RecordID,
		&p.OwnerID,
		&p.DocumentType,
		&p.Title,
		&p.Status,
		&tags,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrProjectionNotFound
		}
		return nil, fmt.Errorf("failed to get projection: %w", err)
	}

	if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
	}

	return p, nil
}

// DeleteProjection removes the legacy record and its link. Deleting a
// missing projection is a no-op so deletes stay idempotent.
func (s *Storage) DeleteProjection(ctx context.Context, documentID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var recordID string
	err = tx.QueryRowContext(ctx,
		`SELECT record_id FROM projection_links WHERE document_id = ?`, documentID,
	).Scan(&recordID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to look up projection link: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM projection_links WHERE document_id = ?`, documentID); err != nil {
		return fmt.Errorf("failed to delete projection link: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, recordID); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit projection delete: %w", err)
	}

	return nil
}
