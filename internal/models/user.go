package models

import "time"

// User is a registered account on the server.
type User struct {
	CreatedAt    time.Time `json:"created_at"`
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
}

// Projection is one row of the legacy lookup table, derived from a
// document's metadata after every merge. The coordinator is the only
// writer; direct edits are not supported.
type Projection struct {
	UpdatedAt    time.Time `json:"updated_at"`
	DocumentID   string    `json:"document_id"`
	RecordID     string    `json:"record_id"`
	DocumentType string    `json:"document_type"`
	OwnerID      string    `json:"owner_id"`
	Title        string    `json:"title"`
	Status       string    `json:"status"`
	Tags         []string  `json:"tags,omitempty"`
}
