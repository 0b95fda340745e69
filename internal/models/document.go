package models

import (
	"fmt"
	"time"
)

// DocumentType identifies which kind of structured document a CRDT state
// encodes. It determines which legacy projection table the document is
// reconciled into.
type DocumentType string

const (
	TypeNote      DocumentType = "note"
	TypeSnippet   DocumentType = "snippet"
	TypeTodo      DocumentType = "todo"
	TypeWorkspace DocumentType = "workspace"
)

// DocumentTypes lists all valid document types.
var DocumentTypes = []DocumentType{TypeNote, TypeSnippet, TypeTodo, TypeWorkspace}

// ParseDocumentType validates and converts a raw string into a DocumentType.
func ParseDocumentType(s string) (DocumentType, error) {
	dt := DocumentType(s)
	for _, known := range DocumentTypes {
		if dt == known {
			return dt, nil
		}
	}
	return "", fmt.Errorf("unknown document type %q", s)
}

// Metadata holds optional display fields extracted from a document's CRDT
// state. It exists for cheap listing and legacy projection only; the state
// blob is always authoritative.
type Metadata struct {
	Title  string   `json:"title,omitempty"`
	Status string   `json:"status,omitempty"`
	Tags   []string `json:"tags,omitempty"`
}

// Clone returns a deep copy of the metadata.
func (m *Metadata) Clone() *Metadata {
	if m == nil {
		return nil
	}
	tags := make([]string, len(m.Tags))
	copy(tags, m.Tags)
	return &Metadata{Title: m.Title, Status: m.Status, Tags: tags}
}

// Document is one synchronized document. ID is globally unique and
// immutable for the life of the document; OwnerID never changes. State is
// an opaque mergeable CRDT blob and Heads is the content-derived version
// vector used to detect divergence between replicas.
type Document struct {
	LastSync time.Time    `json:"last_sync"`
	ID       string       `json:"id"`
	Type     DocumentType `json:"type"`
	OwnerID  string       `json:"owner_id"`
	State    []byte       `json:"state"`
	Heads    []string     `json:"heads"`
	Metadata *Metadata    `json:"metadata,omitempty"`
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	state := make([]byte, len(d.State))
	copy(state, d.State)
	heads := make([]string, len(d.Heads))
	copy(heads, d.Heads)
	return &Document{
		ID:       d.ID,
		Type:     d.Type,
		OwnerID:  d.OwnerID,
		State:    state,
		Heads:    heads,
		LastSync: d.LastSync,
		Metadata: d.Metadata.Clone(),
	}
}
