package api

import "time"

// Error codes returned in ErrorResponse and per-item batch results.
const (
	CodeUnauthenticated = "unauthenticated"
	CodeAccessDenied    = "access_denied"
	CodeNotFound        = "not_found"
	CodeMergeFailed     = "merge_failed"
	CodeInvalidRequest  = "invalid_request"
	CodeInternal        = "internal"
)

// Metadata is the denormalized display projection extracted from a
// document's CRDT state. It may be stale between sync cycles and is
// never authoritative.
type Metadata struct {
	Title  string   `json:"title,omitempty"`
	Tags   []string `json:"tags,omitempty"`
	Status string   `json:"status,omitempty"`
}

// Document is the wire representation of a server-held document.
type Document struct {
	LastSync     time.Time `json:"last_sync"`
	ID           string    `json:"id"`
	DocumentType string    `json:"document_type"`
	OwnerID      string    `json:"owner_id"`
	State        []byte    `json:"state"`
	Heads        []string  `json:"heads"`
	Metadata     *Metadata `json:"metadata,omitempty"`
}

// SyncDocumentRequest submits one document's pending changes for merge.
// Changes is an opaque mergeable CRDT blob; Heads fingerprint the causal
// history of the submitting replica.
type SyncDocumentRequest struct {
	ID           string    `json:"id"`
	DocumentType string    `json:"document_type"`
	Changes      []byte    `json:"changes"`
	Heads        []string  `json:"heads"`
	Metadata     *Metadata `json:"metadata,omitempty"`
}

// SyncDocumentResponse returns the merged authoritative document.
type SyncDocumentResponse struct {
	Document Document `json:"document"`
}

// BatchSyncRequest submits several documents at once. Partial failure is
// expected: the server reports an outcome per item, never one aggregate
// failure.
type BatchSyncRequest struct {
	Items []SyncDocumentRequest `json:"items"`
}

// BatchItemResult is the per-item outcome of a batch sync.
type BatchItemResult struct {
	DocumentID string    `json:"document_id"`
	Code       string    `json:"code,omitempty"`
	Error      string    `json:"error,omitempty"`
	Document   *Document `json:"document,omitempty"`
	Success    bool      `json:"success"`
}

// BatchSyncResponse carries one result per submitted item, in order.
type BatchSyncResponse struct {
	Results []BatchItemResult `json:"results"`
}

// ListDocumentsResponse is the owner-scoped document listing.
type ListDocumentsResponse struct {
	Documents []Document `json:"documents"`
}

// ProjectionRequest asks the server to re-derive the legacy projection
// record for a merged document.
type ProjectionRequest struct {
	DocumentID   string   `json:"document_id"`
	DocumentType string   `json:"document_type"`
	Metadata     Metadata `json:"metadata"`
}

// ErrorResponse is the generic error payload.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
